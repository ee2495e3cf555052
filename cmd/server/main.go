package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/franchise/backend/internal/application/billing"
	"github.com/franchise/backend/internal/infrastructure/config"
	"github.com/franchise/backend/internal/infrastructure/event"
	"github.com/franchise/backend/internal/infrastructure/logger"
	"github.com/franchise/backend/internal/infrastructure/persistence"
	"github.com/franchise/backend/internal/infrastructure/storage"
	"github.com/franchise/backend/internal/interfaces/http/handler"
	"github.com/franchise/backend/internal/interfaces/http/middleware"
	"github.com/franchise/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//	@title			Franchise Billing API
//	@version		1.0
//	@description	Franchisee billing ledger: invoices, payments, credits and adjustments

//	@contact.name	API Support
//	@contact.email	support@franchise.example.com

//	@host		localhost:8080
//	@BasePath	/api/v1

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Franchise Billing Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB, cfg.Billing.InvoiceNumberPrefix)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	creditRepo := persistence.NewGormCreditRepository(db.DB)
	adjustmentRepo := persistence.NewGormAdjustmentRepository(db.DB)
	branchRepo := persistence.NewGormBranchRelationshipRepository(db.DB)
	salesReader := persistence.NewGormSalesReader(db.DB)

	// Transaction scope shared by every multi-write ledger operation
	txScope := persistence.NewGormBillingTransactionScope(db.DB, cfg.Billing.InvoiceNumberPrefix)

	// Initialize event bus and the ledger audit trail
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(event.NewLedgerAuditHandler(log))
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// Receipt object storage. The stub keeps payment recording usable in
	// environments without an object store.
	var receiptStore billingapp.ReceiptStorageService
	if cfg.Storage.Enabled {
		s3Store, err := storage.NewS3ReceiptStorage(&cfg.Storage, storage.WithLogger(log))
		if err != nil {
			log.Fatal("Failed to initialize receipt storage", zap.Error(err))
		}
		receiptStore = s3Store
		log.Info("Receipt storage enabled",
			zap.String("bucket", cfg.Storage.Bucket),
			zap.String("region", cfg.Storage.Region),
		)
	} else {
		receiptStore = storage.NewStubReceiptStorage()
		log.Warn("Receipt storage disabled, using stub URLs")
	}

	// Initialize application services
	invoiceService := billingapp.NewInvoiceService(
		txScope, invoiceRepo, branchRepo, salesReader, eventBus, cfg.Billing.DefaultDueDays,
	)
	paymentService := billingapp.NewPaymentService(txScope, paymentRepo, receiptStore, eventBus)
	creditService := billingapp.NewCreditService(txScope, creditRepo, branchRepo, eventBus)
	adjustmentService := billingapp.NewAdjustmentService(txScope, paymentRepo, adjustmentRepo, eventBus)

	// Initialize HTTP handlers
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	creditHandler := handler.NewCreditHandler(creditService)
	adjustmentHandler := handler.NewAdjustmentHandler(adjustmentService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Security - Add security headers
	// 5. CORS - Handle cross-origin requests
	// 6. BodyLimit - Limit request body size
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())

	// Configure CORS from config
	corsConfig := middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))

	// Body size limit
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, log))

	// Setup API routes using router
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	billingRoutes := router.NewBillingRoutes(router.BillingHandlers{
		Invoice:    invoiceHandler,
		Payment:    paymentHandler,
		Credit:     creditHandler,
		Adjustment: adjustmentHandler,
	})
	systemRoutes := router.NewSystemRoutes(handler.NewSystemHandler())

	r.Register(billingRoutes).
		Register(systemRoutes)

	// Setup routes
	r.Setup()

	// Also keep a simple ping at root API level for basic health checks
	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database, _ *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
