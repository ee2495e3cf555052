package router

import (
	"github.com/franchise/backend/internal/interfaces/http/handler"
)

// BillingHandlers bundles the handlers mounted under /billing
type BillingHandlers struct {
	Invoice    *handler.InvoiceHandler
	Payment    *handler.PaymentHandler
	Credit     *handler.CreditHandler
	Adjustment *handler.AdjustmentHandler
}

// NewBillingRoutes builds the billing route tree
func NewBillingRoutes(h BillingHandlers) *DomainGroup {
	billing := NewDomainGroup("billing", "/billing")

	invoices := billing.Group("invoices", "/invoices")
	invoices.POST("/generate", h.Invoice.Generate)
	invoices.POST("/generate-bulk", h.Invoice.GenerateBulk)
	invoices.POST("/opening-balance", h.Invoice.CreateOpeningBalance)
	invoices.GET("", h.Invoice.List)
	invoices.GET("/:id", h.Invoice.GetByID)
	invoices.PATCH("/:id/status", h.Invoice.UpdateStatus)
	invoices.PATCH("/:id/reschedule", h.Invoice.Reschedule)
	invoices.POST("/:id/apply-credit", h.Credit.AutoApply)
	invoices.GET("/:id/adjustments", h.Adjustment.ListByInvoice)

	payments := billing.Group("payments", "/payments")
	payments.POST("", h.Payment.Record)
	payments.GET("", h.Payment.List)
	payments.POST("/receipts/upload-url", h.Payment.GenerateReceiptUploadURL)
	payments.GET("/:id", h.Payment.GetByID)
	payments.DELETE("/:id", h.Payment.Delete)
	payments.GET("/:id/receipt", h.Payment.GetReceiptDownloadURL)
	payments.GET("/:id/adjustments", h.Adjustment.ListByPayment)

	credits := billing.Group("credits", "/credits")
	credits.POST("", h.Credit.Grant)
	credits.GET("/branches/:branch_id/balance", h.Credit.AvailableBalance)
	credits.POST("/branches/:branch_id/apply", h.Credit.AutoApplyForBranch)
	credits.GET("/franchisees/:franchisee_id", h.Credit.ListByFranchisee)
	credits.GET("/franchisees/:franchisee_id/summary", h.Credit.Summary)

	adjustments := billing.Group("adjustments", "/adjustments")
	adjustments.POST("", h.Adjustment.Create)
	adjustments.POST("/validate", h.Adjustment.Validate)

	return billing
}

// NewSystemRoutes builds the system route tree
func NewSystemRoutes(h *handler.SystemHandler) *DomainGroup {
	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.GetSystemInfo)
	system.GET("/ping", h.Ping)
	return system
}
