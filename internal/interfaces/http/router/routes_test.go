package router

import (
	"testing"

	"github.com/franchise/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewBillingRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	r := NewRouter(engine)
	r.Register(NewBillingRoutes(BillingHandlers{
		Invoice:    handler.NewInvoiceHandler(nil),
		Payment:    handler.NewPaymentHandler(nil),
		Credit:     handler.NewCreditHandler(nil),
		Adjustment: handler.NewAdjustmentHandler(nil),
	}))
	r.Register(NewSystemRoutes(handler.NewSystemHandler()))
	r.Setup()

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"POST /api/v1/billing/invoices/generate",
		"POST /api/v1/billing/invoices/generate-bulk",
		"POST /api/v1/billing/invoices/opening-balance",
		"GET /api/v1/billing/invoices",
		"GET /api/v1/billing/invoices/:id",
		"PATCH /api/v1/billing/invoices/:id/status",
		"PATCH /api/v1/billing/invoices/:id/reschedule",
		"POST /api/v1/billing/invoices/:id/apply-credit",
		"GET /api/v1/billing/invoices/:id/adjustments",
		"POST /api/v1/billing/payments",
		"GET /api/v1/billing/payments",
		"POST /api/v1/billing/payments/receipts/upload-url",
		"GET /api/v1/billing/payments/:id",
		"DELETE /api/v1/billing/payments/:id",
		"GET /api/v1/billing/payments/:id/receipt",
		"GET /api/v1/billing/payments/:id/adjustments",
		"POST /api/v1/billing/credits",
		"GET /api/v1/billing/credits/branches/:branch_id/balance",
		"POST /api/v1/billing/credits/branches/:branch_id/apply",
		"GET /api/v1/billing/credits/franchisees/:franchisee_id",
		"GET /api/v1/billing/credits/franchisees/:franchisee_id/summary",
		"POST /api/v1/billing/adjustments",
		"POST /api/v1/billing/adjustments/validate",
		"GET /api/v1/system/info",
		"GET /api/v1/system/ping",
	}
	for _, route := range expected {
		assert.True(t, registered[route], "route %s should be registered", route)
	}
}
