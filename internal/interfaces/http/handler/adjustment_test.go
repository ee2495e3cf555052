package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newAdjustmentTestRouter() *gin.Engine {
	h := NewAdjustmentHandler(nil)
	router := gin.New()
	router.POST("/adjustments", h.Create)
	router.POST("/adjustments/validate", h.Validate)
	router.GET("/payments/:id/adjustments", h.ListByPayment)
	router.GET("/invoices/:id/adjustments", h.ListByInvoice)
	return router
}

func TestAdjustmentHandler_Create_MissingActor(t *testing.T) {
	router := newAdjustmentTestRouter()

	w := postJSON(t, router, "/adjustments", gin.H{
		"payment_id":      uuid.New().String(),
		"type":            "CORRECTION",
		"adjusted_amount": 450.00,
		"reason":          "Encoding error on the deposit slip",
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdjustmentHandler_Create_InvalidBody(t *testing.T) {
	router := newAdjustmentTestRouter()
	actor := uuid.New().String()

	tests := []struct {
		name string
		body gin.H
	}{
		{
			name: "missing payment id",
			body: gin.H{"type": "CORRECTION", "adjusted_amount": 450.00, "reason": "typo fix"},
		},
		{
			name: "payment id not a uuid",
			body: gin.H{"payment_id": "pay-9", "type": "CORRECTION", "adjusted_amount": 450.00, "reason": "typo fix"},
		},
		{
			name: "missing reason",
			body: gin.H{"payment_id": uuid.New().String(), "type": "REVERSAL"},
		},
		{
			name: "negative amount",
			body: gin.H{"payment_id": uuid.New().String(), "type": "CORRECTION", "adjusted_amount": -5.0, "reason": "typo fix"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, "/adjustments", tt.body, actor)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAdjustmentHandler_Validate_SameBindingRules(t *testing.T) {
	router := newAdjustmentTestRouter()

	w := postJSON(t, router, "/adjustments/validate", gin.H{
		"payment_id": "pay-9",
		"type":       "CORRECTION",
		"reason":     "typo fix",
	}, uuid.New().String())

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdjustmentHandler_ListPathIDs(t *testing.T) {
	router := newAdjustmentTestRouter()

	for _, path := range []string{"/payments/nope/adjustments", "/invoices/nope/adjustments"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
}
