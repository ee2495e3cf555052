package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newPaymentTestRouter() *gin.Engine {
	h := NewPaymentHandler(nil)
	router := gin.New()
	router.POST("/payments", h.Record)
	router.GET("/payments", h.List)
	router.GET("/payments/:id", h.GetByID)
	router.DELETE("/payments/:id", h.Delete)
	router.POST("/payments/receipts/upload-url", h.GenerateReceiptUploadURL)
	router.GET("/payments/:id/receipt", h.GetReceiptDownloadURL)
	return router
}

func TestPaymentHandler_Record_MissingActor(t *testing.T) {
	router := newPaymentTestRouter()

	w := postJSON(t, router, "/payments", gin.H{
		"invoice_id":   uuid.New().String(),
		"amount":       1500.00,
		"payment_date": "2026-08-20",
		"method":       "CASH",
	}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentHandler_Record_InvalidBody(t *testing.T) {
	router := newPaymentTestRouter()
	actor := uuid.New().String()

	tests := []struct {
		name string
		body gin.H
	}{
		{
			name: "missing invoice",
			body: gin.H{"amount": 100.0, "payment_date": "2026-08-20", "method": "CASH"},
		},
		{
			name: "zero amount",
			body: gin.H{
				"invoice_id":   uuid.New().String(),
				"amount":       0,
				"payment_date": "2026-08-20",
				"method":       "CASH",
			},
		},
		{
			name: "negative amount",
			body: gin.H{
				"invoice_id":   uuid.New().String(),
				"amount":       -50.0,
				"payment_date": "2026-08-20",
				"method":       "CASH",
			},
		},
		{
			name: "unparseable payment date",
			body: gin.H{
				"invoice_id":   uuid.New().String(),
				"amount":       100.0,
				"payment_date": "20/08/2026",
				"method":       "CASH",
			},
		},
		{
			name: "unknown method",
			body: gin.H{
				"invoice_id":   uuid.New().String(),
				"amount":       100.0,
				"payment_date": "2026-08-20",
				"method":       "BARTER",
			},
		},
		{
			name: "malformed account id",
			body: gin.H{
				"invoice_id":   uuid.New().String(),
				"amount":       100.0,
				"payment_date": "2026-08-20",
				"method":       "CASH",
				"account_id":   "acct-1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, router, "/payments", tt.body, actor)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestPaymentHandler_List_InvalidFilters(t *testing.T) {
	router := newPaymentTestRouter()

	tests := []struct {
		name  string
		query string
	}{
		{name: "bad invoice uuid", query: "?invoice_id=nope"},
		{name: "unknown method", query: "?method=BARTER"},
		{name: "bad date_to", query: "?date_to=tomorrow"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/payments"+tt.query, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestPaymentHandler_GetByID_InvalidID(t *testing.T) {
	router := newPaymentTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/payments/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentHandler_Delete_InvalidID(t *testing.T) {
	router := newPaymentTestRouter()

	req := httptest.NewRequest(http.MethodDelete, "/payments/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentHandler_ReceiptUploadURL_InvalidBody(t *testing.T) {
	router := newPaymentTestRouter()

	t.Run("missing content type", func(t *testing.T) {
		w := postJSON(t, router, "/payments/receipts/upload-url", gin.H{
			"invoice_id": uuid.New().String(),
		}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("bad invoice uuid", func(t *testing.T) {
		w := postJSON(t, router, "/payments/receipts/upload-url", gin.H{
			"invoice_id":   "nope",
			"content_type": "image/jpeg",
		}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
