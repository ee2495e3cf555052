package handler

import (
	billingapp "github.com/franchise/backend/internal/application/billing"
	"github.com/franchise/backend/internal/domain/billing"
	"github.com/franchise/backend/internal/domain/shared"
	"github.com/franchise/backend/internal/domain/shared/valueobject"
	"github.com/franchise/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles payment-related API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *billingapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *billingapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// RecordPaymentRequest represents a request to record a payment against an invoice
// @Description Request body for recording a payment
type RecordPaymentRequest struct {
	InvoiceID   string  `json:"invoice_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Amount      float64 `json:"amount" binding:"required,gt=0" example:"15000.00"`
	PaymentDate string  `json:"payment_date" binding:"required" example:"2026-08-20"`
	Method      string  `json:"method" binding:"required" example:"BANK_TRANSFER"`
	Reference   string  `json:"reference" example:"BPI-443211"`
	Notes       string  `json:"notes" example:"Weekly remittance"`
	ReceiptRef  string  `json:"receipt_ref" example:"receipts/550e8400/or-1001.jpg"`
	AccountID   *string `json:"account_id" binding:"omitempty,uuid"`
	// ConfirmOverpayment acknowledges that any excess over the outstanding
	// balance becomes a credit for the branch
	ConfirmOverpayment bool `json:"confirm_overpayment" example:"false"`
}

// ReceiptUploadURLRequest represents a request for a presigned receipt upload URL
// @Description Request body for generating a receipt upload URL
type ReceiptUploadURLRequest struct {
	InvoiceID   string `json:"invoice_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	ContentType string `json:"content_type" binding:"required" example:"image/jpeg"`
}

// PaymentListFilter binds payment list query parameters
type PaymentListFilter struct {
	dto.ListRequest
	InvoiceID string `form:"invoice_id" binding:"omitempty,uuid"`
	Method    string `form:"method"`
	DateFrom  string `form:"date_from"`
	DateTo    string `form:"date_to"`
}

// Record godoc
// @Summary      Record a payment
// @Description  Record a payment against an invoice; overpayment becomes branch credit when confirmed
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Actor-ID header string true "Acting staff member ID" format(uuid)
// @Param        request body RecordPaymentRequest true "Payment recording request"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/payments [post]
func (h *PaymentHandler) Record(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing actor ID")
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoiceID, err := uuid.Parse(req.InvoiceID)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}
	paymentDate, err := parseDate(req.PaymentDate)
	if err != nil {
		h.BadRequest(c, "Invalid payment_date date")
		return
	}
	method := billing.PaymentMethod(req.Method)
	if !method.IsValid() {
		h.BadRequest(c, "Unknown payment method")
		return
	}

	appReq := billingapp.RecordPaymentRequest{
		InvoiceID:          invoiceID,
		Amount:             valueobject.NewMoneyPHPFromFloat(req.Amount),
		PaymentDate:        paymentDate,
		Method:             method,
		Reference:          req.Reference,
		Notes:              req.Notes,
		ReceiptRef:         req.ReceiptRef,
		CreatedBy:          actorID,
		ConfirmOverpayment: req.ConfirmOverpayment,
	}
	if req.AccountID != nil && *req.AccountID != "" {
		accountID, err := uuid.Parse(*req.AccountID)
		if err != nil {
			h.BadRequest(c, "Invalid account ID format")
			return
		}
		appReq.AccountID = &accountID
	}

	result, err := h.paymentService.RecordPayment(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GetByID godoc
// @Summary      Get payment by ID
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/payments/{id} [get]
func (h *PaymentHandler) GetByID(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	payment, err := h.paymentService.GetByID(c.Request.Context(), paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// List godoc
// @Summary      List payments
// @Description  Retrieve a paginated payment list with optional filtering
// @Tags         payments
// @Produce      json
// @Param        invoice_id query string false "Invoice ID" format(uuid)
// @Param        method query string false "Payment method" Enums(CASH, CHEQUE, BANK_TRANSFER, GCASH, OTHER)
// @Param        date_from query string false "Payment date lower bound"
// @Param        date_to query string false "Payment date upper bound"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	var query PaymentListFilter
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := billing.PaymentFilter{
		Filter: shared.Filter{
			Page:     query.Page,
			PageSize: query.PageSize,
			OrderBy:  query.OrderBy,
			OrderDir: query.OrderDir,
		},
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	if query.InvoiceID != "" {
		invoiceID, err := uuid.Parse(query.InvoiceID)
		if err != nil {
			h.BadRequest(c, "Invalid invoice ID format")
			return
		}
		filter.InvoiceID = &invoiceID
	}
	if query.Method != "" {
		method := billing.PaymentMethod(query.Method)
		if !method.IsValid() {
			h.BadRequest(c, "Unknown payment method")
			return
		}
		filter.Method = &method
	}
	if query.DateFrom != "" {
		from, err := parseDate(query.DateFrom)
		if err != nil {
			h.BadRequest(c, "Invalid date_from date")
			return
		}
		filter.DateFrom = &from
	}
	if query.DateTo != "" {
		to, err := parseDate(query.DateTo)
		if err != nil {
			h.BadRequest(c, "Invalid date_to date")
			return
		}
		filter.DateTo = &to
	}

	page, err := h.paymentService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Delete godoc
// @Summary      Delete a payment
// @Description  Hard-delete a mistaken payment and recompute the invoice's paid total. Prefer a reversal adjustment, which keeps the audit trail.
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      204 "No Content"
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/payments/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	if err := h.paymentService.Delete(c.Request.Context(), paymentID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// GenerateReceiptUploadURL godoc
// @Summary      Generate a receipt upload URL
// @Description  Presign a direct upload URL for a payment receipt image
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        request body ReceiptUploadURLRequest true "Upload URL request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/payments/receipts/upload-url [post]
func (h *PaymentHandler) GenerateReceiptUploadURL(c *gin.Context) {
	var req ReceiptUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoiceID, err := uuid.Parse(req.InvoiceID)
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	upload, err := h.paymentService.GenerateReceiptUploadURL(c.Request.Context(), invoiceID, req.ContentType)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, upload)
}

// GetReceiptDownloadURL godoc
// @Summary      Get a receipt download URL
// @Description  Presign a download URL for a payment's stored receipt
// @Tags         payments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/payments/{id}/receipt [get]
func (h *PaymentHandler) GetReceiptDownloadURL(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	url, err := h.paymentService.GetReceiptDownloadURL(c.Request.Context(), paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"download_url": url})
}
