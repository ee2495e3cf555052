package handler

import (
	billingapp "github.com/franchise/backend/internal/application/billing"
	"github.com/franchise/backend/internal/domain/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdjustmentHandler handles payment adjustment API endpoints
type AdjustmentHandler struct {
	BaseHandler
	adjustmentService *billingapp.AdjustmentService
}

// NewAdjustmentHandler creates a new AdjustmentHandler
func NewAdjustmentHandler(adjustmentService *billingapp.AdjustmentService) *AdjustmentHandler {
	return &AdjustmentHandler{
		adjustmentService: adjustmentService,
	}
}

// CreateAdjustmentRequest represents a request to correct or reverse a payment
// @Description Request body for a payment adjustment. A reversal ignores the amount and zeroes the payment.
type CreateAdjustmentRequest struct {
	PaymentID      string  `json:"payment_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Type           string  `json:"type" binding:"required" example:"CORRECTION"`
	AdjustedAmount float64 `json:"adjusted_amount" binding:"omitempty,min=0" example:"450.00"`
	Reason         string  `json:"reason" binding:"required" example:"Encoding error on the deposit slip"`
}

func (h *AdjustmentHandler) toAppRequest(c *gin.Context) (billingapp.CreateAdjustmentRequest, bool) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing actor ID")
		return billingapp.CreateAdjustmentRequest{}, false
	}

	var req CreateAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return billingapp.CreateAdjustmentRequest{}, false
	}

	paymentID, err := uuid.Parse(req.PaymentID)
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return billingapp.CreateAdjustmentRequest{}, false
	}

	return billingapp.CreateAdjustmentRequest{
		PaymentID:      paymentID,
		Type:           billing.AdjustmentType(req.Type),
		AdjustedAmount: toDecimal(req.AdjustedAmount),
		Reason:         req.Reason,
		AdjustedBy:     actorID,
	}, true
}

// Validate godoc
// @Summary      Validate an adjustment
// @Description  Dry-run an adjustment, returning every violated rule without applying anything
// @Tags         adjustments
// @Accept       json
// @Produce      json
// @Param        X-Actor-ID header string true "Acting staff member ID" format(uuid)
// @Param        request body CreateAdjustmentRequest true "Adjustment to validate"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/adjustments/validate [post]
func (h *AdjustmentHandler) Validate(c *gin.Context) {
	appReq, ok := h.toAppRequest(c)
	if !ok {
		return
	}

	result, err := h.adjustmentService.Validate(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// Create godoc
// @Summary      Adjust a payment
// @Description  Correct a payment's amount or reverse it entirely, keeping the audit trail
// @Tags         adjustments
// @Accept       json
// @Produce      json
// @Param        X-Actor-ID header string true "Acting staff member ID" format(uuid)
// @Param        request body CreateAdjustmentRequest true "Adjustment request"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/adjustments [post]
func (h *AdjustmentHandler) Create(c *gin.Context) {
	appReq, ok := h.toAppRequest(c)
	if !ok {
		return
	}

	result, err := h.adjustmentService.Create(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// ListByPayment godoc
// @Summary      List a payment's adjustments
// @Description  Return a payment's full adjustment history, oldest first
// @Tags         adjustments
// @Produce      json
// @Param        id path string true "Payment ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/payments/{id}/adjustments [get]
func (h *AdjustmentHandler) ListByPayment(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	adjustments, err := h.adjustmentService.ListByPayment(c.Request.Context(), paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, adjustments)
}

// ListByInvoice godoc
// @Summary      List an invoice's adjustments
// @Description  Return every adjustment touching an invoice's payments
// @Tags         adjustments
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/invoices/{id}/adjustments [get]
func (h *AdjustmentHandler) ListByInvoice(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	adjustments, err := h.adjustmentService.ListByInvoice(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, adjustments)
}
