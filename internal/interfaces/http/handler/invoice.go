package handler

import (
	"time"

	billingapp "github.com/franchise/backend/internal/application/billing"
	"github.com/franchise/backend/internal/domain/billing"
	"github.com/franchise/backend/internal/domain/shared"
	"github.com/franchise/backend/internal/domain/shared/valueobject"
	"github.com/franchise/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// InvoiceHandler handles invoice-related API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *billingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
	}
}

// GenerateInvoiceRequest represents a request to generate an invoice from sales
// @Description Request body for generating a billing invoice
type GenerateInvoiceRequest struct {
	BranchRelationshipID string `json:"branch_relationship_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	PeriodStart          string `json:"period_start" binding:"required" example:"2026-08-01"`
	PeriodEnd            string `json:"period_end" binding:"required" example:"2026-08-15"`
	InvoiceDate          string `json:"invoice_date" example:"2026-08-16"`
	DueDays              *int   `json:"due_days" binding:"omitempty,min=0" example:"30"`
	Notes                string `json:"notes" example:"First half of August"`
}

// GenerateBulkInvoiceRequest represents a request to generate invoices for many branches
// @Description Request body for bulk invoice generation
type GenerateBulkInvoiceRequest struct {
	BranchRelationshipIDs []string `json:"branch_relationship_ids" binding:"omitempty,dive,uuid"`
	PeriodStart           string   `json:"period_start" binding:"required" example:"2026-08-01"`
	PeriodEnd             string   `json:"period_end" binding:"required" example:"2026-08-15"`
	DueDays               *int     `json:"due_days" binding:"omitempty,min=0" example:"30"`
}

// OpeningBalanceRequest represents a request to record a migrated opening balance
// @Description Request body for creating an opening balance invoice
type OpeningBalanceRequest struct {
	BranchRelationshipID string  `json:"branch_relationship_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Amount               float64 `json:"amount" binding:"required,gt=0" example:"125000.50"`
	InvoiceDate          string  `json:"invoice_date" binding:"required" example:"2026-01-01"`
	DueDate              string  `json:"due_date" binding:"required" example:"2026-01-31"`
	Notes                string  `json:"notes" example:"Balance carried over from the old system"`
}

// UpdateInvoiceStatusRequest represents a request to move an invoice through its lifecycle
// @Description Request body for updating invoice status
type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" binding:"required" example:"SENT"`
}

// RescheduleInvoiceRequest represents a request to move an invoice date
// @Description Request body for rescheduling an invoice
type RescheduleInvoiceRequest struct {
	InvoiceDate string `json:"invoice_date" binding:"required" example:"2026-08-20"`
}

// InvoiceListFilter binds invoice list query parameters
type InvoiceListFilter struct {
	dto.ListRequest
	BranchRelationshipID string `form:"branch_relationship_id" binding:"omitempty,uuid"`
	FranchiseeID         string `form:"franchisee_id" binding:"omitempty,uuid"`
	Status               string `form:"status"`
	PaymentStatus        string `form:"payment_status"`
	DateFrom             string `form:"date_from"`
	DateTo               string `form:"date_to"`
}

// Generate godoc
// @Summary      Generate an invoice
// @Description  Generate a billing invoice from a branch's sales in a period
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        X-Actor-ID header string true "Acting staff member ID" format(uuid)
// @Param        request body GenerateInvoiceRequest true "Invoice generation request"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/invoices/generate [post]
func (h *InvoiceHandler) Generate(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing actor ID")
		return
	}

	var req GenerateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	branchID, err := uuid.Parse(req.BranchRelationshipID)
	if err != nil {
		h.BadRequest(c, "Invalid branch relationship ID format")
		return
	}
	periodStart, err := parseDate(req.PeriodStart)
	if err != nil {
		h.BadRequest(c, "Invalid period_start date")
		return
	}
	periodEnd, err := parseDate(req.PeriodEnd)
	if err != nil {
		h.BadRequest(c, "Invalid period_end date")
		return
	}

	appReq := billingapp.GenerateInvoiceRequest{
		BranchRelationshipID: branchID,
		PeriodStart:          periodStart,
		PeriodEnd:            periodEnd,
		DueDays:              req.DueDays,
		CreatedBy:            actorID,
		Notes:                req.Notes,
	}
	if req.InvoiceDate != "" {
		invoiceDate, err := parseDate(req.InvoiceDate)
		if err != nil {
			h.BadRequest(c, "Invalid invoice_date date")
			return
		}
		appReq.InvoiceDate = &invoiceDate
	}

	result, err := h.invoiceService.Generate(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, result)
}

// GenerateBulk godoc
// @Summary      Generate invoices in bulk
// @Description  Generate invoices for the listed branches, or every active branch when none are listed
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        X-Actor-ID header string true "Acting staff member ID" format(uuid)
// @Param        request body GenerateBulkInvoiceRequest true "Bulk generation request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/invoices/generate-bulk [post]
func (h *InvoiceHandler) GenerateBulk(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing actor ID")
		return
	}

	var req GenerateBulkInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	periodStart, err := parseDate(req.PeriodStart)
	if err != nil {
		h.BadRequest(c, "Invalid period_start date")
		return
	}
	periodEnd, err := parseDate(req.PeriodEnd)
	if err != nil {
		h.BadRequest(c, "Invalid period_end date")
		return
	}

	appReq := billingapp.GenerateBulkRequest{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		DueDays:     req.DueDays,
		CreatedBy:   actorID,
	}
	for _, idStr := range req.BranchRelationshipIDs {
		branchID, err := uuid.Parse(idStr)
		if err != nil {
			h.BadRequest(c, "Invalid branch relationship ID format")
			return
		}
		appReq.BranchRelationshipIDs = append(appReq.BranchRelationshipIDs, branchID)
	}

	result, err := h.invoiceService.GenerateBulk(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// CreateOpeningBalance godoc
// @Summary      Create an opening balance invoice
// @Description  Record a branch's balance carried over from a previous system
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        X-Actor-ID header string true "Acting staff member ID" format(uuid)
// @Param        request body OpeningBalanceRequest true "Opening balance request"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/invoices/opening-balance [post]
func (h *InvoiceHandler) CreateOpeningBalance(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing actor ID")
		return
	}

	var req OpeningBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	branchID, err := uuid.Parse(req.BranchRelationshipID)
	if err != nil {
		h.BadRequest(c, "Invalid branch relationship ID format")
		return
	}
	invoiceDate, err := parseDate(req.InvoiceDate)
	if err != nil {
		h.BadRequest(c, "Invalid invoice_date date")
		return
	}
	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		h.BadRequest(c, "Invalid due_date date")
		return
	}

	invoice, err := h.invoiceService.CreateOpeningBalance(c.Request.Context(), billingapp.OpeningBalanceRequest{
		BranchRelationshipID: branchID,
		Amount:               valueobject.NewMoneyPHPFromFloat(req.Amount),
		InvoiceDate:          invoiceDate,
		DueDate:              dueDate,
		CreatedBy:            actorID,
		Notes:                req.Notes,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, invoice)
}

// GetByID godoc
// @Summary      Get invoice by ID
// @Description  Retrieve an invoice with its line items and payment state
// @Tags         invoices
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	invoice, err := h.invoiceService.GetByID(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// List godoc
// @Summary      List invoices
// @Description  Retrieve a paginated invoice list with optional filtering
// @Tags         invoices
// @Produce      json
// @Param        branch_relationship_id query string false "Branch relationship ID" format(uuid)
// @Param        franchisee_id query string false "Franchisee ID" format(uuid)
// @Param        status query string false "Invoice status" Enums(DRAFT, SENT, APPROVED, CANCELLED)
// @Param        payment_status query string false "Payment status" Enums(UNPAID, PARTIAL, PAID, OVERDUE)
// @Param        date_from query string false "Invoice date lower bound"
// @Param        date_to query string false "Invoice date upper bound"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var query InvoiceListFilter
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter, err := h.toInvoiceFilter(query)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// UpdateStatus godoc
// @Summary      Update invoice status
// @Description  Move an invoice forward through its lifecycle or cancel it
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        X-Actor-ID header string true "Acting staff member ID" format(uuid)
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body UpdateInvoiceStatusRequest true "Status update request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/invoices/{id}/status [patch]
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing actor ID")
		return
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req UpdateInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	status := billing.InvoiceStatus(req.Status)
	if !status.IsValid() {
		h.BadRequest(c, "Unknown invoice status")
		return
	}

	invoice, err := h.invoiceService.UpdateStatus(c.Request.Context(), invoiceID, status, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Reschedule godoc
// @Summary      Reschedule an invoice
// @Description  Move an unpaid invoice's date, recomputing its due date from the branch terms
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Param        request body RescheduleInvoiceRequest true "Reschedule request"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/invoices/{id}/reschedule [patch]
func (h *InvoiceHandler) Reschedule(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	var req RescheduleInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	newDate, err := parseDate(req.InvoiceDate)
	if err != nil {
		h.BadRequest(c, "Invalid invoice_date date")
		return
	}

	invoice, err := h.invoiceService.Reschedule(c.Request.Context(), invoiceID, newDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

func (h *InvoiceHandler) toInvoiceFilter(query InvoiceListFilter) (billing.InvoiceFilter, error) {
	filter := billing.InvoiceFilter{
		Filter: shared.Filter{
			Page:     query.Page,
			PageSize: query.PageSize,
			OrderBy:  query.OrderBy,
			OrderDir: query.OrderDir,
			Search:   query.Search,
		},
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	if query.BranchRelationshipID != "" {
		branchID, err := uuid.Parse(query.BranchRelationshipID)
		if err != nil {
			return filter, err
		}
		filter.BranchRelationshipID = &branchID
	}
	if query.FranchiseeID != "" {
		franchiseeID, err := uuid.Parse(query.FranchiseeID)
		if err != nil {
			return filter, err
		}
		filter.FranchiseeID = &franchiseeID
	}
	if query.Status != "" {
		status := billing.InvoiceStatus(query.Status)
		if !status.IsValid() {
			return filter, shared.NewDomainError("INVALID_STATUS", "Unknown invoice status")
		}
		filter.Status = &status
	}
	if query.PaymentStatus != "" {
		paymentStatus := billing.PaymentStatus(query.PaymentStatus)
		if !paymentStatus.IsValid() {
			return filter, shared.NewDomainError("INVALID_STATUS", "Unknown payment status")
		}
		filter.PaymentStatus = &paymentStatus
	}
	if query.DateFrom != "" {
		from, err := parseDate(query.DateFrom)
		if err != nil {
			return filter, err
		}
		filter.DateFrom = &from
	}
	if query.DateTo != "" {
		to, err := parseDate(query.DateTo)
		if err != nil {
			return filter, err
		}
		filter.DateTo = &to
	}
	return filter, nil
}

// parseDate accepts a date-only value or a full RFC 3339 timestamp
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
