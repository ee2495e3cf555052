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

// CreditHandler handles credit ledger API endpoints
type CreditHandler struct {
	BaseHandler
	creditService *billingapp.CreditService
}

// NewCreditHandler creates a new CreditHandler
func NewCreditHandler(creditService *billingapp.CreditService) *CreditHandler {
	return &CreditHandler{
		creditService: creditService,
	}
}

// GrantCreditRequest represents a request to grant credit to a branch
// @Description Request body for a manual credit grant
type GrantCreditRequest struct {
	BranchRelationshipID string  `json:"branch_relationship_id" binding:"required,uuid" example:"550e8400-e29b-41d4-a716-446655440000"`
	Amount               float64 `json:"amount" binding:"required,gt=0" example:"2500.00"`
	SourceType           string  `json:"source_type" binding:"required" example:"ADJUSTMENT"`
	SourceInvoiceID      *string `json:"source_invoice_id" binding:"omitempty,uuid"`
	Notes                string  `json:"notes" example:"Goodwill credit for delivery delay"`
}

// Grant godoc
// @Summary      Grant credit
// @Description  Grant a credit to a branch relationship, consumable by the waterfall
// @Tags         credits
// @Accept       json
// @Produce      json
// @Param        X-Actor-ID header string true "Acting staff member ID" format(uuid)
// @Param        request body GrantCreditRequest true "Credit grant request"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/credits [post]
func (h *CreditHandler) Grant(c *gin.Context) {
	actorID, err := getActorID(c)
	if err != nil {
		h.BadRequest(c, "Invalid or missing actor ID")
		return
	}

	var req GrantCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	branchID, err := uuid.Parse(req.BranchRelationshipID)
	if err != nil {
		h.BadRequest(c, "Invalid branch relationship ID format")
		return
	}
	sourceType := billing.CreditSourceType(req.SourceType)
	if !sourceType.IsValid() {
		h.BadRequest(c, "Unknown credit source type")
		return
	}

	appReq := billingapp.GrantCreditRequest{
		BranchRelationshipID: branchID,
		Amount:               valueobject.NewMoneyPHPFromFloat(req.Amount),
		SourceType:           sourceType,
		Notes:                req.Notes,
		CreatedBy:            actorID,
	}
	if req.SourceInvoiceID != nil && *req.SourceInvoiceID != "" {
		sourceInvoiceID, err := uuid.Parse(*req.SourceInvoiceID)
		if err != nil {
			h.BadRequest(c, "Invalid source invoice ID format")
			return
		}
		appReq.SourceInvoiceID = &sourceInvoiceID
	}

	credit, err := h.creditService.Grant(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, credit)
}

// AvailableBalance godoc
// @Summary      Get available credit for a branch
// @Description  Sum the open credit remainders of one branch relationship
// @Tags         credits
// @Produce      json
// @Param        branch_id path string true "Branch relationship ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/credits/branches/{branch_id}/balance [get]
func (h *CreditHandler) AvailableBalance(c *gin.Context) {
	branchID, err := uuid.Parse(c.Param("branch_id"))
	if err != nil {
		h.BadRequest(c, "Invalid branch relationship ID format")
		return
	}

	balance, err := h.creditService.AvailableBalance(c.Request.Context(), branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{
		"branch_relationship_id": branchID,
		"available_credit":       balance,
	})
}

// Summary godoc
// @Summary      Get a franchisee's credit summary
// @Description  Aggregate granted, used and available credit across a franchisee's branches
// @Tags         credits
// @Produce      json
// @Param        franchisee_id path string true "Franchisee ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/credits/franchisees/{franchisee_id}/summary [get]
func (h *CreditHandler) Summary(c *gin.Context) {
	franchiseeID, err := uuid.Parse(c.Param("franchisee_id"))
	if err != nil {
		h.BadRequest(c, "Invalid franchisee ID format")
		return
	}

	summary, err := h.creditService.Summary(c.Request.Context(), franchiseeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}

// ListByFranchisee godoc
// @Summary      List a franchisee's credits
// @Tags         credits
// @Produce      json
// @Param        franchisee_id path string true "Franchisee ID" format(uuid)
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} dto.Response{meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/credits/franchisees/{franchisee_id} [get]
func (h *CreditHandler) ListByFranchisee(c *gin.Context) {
	franchiseeID, err := uuid.Parse(c.Param("franchisee_id"))
	if err != nil {
		h.BadRequest(c, "Invalid franchisee ID format")
		return
	}

	var query dto.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := shared.Filter{
		Page:     query.Page,
		PageSize: query.PageSize,
		OrderBy:  query.OrderBy,
		OrderDir: query.OrderDir,
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	page, err := h.creditService.ListByFranchisee(c.Request.Context(), franchiseeID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// AutoApply godoc
// @Summary      Apply credit to an invoice
// @Description  Run the oldest-first credit waterfall against one invoice
// @Tags         credits
// @Produce      json
// @Param        id path string true "Invoice ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/invoices/{id}/apply-credit [post]
func (h *CreditHandler) AutoApply(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	result, err := h.creditService.AutoApply(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// AutoApplyForBranch godoc
// @Summary      Apply credit across a branch's invoices
// @Description  Run the credit waterfall over a branch's unpaid invoices, oldest first
// @Tags         credits
// @Produce      json
// @Param        branch_id path string true "Branch relationship ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/credits/branches/{branch_id}/apply [post]
func (h *CreditHandler) AutoApplyForBranch(c *gin.Context) {
	branchID, err := uuid.Parse(c.Param("branch_id"))
	if err != nil {
		h.BadRequest(c, "Invalid branch relationship ID format")
		return
	}

	result, err := h.creditService.AutoApplyForBranch(c.Request.Context(), branchID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
