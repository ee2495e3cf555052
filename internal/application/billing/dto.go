package billing

import (
	"time"

	"github.com/franchise/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceItemResponse is the outward projection of one invoice line item
type InvoiceItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	SaleID    uuid.UUID       `json:"sale_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
	Tax       decimal.Decimal `json:"tax"`
	Shipping  decimal.Decimal `json:"shipping"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// InvoiceResponse is the outward projection of an invoice. PaymentStatus and
// Balance are recomputed against the read time, so an invoice past its due
// date reports overdue without a write.
type InvoiceResponse struct {
	ID                   uuid.UUID             `json:"id"`
	InvoiceNumber        string                `json:"invoice_number"`
	BranchRelationshipID uuid.UUID             `json:"branch_relationship_id"`
	FranchiseeID         uuid.UUID             `json:"franchisee_id"`
	InvoiceDate          time.Time             `json:"invoice_date"`
	PeriodStart          time.Time             `json:"period_start"`
	PeriodEnd            time.Time             `json:"period_end"`
	DueDate              time.Time             `json:"due_date"`
	Subtotal             decimal.Decimal       `json:"subtotal"`
	TaxAmount            decimal.Decimal       `json:"tax_amount"`
	Discount             decimal.Decimal       `json:"discount"`
	TotalAmount          decimal.Decimal       `json:"total_amount"`
	PaidAmount           decimal.Decimal       `json:"paid_amount"`
	CreditAmount         decimal.Decimal       `json:"credit_amount"`
	Balance              decimal.Decimal       `json:"balance"`
	PreviousBalance      decimal.Decimal       `json:"previous_balance"`
	AmountDue            decimal.Decimal       `json:"amount_due"`
	Status               string                `json:"status"`
	PaymentStatus        string                `json:"payment_status"`
	Notes                string                `json:"notes,omitempty"`
	ApprovedBy           *uuid.UUID            `json:"approved_by,omitempty"`
	ApprovedAt           *time.Time            `json:"approved_at,omitempty"`
	Items                []InvoiceItemResponse `json:"items,omitempty"`
	Version              int                   `json:"version"`
	CreatedAt            time.Time             `json:"created_at"`
	UpdatedAt            time.Time             `json:"updated_at"`
}

// ToInvoiceItemResponse maps a line item to its projection
func ToInvoiceItemResponse(item *billing.InvoiceItem) InvoiceItemResponse {
	return InvoiceItemResponse{
		ID:        item.ID,
		SaleID:    item.SaleID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		Discount:  item.Discount,
		Tax:       item.Tax,
		Shipping:  item.Shipping,
		LineTotal: item.LineTotal,
	}
}

// ToInvoiceResponse maps an invoice to its projection as of now
func ToInvoiceResponse(inv *billing.Invoice, now time.Time) InvoiceResponse {
	inv.Recompute(now)

	items := make([]InvoiceItemResponse, len(inv.Items))
	for i := range inv.Items {
		items[i] = ToInvoiceItemResponse(&inv.Items[i])
	}

	return InvoiceResponse{
		ID:                   inv.ID,
		InvoiceNumber:        inv.InvoiceNumber,
		BranchRelationshipID: inv.BranchRelationshipID,
		FranchiseeID:         inv.FranchiseeID,
		InvoiceDate:          inv.InvoiceDate,
		PeriodStart:          inv.PeriodStart,
		PeriodEnd:            inv.PeriodEnd,
		DueDate:              inv.DueDate,
		Subtotal:             inv.Subtotal,
		TaxAmount:            inv.TaxAmount,
		Discount:             inv.Discount,
		TotalAmount:          inv.TotalAmount,
		PaidAmount:           inv.PaidAmount,
		CreditAmount:         inv.CreditAmount,
		Balance:              inv.Balance,
		PreviousBalance:      inv.PreviousBalance,
		AmountDue:            inv.AmountDue(),
		Status:               string(inv.Status),
		PaymentStatus:        string(inv.PaymentStatus),
		Notes:                inv.Notes,
		ApprovedBy:           inv.ApprovedBy,
		ApprovedAt:           inv.ApprovedAt,
		Items:                items,
		Version:              inv.Version,
		CreatedAt:            inv.CreatedAt,
		UpdatedAt:            inv.UpdatedAt,
	}
}

// PaymentResponse is the outward projection of a payment record
type PaymentResponse struct {
	ID          uuid.UUID       `json:"id"`
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Method      string          `json:"method"`
	Reference   string          `json:"reference,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	ReceiptRef  string          `json:"receipt_ref,omitempty"`
	AccountID   *uuid.UUID      `json:"account_id,omitempty"`
	Reversed    bool            `json:"reversed"`
	CreatedBy   *uuid.UUID      `json:"created_by,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToPaymentResponse maps a payment to its projection
func ToPaymentResponse(p *billing.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		InvoiceID:   p.InvoiceID,
		Amount:      p.Amount,
		PaymentDate: p.PaymentDate,
		Method:      string(p.Method),
		Reference:   p.Reference,
		Notes:       p.Notes,
		ReceiptRef:  p.ReceiptRef,
		AccountID:   p.AccountID,
		Reversed:    p.IsReversed(),
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
	}
}

// AdjustmentResponse is the outward projection of one audit record
type AdjustmentResponse struct {
	ID             uuid.UUID       `json:"id"`
	PaymentID      uuid.UUID       `json:"payment_id"`
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	Type           string          `json:"type"`
	OriginalAmount decimal.Decimal `json:"original_amount"`
	AdjustedAmount decimal.Decimal `json:"adjusted_amount"`
	Reason         string          `json:"reason"`
	AdjustedBy     *uuid.UUID      `json:"adjusted_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToAdjustmentResponse maps an adjustment to its projection
func ToAdjustmentResponse(a *billing.Adjustment) AdjustmentResponse {
	return AdjustmentResponse{
		ID:             a.ID,
		PaymentID:      a.PaymentID,
		InvoiceID:      a.InvoiceID,
		Type:           string(a.Type),
		OriginalAmount: a.OriginalAmount,
		AdjustedAmount: a.AdjustedAmount,
		Reason:         a.Reason,
		AdjustedBy:     a.AdjustedBy,
		CreatedAt:      a.CreatedAt,
	}
}

// CreditApplicationResponse is the projection of one credit application
type CreditApplicationResponse struct {
	ID        uuid.UUID       `json:"id"`
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	AppliedAt time.Time       `json:"applied_at"`
}

// CreditResponse is the outward projection of a credit
type CreditResponse struct {
	ID                   uuid.UUID                   `json:"id"`
	BranchRelationshipID uuid.UUID                   `json:"branch_relationship_id"`
	FranchiseeID         uuid.UUID                   `json:"franchisee_id"`
	Amount               decimal.Decimal             `json:"amount"`
	UsedAmount           decimal.Decimal             `json:"used_amount"`
	RemainingAmount      decimal.Decimal             `json:"remaining_amount"`
	SourceType           string                      `json:"source_type"`
	SourceInvoiceID      *uuid.UUID                  `json:"source_invoice_id,omitempty"`
	SourcePaymentID      *uuid.UUID                  `json:"source_payment_id,omitempty"`
	Notes                string                      `json:"notes,omitempty"`
	Depleted             bool                        `json:"depleted"`
	RevokedAt            *time.Time                  `json:"revoked_at,omitempty"`
	Applications         []CreditApplicationResponse `json:"applications,omitempty"`
	CreatedAt            time.Time                   `json:"created_at"`
}

// ToCreditResponse maps a credit to its projection
func ToCreditResponse(c *billing.Credit) CreditResponse {
	apps := make([]CreditApplicationResponse, len(c.Applications))
	for i, a := range c.Applications {
		apps[i] = CreditApplicationResponse{
			ID:        a.ID,
			InvoiceID: a.InvoiceID,
			Amount:    a.Amount,
			AppliedAt: a.AppliedAt,
		}
	}

	return CreditResponse{
		ID:                   c.ID,
		BranchRelationshipID: c.BranchRelationshipID,
		FranchiseeID:         c.FranchiseeID,
		Amount:               c.Amount,
		UsedAmount:           c.UsedAmount,
		RemainingAmount:      c.AvailableAmount(),
		SourceType:           string(c.SourceType),
		SourceInvoiceID:      c.SourceInvoiceID,
		SourcePaymentID:      c.SourcePaymentID,
		Notes:                c.Notes,
		Depleted:             c.IsDepleted(),
		RevokedAt:            c.RevokedAt,
		Applications:         apps,
		CreatedAt:            c.CreatedAt,
	}
}

// CreditSummaryResponse aggregates a franchisee's credit position
type CreditSummaryResponse struct {
	FranchiseeID   uuid.UUID       `json:"franchisee_id"`
	TotalCredits   decimal.Decimal `json:"total_credits"`
	TotalUsed      decimal.Decimal `json:"total_used"`
	TotalRemaining decimal.Decimal `json:"total_remaining"`
	OpenCredits    int             `json:"open_credits"`
}

// ToCreditSummaryResponse maps a domain summary to its projection
func ToCreditSummaryResponse(s *billing.CreditSummary) CreditSummaryResponse {
	return CreditSummaryResponse{
		FranchiseeID:   s.FranchiseeID,
		TotalCredits:   s.TotalGranted,
		TotalUsed:      s.TotalUsed,
		TotalRemaining: s.TotalAvailable,
		OpenCredits:    s.OpenCredits,
	}
}
