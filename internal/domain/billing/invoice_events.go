package billing

import (
	"github.com/franchise/backend/internal/domain/shared"
	"github.com/franchise/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Invoice event types
const (
	EventTypeInvoiceGenerated      = "billing.invoice.generated"
	EventTypeInvoicePaymentApplied = "billing.invoice.payment_applied"
	EventTypeInvoiceCreditApplied  = "billing.invoice.credit_applied"
	EventTypeInvoicePaid           = "billing.invoice.paid"
	EventTypeInvoiceStatusChanged  = "billing.invoice.status_changed"
	EventTypeInvoiceRescheduled    = "billing.invoice.rescheduled"
)

// InvoiceGeneratedEvent is raised when a new invoice is created
type InvoiceGeneratedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	FranchiseeID  string          `json:"franchisee_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// NewInvoiceGeneratedEvent creates an InvoiceGeneratedEvent
func NewInvoiceGeneratedEvent(inv *Invoice) *InvoiceGeneratedEvent {
	return &InvoiceGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceGenerated, "Invoice", inv.ID),
		InvoiceNumber:   inv.InvoiceNumber,
		FranchiseeID:    inv.FranchiseeID.String(),
		TotalAmount:     inv.TotalAmount,
	}
}

// InvoicePaymentAppliedEvent is raised when cash is applied to an invoice
type InvoicePaymentAppliedEvent struct {
	shared.BaseDomainEvent
	Amount  decimal.Decimal `json:"amount"`
	Balance decimal.Decimal `json:"balance"`
}

// NewInvoicePaymentAppliedEvent creates an InvoicePaymentAppliedEvent
func NewInvoicePaymentAppliedEvent(inv *Invoice, amount valueobject.Money) *InvoicePaymentAppliedEvent {
	return &InvoicePaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaymentApplied, "Invoice", inv.ID),
		Amount:          amount.Amount(),
		Balance:         inv.Balance,
	}
}

// InvoiceCreditAppliedEvent is raised when the waterfall applies credit
type InvoiceCreditAppliedEvent struct {
	shared.BaseDomainEvent
	Amount  decimal.Decimal `json:"amount"`
	Balance decimal.Decimal `json:"balance"`
}

// NewInvoiceCreditAppliedEvent creates an InvoiceCreditAppliedEvent
func NewInvoiceCreditAppliedEvent(inv *Invoice, amount valueobject.Money) *InvoiceCreditAppliedEvent {
	return &InvoiceCreditAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreditApplied, "Invoice", inv.ID),
		Amount:          amount.Amount(),
		Balance:         inv.Balance,
	}
}

// InvoicePaidEvent is raised when the balance reaches zero
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string          `json:"invoice_number"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// NewInvoicePaidEvent creates an InvoicePaidEvent
func NewInvoicePaidEvent(inv *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, "Invoice", inv.ID),
		InvoiceNumber:   inv.InvoiceNumber,
		TotalAmount:     inv.TotalAmount,
	}
}

// InvoiceStatusChangedEvent is raised on document status transitions
type InvoiceStatusChangedEvent struct {
	shared.BaseDomainEvent
	PreviousStatus string `json:"previous_status"`
	NewStatus      string `json:"new_status"`
}

// NewInvoiceStatusChangedEvent creates an InvoiceStatusChangedEvent
func NewInvoiceStatusChangedEvent(inv *Invoice, previous InvoiceStatus) *InvoiceStatusChangedEvent {
	return &InvoiceStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceStatusChanged, "Invoice", inv.ID),
		PreviousStatus:  previous.String(),
		NewStatus:       inv.Status.String(),
	}
}

// InvoiceRescheduledEvent is raised when the invoice date is moved
type InvoiceRescheduledEvent struct {
	shared.BaseDomainEvent
	InvoiceDate string `json:"invoice_date"`
	DueDate     string `json:"due_date"`
}

// NewInvoiceRescheduledEvent creates an InvoiceRescheduledEvent
func NewInvoiceRescheduledEvent(inv *Invoice) *InvoiceRescheduledEvent {
	return &InvoiceRescheduledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceRescheduled, "Invoice", inv.ID),
		InvoiceDate:     inv.InvoiceDate.Format("2006-01-02"),
		DueDate:         inv.DueDate.Format("2006-01-02"),
	}
}
