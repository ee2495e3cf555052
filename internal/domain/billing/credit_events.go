package billing

import (
	"github.com/franchise/backend/internal/domain/shared"
	"github.com/franchise/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Credit event types
const (
	EventTypeCreditGranted  = "billing.credit.granted"
	EventTypeCreditConsumed = "billing.credit.consumed"
	EventTypeCreditDepleted = "billing.credit.depleted"
	EventTypeCreditRevoked  = "billing.credit.revoked"
)

// CreditGrantedEvent is raised when a credit is created
type CreditGrantedEvent struct {
	shared.BaseDomainEvent
	FranchiseeID string          `json:"franchisee_id"`
	Amount       decimal.Decimal `json:"amount"`
	SourceType   string          `json:"source_type"`
}

// NewCreditGrantedEvent creates a CreditGrantedEvent
func NewCreditGrantedEvent(c *Credit) *CreditGrantedEvent {
	return &CreditGrantedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditGranted, "Credit", c.ID),
		FranchiseeID:    c.FranchiseeID.String(),
		Amount:          c.Amount,
		SourceType:      c.SourceType.String(),
	}
}

// CreditConsumedEvent is raised when the waterfall draws from a credit
type CreditConsumedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID       `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	Remaining decimal.Decimal `json:"remaining"`
}

// NewCreditConsumedEvent creates a CreditConsumedEvent
func NewCreditConsumedEvent(c *Credit, invoiceID uuid.UUID, amount valueobject.Money) *CreditConsumedEvent {
	return &CreditConsumedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditConsumed, "Credit", c.ID),
		InvoiceID:       invoiceID,
		Amount:          amount.Amount(),
		Remaining:       c.RemainingAmount(),
	}
}

// CreditDepletedEvent is raised when a credit is fully consumed
type CreditDepletedEvent struct {
	shared.BaseDomainEvent
	FranchiseeID string `json:"franchisee_id"`
}

// NewCreditDepletedEvent creates a CreditDepletedEvent
func NewCreditDepletedEvent(c *Credit) *CreditDepletedEvent {
	return &CreditDepletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditDepleted, "Credit", c.ID),
		FranchiseeID:    c.FranchiseeID.String(),
	}
}

// CreditRevokedEvent is raised when the unused remainder is withdrawn
type CreditRevokedEvent struct {
	shared.BaseDomainEvent
	RevokedAmount decimal.Decimal `json:"revoked_amount"`
}

// NewCreditRevokedEvent creates a CreditRevokedEvent
func NewCreditRevokedEvent(c *Credit, revoked valueobject.Money) *CreditRevokedEvent {
	return &CreditRevokedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCreditRevoked, "Credit", c.ID),
		RevokedAmount:   revoked.Amount(),
	}
}
