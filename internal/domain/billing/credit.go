package billing

import (
	"fmt"
	"time"

	"github.com/franchise/backend/internal/domain/shared"
	"github.com/franchise/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditSourceType records where a credit came from
type CreditSourceType string

const (
	CreditSourceOverpayment CreditSourceType = "OVERPAYMENT" // payment exceeded the invoice balance
	CreditSourceReturn      CreditSourceType = "RETURN"      // goods returned after billing
	CreditSourceAdjustment  CreditSourceType = "ADJUSTMENT"  // manual grant by operations
)

// IsValid checks if the source is a known CreditSourceType
func (s CreditSourceType) IsValid() bool {
	switch s {
	case CreditSourceOverpayment, CreditSourceReturn, CreditSourceAdjustment:
		return true
	}
	return false
}

// String returns the string representation of CreditSourceType
func (s CreditSourceType) String() string {
	return string(s)
}

// CreditApplication records one consumption of a credit against an invoice
type CreditApplication struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	CreditID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AppliedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CreditApplication) TableName() string {
	return "credit_applications"
}

// Credit is the aggregate root for one grant of franchisee credit. Amount is
// fixed at grant time; UsedAmount grows as the waterfall consumes it. A credit
// is never deleted, only depleted or revoked.
type Credit struct {
	shared.AuditedAggregateRoot
	BranchRelationshipID uuid.UUID        `gorm:"type:uuid;not null;index"`
	FranchiseeID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	Amount               decimal.Decimal  `gorm:"type:decimal(18,4);not null"`
	UsedAmount           decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	SourceType           CreditSourceType `gorm:"type:varchar(30);not null"`
	SourceInvoiceID      *uuid.UUID       `gorm:"type:uuid;index"`
	SourcePaymentID      *uuid.UUID       `gorm:"type:uuid;index"`
	Notes                string           `gorm:"type:varchar(500)"`
	RevokedAt            *time.Time
	Applications         []CreditApplication `gorm:"foreignKey:CreditID;references:ID"`
}

// TableName returns the table name for GORM
func (Credit) TableName() string {
	return "credits"
}

// NewCredit grants a new credit to a franchisee branch
func NewCredit(
	branchRelationshipID uuid.UUID,
	franchiseeID uuid.UUID,
	amount valueobject.Money,
	sourceType CreditSourceType,
	createdBy uuid.UUID,
	notes string,
) (*Credit, error) {
	if branchRelationshipID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH_RELATIONSHIP", "Branch relationship ID cannot be empty")
	}
	if franchiseeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FRANCHISEE", "Franchisee ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}
	if !sourceType.IsValid() {
		return nil, shared.NewDomainError("INVALID_SOURCE", fmt.Sprintf("Unknown credit source %q", sourceType))
	}

	c := &Credit{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		BranchRelationshipID: branchRelationshipID,
		FranchiseeID:         franchiseeID,
		Amount:               amount.Amount(),
		UsedAmount:           decimal.Zero,
		SourceType:           sourceType,
		Notes:                notes,
		Applications:         []CreditApplication{},
	}
	c.AddDomainEvent(NewCreditGrantedEvent(c))
	return c, nil
}

// NewOverpaymentCredit grants a credit from the excess portion of a payment
func NewOverpaymentCredit(
	branchRelationshipID uuid.UUID,
	franchiseeID uuid.UUID,
	excess valueobject.Money,
	sourceInvoiceID uuid.UUID,
	sourcePaymentID uuid.UUID,
	createdBy uuid.UUID,
) (*Credit, error) {
	c, err := NewCredit(branchRelationshipID, franchiseeID, excess, CreditSourceOverpayment, createdBy,
		fmt.Sprintf("Overpayment on invoice %s", sourceInvoiceID))
	if err != nil {
		return nil, err
	}
	invID := sourceInvoiceID
	payID := sourcePaymentID
	c.SourceInvoiceID = &invID
	c.SourcePaymentID = &payID
	return c, nil
}

// RemainingAmount returns the unconsumed portion of the credit
func (c *Credit) RemainingAmount() decimal.Decimal {
	return c.Amount.Sub(c.UsedAmount)
}

// GetRemainingMoney returns the unconsumed portion as Money
func (c *Credit) GetRemainingMoney() valueobject.Money {
	return valueobject.NewMoneyPHP(c.RemainingAmount())
}

// AvailableAmount returns the consumable value of the credit. A revoked
// credit keeps its arithmetic remainder for the audit trail but has nothing
// left to apply.
func (c *Credit) AvailableAmount() decimal.Decimal {
	if c.IsRevoked() {
		return decimal.Zero
	}
	return c.RemainingAmount()
}

// IsDepleted returns true once the credit is fully consumed
func (c *Credit) IsDepleted() bool {
	return !c.RemainingAmount().IsPositive()
}

// IsRevoked returns true if the unused remainder was withdrawn
func (c *Credit) IsRevoked() bool {
	return c.RevokedAt != nil
}

// IsOpen reports whether the credit still has consumable value
func (c *Credit) IsOpen() bool {
	return !c.IsDepleted() && !c.IsRevoked()
}

// Consume uses part of the credit against an invoice, recording the
// application. Consuming more than the remainder is a conflict, not a clamp.
func (c *Credit) Consume(invoiceID uuid.UUID, amount valueobject.Money, now time.Time) error {
	if c.IsRevoked() {
		return shared.NewDomainError("CREDIT_REVOKED", "Credit has been revoked")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Consumed amount must be positive")
	}
	if amount.Amount().GreaterThan(c.RemainingAmount()) {
		return shared.NewDomainError(shared.ErrInsufficientCredit.Code,
			fmt.Sprintf("Cannot consume %s from credit with %s remaining", amount.StringFixed(2), c.RemainingAmount().StringFixed(2)))
	}

	c.UsedAmount = c.UsedAmount.Add(amount.Amount())
	c.Applications = append(c.Applications, CreditApplication{
		ID:        uuid.New(),
		CreditID:  c.ID,
		InvoiceID: invoiceID,
		Amount:    amount.Amount(),
		AppliedAt: now,
	})

	c.UpdatedAt = now
	c.IncrementVersion()
	c.AddDomainEvent(NewCreditConsumedEvent(c, invoiceID, amount))
	if c.IsDepleted() {
		c.AddDomainEvent(NewCreditDepletedEvent(c))
	}
	return nil
}

// RevokeUnused withdraws the unconsumed remainder of the credit. Already
// applied portions stay applied; revoking a depleted credit is a no-op error.
func (c *Credit) RevokeUnused(now time.Time) (valueobject.Money, error) {
	if c.IsRevoked() {
		return valueobject.ZeroPHP(), shared.NewDomainError("CREDIT_REVOKED", "Credit has already been revoked")
	}
	remaining := c.RemainingAmount()
	if !remaining.IsPositive() {
		return valueobject.ZeroPHP(), shared.NewDomainError("CREDIT_DEPLETED", "Credit has no unused remainder to revoke")
	}

	// UsedAmount is left alone: it must stay equal to the sum of recorded
	// applications. RevokedAt already closes the credit for the waterfall.
	revoked := valueobject.NewMoneyPHP(remaining)
	c.RevokedAt = &now
	c.UpdatedAt = now
	c.IncrementVersion()
	c.AddDomainEvent(NewCreditRevokedEvent(c, revoked))
	return revoked, nil
}

// CreditSummary aggregates a franchisee's credit position
type CreditSummary struct {
	FranchiseeID   uuid.UUID
	TotalGranted   decimal.Decimal
	TotalUsed      decimal.Decimal
	TotalAvailable decimal.Decimal
	OpenCredits    int
}
