package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/franchise/backend/internal/domain/shared"
	"github.com/franchise/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod enumerates how a payment was tendered
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "CASH"
	PaymentMethodCheque       PaymentMethod = "CHEQUE"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodGCash        PaymentMethod = "GCASH"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// IsValid checks if the method is a known PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCheque, PaymentMethodBankTransfer, PaymentMethodGCash, PaymentMethodOther:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// Payment records money received against one invoice. Amount always holds the
// current effective amount; corrections and reversals never rewrite history
// in place but append an Adjustment and then update Amount.
type Payment struct {
	shared.BaseEntity
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	PaymentDate time.Time       `gorm:"not null;index"`
	Method      PaymentMethod   `gorm:"type:varchar(30);not null"`
	Reference   string          `gorm:"type:varchar(100)"`
	Notes       string          `gorm:"type:varchar(500)"`
	ReceiptRef  string          `gorm:"type:varchar(255)"`
	AccountID   *uuid.UUID      `gorm:"type:uuid"`
	CreatedBy   *uuid.UUID      `gorm:"type:uuid"`
	Version     int             `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// NewPayment creates a payment record against an invoice
func NewPayment(
	invoiceID uuid.UUID,
	amount valueobject.Money,
	paymentDate time.Time,
	method PaymentMethod,
	reference string,
	notes string,
	createdBy uuid.UUID,
) (*Payment, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_METHOD", fmt.Sprintf("Unknown payment method %q", method))
	}

	p := &Payment{
		BaseEntity:  shared.NewBaseEntity(),
		InvoiceID:   invoiceID,
		Amount:      amount.Amount(),
		PaymentDate: paymentDate,
		Method:      method,
		Reference:   strings.TrimSpace(reference),
		Notes:       notes,
		Version:     1,
	}
	if createdBy != uuid.Nil {
		actor := createdBy
		p.CreatedBy = &actor
	}
	return p, nil
}

// GetAmountMoney returns the current effective amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyPHP(p.Amount)
}

// IsReversed returns true once the payment has been adjusted down to zero
func (p *Payment) IsReversed() bool {
	return p.Amount.IsZero()
}

// AttachReceipt records the storage key of an uploaded receipt image
func (p *Payment) AttachReceipt(ref string) {
	p.ReceiptRef = ref
	p.Touch()
}

// AdjustmentType distinguishes a correction from a full reversal
type AdjustmentType string

const (
	AdjustmentTypeCorrection AdjustmentType = "CORRECTION" // amount changed to a new positive value
	AdjustmentTypeReversal   AdjustmentType = "REVERSAL"   // amount voided to zero
)

// IsValid checks if the type is a known AdjustmentType
func (t AdjustmentType) IsValid() bool {
	return t == AdjustmentTypeCorrection || t == AdjustmentTypeReversal
}

// String returns the string representation of AdjustmentType
func (t AdjustmentType) String() string {
	return string(t)
}

// MinAdjustmentReasonLength is the shortest accepted audit reason
const MinAdjustmentReasonLength = 10

// Adjustment is an append-only audit record of one change to a payment's
// amount. Adjustment rows are never updated or deleted.
type Adjustment struct {
	shared.BaseEntity
	PaymentID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Type           AdjustmentType  `gorm:"type:varchar(20);not null"`
	OriginalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	AdjustedAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reason         string          `gorm:"type:varchar(500);not null"`
	AdjustedBy     *uuid.UUID      `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (Adjustment) TableName() string {
	return "payment_adjustments"
}

// RuleViolation is one failed adjustment precondition. ValidateAdjustment
// collects every violation so the caller can surface them all at once.
type RuleViolation struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidateAdjustment checks an adjustment request against a payment without
// applying it. It returns all violations rather than stopping at the first.
func ValidateAdjustment(payment *Payment, adjType AdjustmentType, adjustedAmount decimal.Decimal, reason string) []RuleViolation {
	var violations []RuleViolation

	if payment.IsReversed() {
		violations = append(violations, RuleViolation{
			Field:   "payment_id",
			Code:    "PAYMENT_REVERSED",
			Message: "Payment has already been reversed and cannot be adjusted again",
		})
	}
	if adjustedAmount.IsNegative() {
		violations = append(violations, RuleViolation{
			Field:   "adjusted_amount",
			Code:    "NEGATIVE_AMOUNT",
			Message: "Adjusted amount cannot be negative",
		})
	}
	if adjType == AdjustmentTypeCorrection && !adjustedAmount.IsPositive() {
		violations = append(violations, RuleViolation{
			Field:   "adjusted_amount",
			Code:    "ZERO_CORRECTION",
			Message: "A correction must set a positive amount; use a reversal to void the payment",
		})
	}
	if adjType == AdjustmentTypeReversal && adjustedAmount.IsPositive() {
		violations = append(violations, RuleViolation{
			Field:   "adjusted_amount",
			Code:    "NONZERO_REVERSAL",
			Message: "A reversal voids the payment; the adjusted amount must be zero",
		})
	}
	if adjustedAmount.IsPositive() && adjustedAmount.Equal(payment.Amount) {
		violations = append(violations, RuleViolation{
			Field:   "adjusted_amount",
			Code:    "NO_CHANGE",
			Message: "Adjusted amount equals the current amount",
		})
	}
	if len(strings.TrimSpace(reason)) < MinAdjustmentReasonLength {
		violations = append(violations, RuleViolation{
			Field:   "reason",
			Code:    "REASON_TOO_SHORT",
			Message: fmt.Sprintf("Reason must be at least %d characters", MinAdjustmentReasonLength),
		})
	}
	return violations
}

// NewAdjustment validates and applies an adjustment to the payment, returning
// the audit record. The declared type is honored as-is: a correction needs a
// positive amount and a reversal a zero one. The caller persists both the
// mutated payment and the record in one transaction.
func NewAdjustment(payment *Payment, adjType AdjustmentType, adjustedAmount decimal.Decimal, reason string, adjustedBy uuid.UUID) (*Adjustment, error) {
	if violations := ValidateAdjustment(payment, adjType, adjustedAmount, reason); len(violations) > 0 {
		return nil, NewAdjustmentValidationError(violations)
	}

	adj := &Adjustment{
		BaseEntity:     shared.NewBaseEntity(),
		PaymentID:      payment.ID,
		InvoiceID:      payment.InvoiceID,
		Type:           adjType,
		OriginalAmount: payment.Amount,
		AdjustedAmount: adjustedAmount,
		Reason:         strings.TrimSpace(reason),
	}
	if adjustedBy != uuid.Nil {
		actor := adjustedBy
		adj.AdjustedBy = &actor
	}

	payment.Amount = adjustedAmount
	payment.Version++
	payment.Touch()
	return adj, nil
}

// AdjustmentValidationError carries every failed precondition of an
// adjustment request
type AdjustmentValidationError struct {
	Violations []RuleViolation
}

// NewAdjustmentValidationError wraps violations into an error
func NewAdjustmentValidationError(violations []RuleViolation) *AdjustmentValidationError {
	return &AdjustmentValidationError{Violations: violations}
}

// Error implements the error interface
func (e *AdjustmentValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Message
	}
	return "adjustment validation failed: " + strings.Join(msgs, "; ")
}
