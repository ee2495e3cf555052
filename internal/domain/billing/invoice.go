package billing

import (
	"fmt"
	"time"

	"github.com/franchise/backend/internal/domain/shared"
	"github.com/franchise/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the document status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"     // Generated, not yet sent to the franchisee
	InvoiceStatusSent      InvoiceStatus = "SENT"      // Delivered to the franchisee
	InvoiceStatusApproved  InvoiceStatus = "APPROVED"  // Confirmed by operations
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED" // Voided, terminal
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusApproved, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// rank orders the forward progression DRAFT -> SENT -> APPROVED.
// CANCELLED sits outside the progression and is handled separately.
func (s InvoiceStatus) rank() int {
	switch s {
	case InvoiceStatusDraft:
		return 0
	case InvoiceStatusSent:
		return 1
	case InvoiceStatusApproved:
		return 2
	}
	return -1
}

// PaymentStatus represents the settlement state of an invoice
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "UNPAID"  // No payment or credit applied
	PaymentStatusPartial PaymentStatus = "PARTIAL" // Some payment or credit applied, balance remains
	PaymentStatusPaid    PaymentStatus = "PAID"    // Balance fully settled
	PaymentStatusOverdue PaymentStatus = "OVERDUE" // Balance remains past the due date
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPartial, PaymentStatusPaid, PaymentStatusOverdue:
		return true
	}
	return false
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}

// InvoiceItem is a line item within the Invoice aggregate. Each item
// references the sale it bills for; line_total is the sale's net amount.
type InvoiceItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Discount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Tax       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Shipping  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	LineTotal decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceItem) TableName() string {
	return "invoice_items"
}

// GetLineTotalMoney returns the line total as Money
func (i *InvoiceItem) GetLineTotalMoney() valueobject.Money {
	return valueobject.NewMoneyPHP(i.LineTotal)
}

// Invoice is the aggregate root for one billing invoice. All mutation of the
// invoice's money fields flows through this type; Balance and PaymentStatus
// are derived, never written directly.
type Invoice struct {
	shared.AuditedAggregateRoot
	InvoiceNumber        string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	BranchRelationshipID uuid.UUID       `gorm:"type:uuid;not null;index"`
	FranchiseeID         uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceDate          time.Time       `gorm:"not null"`
	PeriodStart          time.Time       `gorm:"not null"`
	PeriodEnd            time.Time       `gorm:"not null"`
	DueDate              time.Time       `gorm:"not null;index"`
	Subtotal             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Discount             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AdjustmentAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PaidAmount           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // cash/cheque received, full amounts
	CreditAmount         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // credit applied via the waterfall
	Balance              decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // derived, floored at zero
	PreviousBalance      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status               InvoiceStatus   `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	PaymentStatus        PaymentStatus   `gorm:"type:varchar(20);not null;default:'UNPAID';index"`
	Notes                string          `gorm:"type:text"`
	ApprovedBy           *uuid.UUID      `gorm:"type:uuid"`
	ApprovedAt           *time.Time
	Items                []InvoiceItem `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a new invoice covering a billing period. Amounts start at
// zero; items are added with AddItem and totals accumulate as they go.
func NewInvoice(
	branchRelationshipID uuid.UUID,
	franchiseeID uuid.UUID,
	invoiceDate time.Time,
	periodStart time.Time,
	periodEnd time.Time,
	dueDate time.Time,
	createdBy uuid.UUID,
	notes string,
) (*Invoice, error) {
	if branchRelationshipID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH_RELATIONSHIP", "Branch relationship ID cannot be empty")
	}
	if franchiseeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_FRANCHISEE", "Franchisee ID cannot be empty")
	}
	if periodEnd.Before(periodStart) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period end cannot be before period start")
	}
	if dueDate.Before(invoiceDate) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before invoice date")
	}

	inv := &Invoice{
		AuditedAggregateRoot: shared.NewAuditedAggregateRoot(createdBy),
		BranchRelationshipID: branchRelationshipID,
		FranchiseeID:         franchiseeID,
		InvoiceDate:          invoiceDate,
		PeriodStart:          periodStart,
		PeriodEnd:            periodEnd,
		DueDate:              dueDate,
		Subtotal:             decimal.Zero,
		TaxAmount:            decimal.Zero,
		Discount:             decimal.Zero,
		AdjustmentAmount:     decimal.Zero,
		TotalAmount:          decimal.Zero,
		PaidAmount:           decimal.Zero,
		CreditAmount:         decimal.Zero,
		Balance:              decimal.Zero,
		PreviousBalance:      decimal.Zero,
		Status:               InvoiceStatusDraft,
		PaymentStatus:        PaymentStatusUnpaid,
		Notes:                notes,
		Items:                []InvoiceItem{},
	}
	return inv, nil
}

// NewOpeningBalanceInvoice creates an approved invoice carrying an opening
// balance into the ledger. It has no items; subtotal equals the balance owed.
func NewOpeningBalanceInvoice(
	branchRelationshipID uuid.UUID,
	franchiseeID uuid.UUID,
	invoiceDate time.Time,
	dueDate time.Time,
	amount valueobject.Money,
	createdBy uuid.UUID,
	notes string,
) (*Invoice, error) {
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Opening balance cannot be negative")
	}
	inv, err := NewInvoice(branchRelationshipID, franchiseeID, invoiceDate, invoiceDate, invoiceDate, dueDate, createdBy, notes)
	if err != nil {
		return nil, err
	}
	inv.Subtotal = amount.Amount()
	inv.TotalAmount = amount.Amount()
	inv.Status = InvoiceStatusApproved
	now := time.Now()
	inv.ApprovedAt = &now
	if createdBy != uuid.Nil {
		approver := createdBy
		inv.ApprovedBy = &approver
	}
	inv.Recompute(now)
	return inv, nil
}

// AddItem appends a line item billing for one sale and folds its amounts into
// the invoice totals. The sale's total_amount already nets discount and tax,
// so subtotal accumulates total + discount - tax.
func (inv *Invoice) AddItem(saleID uuid.UUID, quantity, unitPrice, discount, tax, shipping, saleTotal decimal.Decimal) {
	item := InvoiceItem{
		ID:        uuid.New(),
		InvoiceID: inv.ID,
		SaleID:    saleID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Discount:  discount,
		Tax:       tax,
		Shipping:  shipping,
		LineTotal: saleTotal,
		CreatedAt: time.Now(),
	}
	inv.Items = append(inv.Items, item)

	inv.Subtotal = inv.Subtotal.Add(saleTotal).Add(discount).Sub(tax)
	inv.Discount = inv.Discount.Add(discount)
	inv.TaxAmount = inv.TaxAmount.Add(tax)
	inv.TotalAmount = inv.TotalAmount.Add(saleTotal)
}

// Recompute derives Balance and PaymentStatus from the current money fields.
// It is called after every mutation of TotalAmount, PaidAmount or CreditAmount
// and on every read that needs an up-to-date overdue flag.
func (inv *Invoice) Recompute(now time.Time) {
	balance := inv.TotalAmount.Sub(inv.PaidAmount).Sub(inv.CreditAmount)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	inv.Balance = balance

	switch {
	case balance.IsZero():
		inv.PaymentStatus = PaymentStatusPaid
	case inv.isPastDue(now) && inv.Status != InvoiceStatusCancelled:
		inv.PaymentStatus = PaymentStatusOverdue
	case balance.LessThan(inv.TotalAmount):
		inv.PaymentStatus = PaymentStatusPartial
	default:
		inv.PaymentStatus = PaymentStatusUnpaid
	}
}

// isPastDue compares due date and now at day granularity
func (inv *Invoice) isPastDue(now time.Time) bool {
	due := time.Date(inv.DueDate.Year(), inv.DueDate.Month(), inv.DueDate.Day(), 0, 0, 0, 0, inv.DueDate.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, inv.DueDate.Location())
	return due.Before(today)
}

// IsOverdue returns true if a balance remains past the due date
func (inv *Invoice) IsOverdue(now time.Time) bool {
	return inv.Balance.IsPositive() && inv.isPastDue(now) && inv.Status != InvoiceStatusCancelled
}

// AmountDue returns the amount payable including carried arrears. The carried
// previous balance is additive to what is due but is not part of Balance.
func (inv *Invoice) AmountDue() decimal.Decimal {
	return inv.Balance.Add(inv.PreviousBalance)
}

// ApplyCash records cash received against the invoice. The full entered amount
// is applied; any excess over the outstanding balance is the caller's to
// convert into credit before Recompute clamps Balance at zero.
func (inv *Invoice) ApplyCash(amount valueobject.Money, now time.Time) error {
	if inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVOICE_CANCELLED", "Cannot record a payment against a cancelled invoice")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	inv.PaidAmount = inv.PaidAmount.Add(amount.Amount())
	inv.Recompute(now)

	inv.UpdatedAt = now
	inv.IncrementVersion()
	inv.AddDomainEvent(NewInvoicePaymentAppliedEvent(inv, amount))
	if inv.PaymentStatus == PaymentStatusPaid {
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	}
	return nil
}

// ApplyCredit records credit consumed against the invoice by the waterfall
// allocator. The amount must not exceed the outstanding balance.
func (inv *Invoice) ApplyCredit(amount valueobject.Money, now time.Time) error {
	if inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVOICE_CANCELLED", "Cannot apply credit to a cancelled invoice")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Credit amount must be positive")
	}
	if amount.Amount().GreaterThan(inv.Balance) {
		return shared.NewDomainError("EXCEEDS_BALANCE", fmt.Sprintf("Credit %s exceeds outstanding balance %s", amount.StringFixed(2), inv.Balance.StringFixed(2)))
	}

	inv.CreditAmount = inv.CreditAmount.Add(amount.Amount())
	inv.Recompute(now)

	inv.UpdatedAt = now
	inv.IncrementVersion()
	inv.AddDomainEvent(NewInvoiceCreditAppliedEvent(inv, amount))
	if inv.PaymentStatus == PaymentStatusPaid {
		inv.AddDomainEvent(NewInvoicePaidEvent(inv))
	}
	return nil
}

// SetPaidTotal replaces PaidAmount with the externally recomputed sum of the
// invoice's current payment amounts. Used after a payment adjustment or
// deletion, where individual payment rows changed underneath the aggregate.
func (inv *Invoice) SetPaidTotal(total valueobject.Money, now time.Time) error {
	if total.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Paid total cannot be negative")
	}
	inv.PaidAmount = total.Amount()
	inv.Recompute(now)
	inv.UpdatedAt = now
	inv.IncrementVersion()
	return nil
}

// ChangeStatus moves the invoice through its document lifecycle.
// DRAFT -> SENT -> APPROVED progress forward only; SENT and APPROVED (and
// DRAFT, leniently) may move to CANCELLED. CANCELLED is terminal.
func (inv *Invoice) ChangeStatus(newStatus InvoiceStatus, actor uuid.UUID, now time.Time) error {
	if !newStatus.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown invoice status %q", newStatus))
	}
	if inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVOICE_CANCELLED", "Cancelled invoices cannot change status")
	}
	if newStatus == inv.Status {
		return nil
	}
	if newStatus != InvoiceStatusCancelled && newStatus.rank() < inv.Status.rank() {
		return shared.NewDomainError("INVALID_TRANSITION", fmt.Sprintf("Cannot move invoice from %s back to %s", inv.Status, newStatus))
	}

	previous := inv.Status
	inv.Status = newStatus
	if newStatus == InvoiceStatusApproved {
		inv.ApprovedAt = &now
		if actor != uuid.Nil {
			approver := actor
			inv.ApprovedBy = &approver
		}
	}
	if newStatus == InvoiceStatusCancelled {
		// Cancelled invoices never report overdue.
		inv.Recompute(now)
	}

	inv.UpdatedAt = now
	inv.IncrementVersion()
	inv.AddDomainEvent(NewInvoiceStatusChangedEvent(inv, previous))
	return nil
}

// Reschedule moves the invoice date, shifting the due date by the same
// day-offset so the payment term length is preserved. Rejected once the
// invoice is paid or cancelled.
func (inv *Invoice) Reschedule(newInvoiceDate time.Time, now time.Time) error {
	if inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVOICE_CANCELLED", "Cannot reschedule a cancelled invoice")
	}
	if inv.PaymentStatus == PaymentStatusPaid {
		return shared.NewDomainError("INVOICE_PAID", "Cannot reschedule a fully paid invoice")
	}

	term := inv.DueDate.Sub(inv.InvoiceDate)
	inv.InvoiceDate = newInvoiceDate
	inv.DueDate = newInvoiceDate.Add(term)
	inv.Recompute(now)

	inv.UpdatedAt = now
	inv.IncrementVersion()
	inv.AddDomainEvent(NewInvoiceRescheduledEvent(inv))
	return nil
}

// SetPreviousBalance records carried arrears from earlier periods
func (inv *Invoice) SetPreviousBalance(amount valueobject.Money) error {
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Previous balance cannot be negative")
	}
	inv.PreviousBalance = amount.Amount()
	return nil
}

// Helper methods

// GetTotalAmountMoney returns the total amount as Money
func (inv *Invoice) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyPHP(inv.TotalAmount)
}

// GetBalanceMoney returns the outstanding balance as Money
func (inv *Invoice) GetBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyPHP(inv.Balance)
}

// GetPaidAmountMoney returns the paid amount as Money
func (inv *Invoice) GetPaidAmountMoney() valueobject.Money {
	return valueobject.NewMoneyPHP(inv.PaidAmount)
}

// IsPaid returns true if the balance is fully settled
func (inv *Invoice) IsPaid() bool {
	return inv.PaymentStatus == PaymentStatusPaid
}

// IsCancelled returns true if the invoice is cancelled
func (inv *Invoice) IsCancelled() bool {
	return inv.Status == InvoiceStatusCancelled
}

// HasBalance returns true if any amount remains outstanding
func (inv *Invoice) HasBalance() bool {
	return inv.Balance.IsPositive()
}
