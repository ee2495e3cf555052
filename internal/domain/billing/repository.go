package billing

import (
	"context"
	"time"

	"github.com/franchise/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceFilter narrows invoice listings
type InvoiceFilter struct {
	shared.Filter
	BranchRelationshipID *uuid.UUID
	FranchiseeID         *uuid.UUID
	Status               *InvoiceStatus
	PaymentStatus        *PaymentStatus
	DateFrom             *time.Time
	DateTo               *time.Time
}

// InvoiceRepository is the persistence port for Invoice aggregates
type InvoiceRepository interface {
	Save(ctx context.Context, invoice *Invoice) error
	// SaveWithLock persists with an optimistic version check and returns a
	// concurrency conflict when the stored version moved.
	SaveWithLock(ctx context.Context, invoice *Invoice, expectedVersion int) error
	// FindByID returns (nil, nil) when no invoice has the given ID. All
	// single-row lookups on these ports follow that convention; callers
	// translate the nil into a not-found error with aggregate context.
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// FindByIDForUpdate takes a row lock for the enclosing transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) (*shared.Paginated[*Invoice], error)
	// FindUnpaidByBranch returns unsettled invoices for a branch, oldest
	// invoice date first, for the credit waterfall.
	FindUnpaidByBranch(ctx context.Context, branchRelationshipID uuid.UUID, forUpdate bool) ([]*Invoice, error)
	// ExistsForPeriod guards against duplicate generation for one branch and period
	ExistsForPeriod(ctx context.Context, branchRelationshipID uuid.UUID, periodStart, periodEnd time.Time) (bool, error)
	// NextInvoiceNumber allocates the next sequential invoice number
	NextInvoiceNumber(ctx context.Context, invoiceDate time.Time) (string, error)
	// OutstandingBalance sums the open balances of a branch before the given date
	OutstandingBalance(ctx context.Context, branchRelationshipID uuid.UUID, before time.Time) (decimal.Decimal, error)
}

// PaymentFilter narrows payment listings
type PaymentFilter struct {
	shared.Filter
	InvoiceID *uuid.UUID
	Method    *PaymentMethod
	DateFrom  *time.Time
	DateTo    *time.Time
}

// PaymentRepository is the persistence port for Payment records
type PaymentRepository interface {
	Save(ctx context.Context, payment *Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	// FindByIDForUpdate takes a row lock for the enclosing transaction
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Payment, error)
	List(ctx context.Context, filter PaymentFilter) (*shared.Paginated[*Payment], error)
	// SumByInvoice totals the current effective amounts of an invoice's payments
	SumByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreditRepository is the persistence port for Credit aggregates
type CreditRepository interface {
	Save(ctx context.Context, credit *Credit) error
	SaveWithLock(ctx context.Context, credit *Credit, expectedVersion int) error
	FindByID(ctx context.Context, id uuid.UUID) (*Credit, error)
	// FindOpenByBranch returns credits with a positive remainder for a
	// branch, with row locks when forUpdate is set. Ordering is grant time
	// then credit ID; the waterfall re-sorts defensively.
	FindOpenByBranch(ctx context.Context, branchRelationshipID uuid.UUID, forUpdate bool) ([]*Credit, error)
	// FindBySourcePayment returns the credit granted from a payment's
	// overpayment. Most payments grant no credit; the result is then
	// (nil, nil).
	FindBySourcePayment(ctx context.Context, paymentID uuid.UUID) (*Credit, error)
	ListByFranchisee(ctx context.Context, franchiseeID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Credit], error)
	// AvailableByBranch sums the open remainders for one branch
	AvailableByBranch(ctx context.Context, branchRelationshipID uuid.UUID) (decimal.Decimal, error)
	SummaryByFranchisee(ctx context.Context, franchiseeID uuid.UUID) (*CreditSummary, error)
}

// AdjustmentRepository is the persistence port for the append-only
// adjustment audit trail. There is no update or delete.
type AdjustmentRepository interface {
	Save(ctx context.Context, adjustment *Adjustment) error
	FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]*Adjustment, error)
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*Adjustment, error)
}

// BranchRelationshipRepository is the read-only port for branch contracts
type BranchRelationshipRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*BranchRelationship, error)
	FindActive(ctx context.Context) ([]*BranchRelationship, error)
}
