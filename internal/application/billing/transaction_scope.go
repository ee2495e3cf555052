package billing

import (
	"context"

	"github.com/franchise/backend/internal/domain/billing"
)

// TransactionScope provides transactional access to the billing repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or roll
// back atomically. The production implementation runs serializable
// transactions; money movements must never interleave.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the billing repositories
// within a transaction. All repositories returned share the same underlying
// database transaction.
//
// Aggregate boundary notes:
//   - InvoiceRepo: Invoice aggregate root including its line items.
//   - PaymentRepo: Payment records. Payments reference invoices but are not
//     children of the Invoice aggregate; adjustments reach them directly.
//   - CreditRepo: Credit aggregate root including its applications.
//   - AdjustmentRepo: append-only audit trail for payment adjustments.
type TransactionalRepositories interface {
	InvoiceRepo() billing.InvoiceRepository
	PaymentRepo() billing.PaymentRepository
	CreditRepo() billing.CreditRepository
	AdjustmentRepo() billing.AdjustmentRepository
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing with in-memory repositories.
type NoOpTransactionScope struct {
	invoiceRepo    billing.InvoiceRepository
	paymentRepo    billing.PaymentRepository
	creditRepo     billing.CreditRepository
	adjustmentRepo billing.AdjustmentRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	invoiceRepo billing.InvoiceRepository,
	paymentRepo billing.PaymentRepository,
	creditRepo billing.CreditRepository,
	adjustmentRepo billing.AdjustmentRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		invoiceRepo:    invoiceRepo,
		paymentRepo:    paymentRepo,
		creditRepo:     creditRepo,
		adjustmentRepo: adjustmentRepo,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// InvoiceRepo returns the invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() billing.InvoiceRepository {
	return s.invoiceRepo
}

// PaymentRepo returns the payment repository.
func (s *NoOpTransactionScope) PaymentRepo() billing.PaymentRepository {
	return s.paymentRepo
}

// CreditRepo returns the credit repository.
func (s *NoOpTransactionScope) CreditRepo() billing.CreditRepository {
	return s.creditRepo
}

// AdjustmentRepo returns the adjustment repository.
func (s *NoOpTransactionScope) AdjustmentRepo() billing.AdjustmentRepository {
	return s.adjustmentRepo
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
