package persistence

import (
	"context"
	"database/sql"

	appbilling "github.com/franchise/backend/internal/application/billing"
	"github.com/franchise/backend/internal/domain/billing"
	"gorm.io/gorm"
)

// GormBillingTransactionScope implements TransactionScope using GORM
// transactions. Billing transactions run serializable; the credit waterfall
// and overpayment conversion must not interleave with concurrent money
// movements on the same branch.
type GormBillingTransactionScope struct {
	db           *gorm.DB
	numberPrefix string
}

// NewGormBillingTransactionScope creates a new GormBillingTransactionScope.
// The prefix feeds the invoice number generator of transactional invoice
// repositories.
func NewGormBillingTransactionScope(db *gorm.DB, numberPrefix string) *GormBillingTransactionScope {
	return &GormBillingTransactionScope{db: db, numberPrefix: numberPrefix}
}

// Execute runs the given function within a serializable database transaction.
// If the function returns an error, the transaction is rolled back.
// If the function succeeds, the transaction is committed.
func (s *GormBillingTransactionScope) Execute(ctx context.Context, fn func(repos appbilling.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormBillingRepositories{tx: tx, numberPrefix: s.numberPrefix}
		return fn(repos)
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
}

// gormBillingRepositories provides access to the billing repositories within
// a transaction.
type gormBillingRepositories struct {
	tx           *gorm.DB
	numberPrefix string
}

// InvoiceRepo returns the invoice repository scoped to the current transaction.
func (r *gormBillingRepositories) InvoiceRepo() billing.InvoiceRepository {
	return NewGormInvoiceRepository(r.tx, r.numberPrefix)
}

// PaymentRepo returns the payment repository scoped to the current transaction.
func (r *gormBillingRepositories) PaymentRepo() billing.PaymentRepository {
	return NewGormPaymentRepository(r.tx)
}

// CreditRepo returns the credit repository scoped to the current transaction.
func (r *gormBillingRepositories) CreditRepo() billing.CreditRepository {
	return NewGormCreditRepository(r.tx)
}

// AdjustmentRepo returns the adjustment repository scoped to the current transaction.
func (r *gormBillingRepositories) AdjustmentRepo() billing.AdjustmentRepository {
	return NewGormAdjustmentRepository(r.tx)
}

// Ensure GormBillingTransactionScope implements TransactionScope
var _ appbilling.TransactionScope = (*GormBillingTransactionScope)(nil)

// Ensure gormBillingRepositories implements TransactionalRepositories
var _ appbilling.TransactionalRepositories = (*gormBillingRepositories)(nil)
