package persistence

import (
	"context"
	"errors"

	"github.com/franchise/backend/internal/domain/billing"
	"github.com/franchise/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Save creates or updates a payment record
func (r *GormPaymentRepository) Save(ctx context.Context, payment *billing.Payment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

// FindByID finds a payment by its ID. Returns (nil, nil) when no such payment
// exists.
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	var payment billing.Payment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// FindByIDForUpdate finds a payment and takes a row lock for the enclosing
// transaction
func (r *GormPaymentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	var payment billing.Payment
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&payment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// List returns a page of payments matching the filter
func (r *GormPaymentRepository) List(ctx context.Context, filter billing.PaymentFilter) (*shared.Paginated[*billing.Payment], error) {
	var total int64
	countQuery := r.applyFilter(r.db.WithContext(ctx).Model(&billing.Payment{}), filter)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, PaymentSortFields, "payment_date")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var payments []*billing.Payment
	query := r.applyFilter(r.db.WithContext(ctx).Model(&billing.Payment{}), filter)
	if err := query.
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&payments).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(payments, total, filter.Page, filter.PageSize)
	return &page, nil
}

// SumByInvoice totals the current effective amounts of an invoice's payments
func (r *GormPaymentRepository) SumByInvoice(ctx context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&billing.Payment{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("invoice_id = ?", invoiceID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// Delete removes a payment row
func (r *GormPaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&billing.Payment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter conditions without pagination or ordering
func (r *GormPaymentRepository) applyFilter(query *gorm.DB, filter billing.PaymentFilter) *gorm.DB {
	if filter.InvoiceID != nil {
		query = query.Where("invoice_id = ?", *filter.InvoiceID)
	}
	if filter.Method != nil {
		query = query.Where("method = ?", *filter.Method)
	}
	if filter.DateFrom != nil {
		query = query.Where("payment_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("payment_date <= ?", *filter.DateTo)
	}
	if filter.Search != "" {
		query = query.Where("reference ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}

// Ensure GormPaymentRepository implements PaymentRepository
var _ billing.PaymentRepository = (*GormPaymentRepository)(nil)
