package persistence

import (
	"context"

	"github.com/franchise/backend/internal/domain/billing"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAdjustmentRepository implements AdjustmentRepository using GORM.
// The adjustment trail is append-only; there is no update or delete.
type GormAdjustmentRepository struct {
	db *gorm.DB
}

// NewGormAdjustmentRepository creates a new GormAdjustmentRepository
func NewGormAdjustmentRepository(db *gorm.DB) *GormAdjustmentRepository {
	return &GormAdjustmentRepository{db: db}
}

// Save inserts an adjustment record
func (r *GormAdjustmentRepository) Save(ctx context.Context, adjustment *billing.Adjustment) error {
	return r.db.WithContext(ctx).Create(adjustment).Error
}

// FindByPayment returns a payment's adjustments, oldest first
func (r *GormAdjustmentRepository) FindByPayment(ctx context.Context, paymentID uuid.UUID) ([]*billing.Adjustment, error) {
	var adjustments []*billing.Adjustment
	if err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC").
		Find(&adjustments).Error; err != nil {
		return nil, err
	}
	return adjustments, nil
}

// FindByInvoice returns the adjustments of all payments on an invoice,
// oldest first
func (r *GormAdjustmentRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*billing.Adjustment, error) {
	var adjustments []*billing.Adjustment
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at ASC").
		Find(&adjustments).Error; err != nil {
		return nil, err
	}
	return adjustments, nil
}

// Ensure GormAdjustmentRepository implements AdjustmentRepository
var _ billing.AdjustmentRepository = (*GormAdjustmentRepository)(nil)
