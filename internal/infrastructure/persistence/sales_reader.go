package persistence

import (
	"context"
	"time"

	appbilling "github.com/franchise/backend/internal/application/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SaleRow maps the sales table billing reads from. Billing never writes this
// table; the sales system owns it.
type SaleRow struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primary_key"`
	BranchRelationshipID uuid.UUID       `gorm:"type:uuid;not null;index"`
	SaleDate             time.Time       `gorm:"not null;index"`
	Quantity             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Discount             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Tax                  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Shipping             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Finalized            bool            `gorm:"not null;default:false;index"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// TableName returns the table name for GORM
func (SaleRow) TableName() string {
	return "sales"
}

// GormSalesReader implements the billing SalesReader port over the sales table
type GormSalesReader struct {
	db *gorm.DB
}

// NewGormSalesReader creates a new GormSalesReader
func NewGormSalesReader(db *gorm.DB) *GormSalesReader {
	return &GormSalesReader{db: db}
}

// SalesInPeriod returns the finalized sales of a branch whose sale date falls
// within [periodStart, periodEnd], oldest first
func (r *GormSalesReader) SalesInPeriod(ctx context.Context, branchRelationshipID uuid.UUID, periodStart, periodEnd time.Time) ([]appbilling.SaleRecord, error) {
	var rows []SaleRow
	if err := r.db.WithContext(ctx).
		Where("branch_relationship_id = ? AND finalized = ? AND sale_date >= ? AND sale_date <= ?",
			branchRelationshipID, true, periodStart, periodEnd).
		Order("sale_date ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]appbilling.SaleRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, appbilling.SaleRecord{
			SaleID:      row.ID,
			SaleDate:    row.SaleDate,
			Quantity:    row.Quantity,
			UnitPrice:   row.UnitPrice,
			Discount:    row.Discount,
			Tax:         row.Tax,
			Shipping:    row.Shipping,
			TotalAmount: row.TotalAmount,
		})
	}
	return records, nil
}

// Ensure GormSalesReader implements SalesReader
var _ appbilling.SalesReader = (*GormSalesReader)(nil)
