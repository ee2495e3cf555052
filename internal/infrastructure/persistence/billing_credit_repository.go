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

// GormCreditRepository implements CreditRepository using GORM
type GormCreditRepository struct {
	db *gorm.DB
}

// NewGormCreditRepository creates a new GormCreditRepository
func NewGormCreditRepository(db *gorm.DB) *GormCreditRepository {
	return &GormCreditRepository{db: db}
}

// Save creates or updates a credit with its applications
func (r *GormCreditRepository) Save(ctx context.Context, credit *billing.Credit) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(credit).Error
}

// SaveWithLock saves with optimistic locking. Applications appended by the
// caller are inserted alongside the version-checked update.
func (r *GormCreditRepository) SaveWithLock(ctx context.Context, credit *billing.Credit, expectedVersion int) error {
	result := r.db.WithContext(ctx).
		Model(&billing.Credit{}).
		Where("id = ? AND version = ?", credit.ID, expectedVersion).
		Updates(map[string]interface{}{
			"used_amount": credit.UsedAmount,
			"revoked_at":  credit.RevokedAt,
			"version":     credit.Version,
			"updated_at":  credit.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.ErrConcurrencyConflict.Code, "Credit was modified by another transaction")
	}

	// Persist any applications recorded since the last save
	for i := range credit.Applications {
		app := &credit.Applications[i]
		if err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(app).Error; err != nil {
			return err
		}
	}
	return nil
}

// FindByID finds a credit by its ID, loading its applications. Returns
// (nil, nil) when no such credit exists.
func (r *GormCreditRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Credit, error) {
	var credit billing.Credit
	if err := r.db.WithContext(ctx).
		Preload("Applications").
		First(&credit, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &credit, nil
}

// FindOpenByBranch returns credits with a positive remainder for a branch,
// oldest grant first then credit ID for a stable order
func (r *GormCreditRepository) FindOpenByBranch(ctx context.Context, branchRelationshipID uuid.UUID, forUpdate bool) ([]*billing.Credit, error) {
	query := r.db.WithContext(ctx)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var credits []*billing.Credit
	if err := query.
		Where("branch_relationship_id = ? AND revoked_at IS NULL AND used_amount < amount", branchRelationshipID).
		Order("created_at ASC, id ASC").
		Find(&credits).Error; err != nil {
		return nil, err
	}
	return credits, nil
}

// FindBySourcePayment returns the credit granted from a payment's overpayment.
// Most payments grant no credit, so (nil, nil) is the common result.
func (r *GormCreditRepository) FindBySourcePayment(ctx context.Context, paymentID uuid.UUID) (*billing.Credit, error) {
	var credit billing.Credit
	if err := r.db.WithContext(ctx).
		First(&credit, "source_payment_id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &credit, nil
}

// ListByFranchisee returns a page of a franchisee's credits
func (r *GormCreditRepository) ListByFranchisee(ctx context.Context, franchiseeID uuid.UUID, filter shared.Filter) (*shared.Paginated[*billing.Credit], error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&billing.Credit{}).
		Where("franchisee_id = ?", franchiseeID).
		Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, CreditSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var credits []*billing.Credit
	if err := r.db.WithContext(ctx).
		Preload("Applications").
		Where("franchisee_id = ?", franchiseeID).
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&credits).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(credits, total, filter.Page, filter.PageSize)
	return &page, nil
}

// AvailableByBranch sums the open remainders for one branch
func (r *GormCreditRepository) AvailableByBranch(ctx context.Context, branchRelationshipID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&billing.Credit{}).
		Select("COALESCE(SUM(amount - used_amount), 0) as total").
		Where("branch_relationship_id = ? AND revoked_at IS NULL AND used_amount < amount", branchRelationshipID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// SummaryByFranchisee aggregates a franchisee's credit position
func (r *GormCreditRepository) SummaryByFranchisee(ctx context.Context, franchiseeID uuid.UUID) (*billing.CreditSummary, error) {
	var row struct {
		TotalGranted   decimal.Decimal
		TotalUsed      decimal.Decimal
		TotalAvailable decimal.Decimal
		OpenCredits    int
	}
	if err := r.db.WithContext(ctx).
		Model(&billing.Credit{}).
		Select(`COALESCE(SUM(amount), 0) as total_granted,
			COALESCE(SUM(used_amount), 0) as total_used,
			COALESCE(SUM(CASE WHEN revoked_at IS NULL THEN amount - used_amount ELSE 0 END), 0) as total_available,
			COALESCE(SUM(CASE WHEN revoked_at IS NULL AND used_amount < amount THEN 1 ELSE 0 END), 0) as open_credits`).
		Where("franchisee_id = ?", franchiseeID).
		Scan(&row).Error; err != nil {
		return nil, err
	}

	return &billing.CreditSummary{
		FranchiseeID:   franchiseeID,
		TotalGranted:   row.TotalGranted,
		TotalUsed:      row.TotalUsed,
		TotalAvailable: row.TotalAvailable,
		OpenCredits:    row.OpenCredits,
	}, nil
}

// Ensure GormCreditRepository implements CreditRepository
var _ billing.CreditRepository = (*GormCreditRepository)(nil)
