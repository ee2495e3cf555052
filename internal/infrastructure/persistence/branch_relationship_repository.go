package persistence

import (
	"context"
	"errors"

	"github.com/franchise/backend/internal/domain/billing"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBranchRelationshipRepository implements BranchRelationshipRepository
// using GORM. Billing only reads branch contracts.
type GormBranchRelationshipRepository struct {
	db *gorm.DB
}

// NewGormBranchRelationshipRepository creates a new GormBranchRelationshipRepository
func NewGormBranchRelationshipRepository(db *gorm.DB) *GormBranchRelationshipRepository {
	return &GormBranchRelationshipRepository{db: db}
}

// FindByID finds a branch relationship by its ID. Returns (nil, nil) when no
// such relationship exists.
func (r *GormBranchRelationshipRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.BranchRelationship, error) {
	var branch billing.BranchRelationship
	if err := r.db.WithContext(ctx).First(&branch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &branch, nil
}

// FindActive returns all active branch relationships, oldest first
func (r *GormBranchRelationshipRepository) FindActive(ctx context.Context) ([]*billing.BranchRelationship, error) {
	var branches []*billing.BranchRelationship
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at ASC").
		Find(&branches).Error; err != nil {
		return nil, err
	}
	return branches, nil
}

// Ensure GormBranchRelationshipRepository implements BranchRelationshipRepository
var _ billing.BranchRelationshipRepository = (*GormBranchRelationshipRepository)(nil)
