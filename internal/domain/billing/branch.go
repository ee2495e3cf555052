package billing

import (
	"github.com/franchise/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BranchRelationship is a read model of one franchisee's contract for one
// branch. Billing never mutates it; the generator and the credit ledger key
// off its ID and payment terms.
type BranchRelationship struct {
	shared.BaseEntity
	FranchiseeID    uuid.UUID `gorm:"type:uuid;not null;index"`
	BranchName      string    `gorm:"type:varchar(200);not null"`
	FranchiseeName  string    `gorm:"type:varchar(200);not null"`
	PaymentTermDays int       `gorm:"not null;default:0"`
	Active          bool      `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (BranchRelationship) TableName() string {
	return "branch_relationships"
}

// EffectiveTermDays returns the payment term, falling back to the default
// when the contract does not set one
func (b *BranchRelationship) EffectiveTermDays(defaultDays int) int {
	if b.PaymentTermDays > 0 {
		return b.PaymentTermDays
	}
	return defaultDays
}
