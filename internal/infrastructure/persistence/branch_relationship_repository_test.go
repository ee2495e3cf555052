package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newMockBranchRelationshipRepository creates a GormBranchRelationshipRepository with a mocked SQL connection
func newMockBranchRelationshipRepository(t *testing.T) (*GormBranchRelationshipRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormBranchRelationshipRepository(gormDB), mock, mockDB
}

func TestGormBranchRelationshipRepository_FindByID(t *testing.T) {
	t.Run("finds existing branch relationship", func(t *testing.T) {
		repo, mock, mockDB := newMockBranchRelationshipRepository(t)
		defer mockDB.Close()

		branchID := uuid.New()
		franchiseeID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "franchisee_id", "branch_name", "franchisee_name", "payment_term_days", "active"}).
			AddRow(branchID, franchiseeID, "SM North EDSA", "Dela Cruz Foods Inc", 30, true)

		mock.ExpectQuery(`SELECT \* FROM "branch_relationships" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(branchID, 1).
			WillReturnRows(rows)

		branch, err := repo.FindByID(context.Background(), branchID)

		assert.NoError(t, err)
		require.NotNil(t, branch)
		assert.Equal(t, branchID, branch.ID)
		assert.Equal(t, "SM North EDSA", branch.BranchName)
		assert.Equal(t, 30, branch.PaymentTermDays)
		assert.True(t, branch.Active)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for non-existent relationship", func(t *testing.T) {
		repo, mock, mockDB := newMockBranchRelationshipRepository(t)
		defer mockDB.Close()

		branchID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "branch_relationships" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(branchID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		branch, err := repo.FindByID(context.Background(), branchID)

		assert.NoError(t, err)
		assert.Nil(t, branch)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBranchRelationshipRepository_FindActive(t *testing.T) {
	t.Run("returns only active relationships", func(t *testing.T) {
		repo, mock, mockDB := newMockBranchRelationshipRepository(t)
		defer mockDB.Close()

		firstID := uuid.New()
		secondID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "franchisee_id", "branch_name", "franchisee_name", "payment_term_days", "active"}).
			AddRow(firstID, uuid.New(), "Ayala Center Cebu", "Reyes Ventures", 15, true).
			AddRow(secondID, uuid.New(), "Robinsons Galleria", "Santos Holdings", 0, true)

		mock.ExpectQuery(`SELECT \* FROM "branch_relationships" WHERE active = \$1 ORDER BY created_at ASC`).
			WithArgs(true).
			WillReturnRows(rows)

		branches, err := repo.FindActive(context.Background())

		assert.NoError(t, err)
		require.Len(t, branches, 2)
		assert.Equal(t, firstID, branches[0].ID)
		assert.Equal(t, 15, branches[0].EffectiveTermDays(15))
		assert.Equal(t, 30, branches[1].EffectiveTermDays(30))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// branchRelationshipSQLite is a SQLite-compatible schema for round-trip tests
type branchRelationshipSQLite struct {
	ID              string    `gorm:"primaryKey"`
	FranchiseeID    string    `gorm:"index;not null"`
	BranchName      string    `gorm:"not null"`
	FranchiseeName  string    `gorm:"not null"`
	PaymentTermDays int       `gorm:"not null;default:0"`
	Active          bool      `gorm:"not null"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (branchRelationshipSQLite) TableName() string {
	return "branch_relationships"
}

func setupBranchRelationshipSQLiteDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&branchRelationshipSQLite{}))
	return db
}

func TestGormBranchRelationshipRepository_RoundTrip(t *testing.T) {
	db := setupBranchRelationshipSQLiteDB(t)
	repo := NewGormBranchRelationshipRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	oldest := branchRelationshipSQLite{
		ID:              uuid.NewString(),
		FranchiseeID:    uuid.NewString(),
		BranchName:      "SM North EDSA",
		FranchiseeName:  "Dela Cruz Foods",
		PaymentTermDays: 15,
		Active:          true,
		CreatedAt:       base,
	}
	newest := branchRelationshipSQLite{
		ID:             uuid.NewString(),
		FranchiseeID:   uuid.NewString(),
		BranchName:     "Greenbelt 5",
		FranchiseeName: "Lim Brothers",
		Active:         true,
		CreatedAt:      base.Add(48 * time.Hour),
	}
	inactive := branchRelationshipSQLite{
		ID:             uuid.NewString(),
		FranchiseeID:   uuid.NewString(),
		BranchName:     "Closed Branch",
		FranchiseeName: "Former Partner",
		Active:         false,
		CreatedAt:      base.Add(24 * time.Hour),
	}
	require.NoError(t, db.Create(&oldest).Error)
	require.NoError(t, db.Create(&newest).Error)
	require.NoError(t, db.Create(&inactive).Error)

	t.Run("finds by id", func(t *testing.T) {
		branch, err := repo.FindByID(ctx, uuid.MustParse(oldest.ID))
		require.NoError(t, err)
		assert.Equal(t, "SM North EDSA", branch.BranchName)
		assert.Equal(t, 15, branch.PaymentTermDays)
	})

	t.Run("returns nil for unknown id", func(t *testing.T) {
		branch, err := repo.FindByID(ctx, uuid.New())
		assert.NoError(t, err)
		assert.Nil(t, branch)
	})

	t.Run("lists active contracts oldest first", func(t *testing.T) {
		branches, err := repo.FindActive(ctx)
		require.NoError(t, err)
		require.Len(t, branches, 2)
		assert.Equal(t, "SM North EDSA", branches[0].BranchName)
		assert.Equal(t, "Greenbelt 5", branches[1].BranchName)
	})
}
