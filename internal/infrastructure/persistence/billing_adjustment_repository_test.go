package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/franchise/backend/internal/domain/billing"
	"github.com/franchise/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockAdjustmentRepository creates a GormAdjustmentRepository with a mocked SQL connection
func newMockAdjustmentRepository(t *testing.T) (*GormAdjustmentRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormAdjustmentRepository(gormDB), mock, mockDB
}

func TestGormAdjustmentRepository_Save(t *testing.T) {
	t.Run("inserts an adjustment record", func(t *testing.T) {
		repo, mock, mockDB := newMockAdjustmentRepository(t)
		defer mockDB.Close()

		payment, err := billing.NewPayment(uuid.New(), valueobject.NewMoneyPHPFromFloat(500), time.Now(), billing.PaymentMethodCash, "OR-1001", "", uuid.New())
		require.NoError(t, err)

		adjustment, err := billing.NewAdjustment(payment, billing.AdjustmentTypeCorrection, decimal.NewFromInt(450), "encoding error on receipt", uuid.New())
		require.NoError(t, err)

		mock.ExpectExec(`INSERT INTO "payment_adjustments"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Save(context.Background(), adjustment)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAdjustmentRepository_FindByPayment(t *testing.T) {
	t.Run("returns adjustments oldest first", func(t *testing.T) {
		repo, mock, mockDB := newMockAdjustmentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()
		invoiceID := uuid.New()
		firstID := uuid.New()
		secondID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "payment_id", "invoice_id", "type", "original_amount", "adjusted_amount", "reason"}).
			AddRow(firstID, paymentID, invoiceID, "CORRECTION", decimal.NewFromInt(500), decimal.NewFromInt(450), "encoding error on receipt").
			AddRow(secondID, paymentID, invoiceID, "REVERSAL", decimal.NewFromInt(450), decimal.Zero, "cheque bounced at the bank")

		mock.ExpectQuery(`SELECT \* FROM "payment_adjustments" WHERE payment_id = \$1 ORDER BY created_at ASC`).
			WithArgs(paymentID).
			WillReturnRows(rows)

		adjustments, err := repo.FindByPayment(context.Background(), paymentID)

		assert.NoError(t, err)
		require.Len(t, adjustments, 2)
		assert.Equal(t, firstID, adjustments[0].ID)
		assert.Equal(t, billing.AdjustmentTypeCorrection, adjustments[0].Type)
		assert.Equal(t, billing.AdjustmentTypeReversal, adjustments[1].Type)
		assert.True(t, adjustments[1].AdjustedAmount.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty slice for payment with no adjustments", func(t *testing.T) {
		repo, mock, mockDB := newMockAdjustmentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "payment_adjustments" WHERE payment_id = \$1`).
			WithArgs(paymentID).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		adjustments, err := repo.FindByPayment(context.Background(), paymentID)

		assert.NoError(t, err)
		assert.Empty(t, adjustments)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAdjustmentRepository_FindByInvoice(t *testing.T) {
	t.Run("returns the invoice's full trail", func(t *testing.T) {
		repo, mock, mockDB := newMockAdjustmentRepository(t)
		defer mockDB.Close()

		invoiceID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "payment_id", "invoice_id", "type", "original_amount", "adjusted_amount", "reason"}).
			AddRow(uuid.New(), uuid.New(), invoiceID, "CORRECTION", decimal.NewFromInt(300), decimal.NewFromInt(350), "amount keyed short")

		mock.ExpectQuery(`SELECT \* FROM "payment_adjustments" WHERE invoice_id = \$1 ORDER BY created_at ASC`).
			WithArgs(invoiceID).
			WillReturnRows(rows)

		adjustments, err := repo.FindByInvoice(context.Background(), invoiceID)

		assert.NoError(t, err)
		require.Len(t, adjustments, 1)
		assert.Equal(t, invoiceID, adjustments[0].InvoiceID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
