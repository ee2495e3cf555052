package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/franchise/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockPaymentRepository creates a GormPaymentRepository with a mocked SQL connection
func newMockPaymentRepository(t *testing.T) (*GormPaymentRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormPaymentRepository(gormDB), mock, mockDB
}

func TestNewGormPaymentRepository(t *testing.T) {
	t.Run("creates repository with valid DB", func(t *testing.T) {
		repo, _, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		assert.NotNil(t, repo)
		assert.NotNil(t, repo.db)
	})
}

func TestGormPaymentRepository_FindByID(t *testing.T) {
	t.Run("finds existing payment", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()
		invoiceID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "invoice_id", "amount", "payment_date", "method", "reference", "version"}).
			AddRow(paymentID, invoiceID, decimal.NewFromFloat(250.75), time.Now(), "CASH", "OR-1001", 1)

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(paymentID, 1).
			WillReturnRows(rows)

		payment, err := repo.FindByID(context.Background(), paymentID)

		assert.NoError(t, err)
		assert.NotNil(t, payment)
		assert.Equal(t, paymentID, payment.ID)
		assert.Equal(t, invoiceID, payment.InvoiceID)
		assert.True(t, payment.Amount.Equal(decimal.NewFromFloat(250.75)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil for non-existent payment", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(paymentID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		payment, err := repo.FindByID(context.Background(), paymentID)

		assert.NoError(t, err)
		assert.Nil(t, payment)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRepository_FindByIDForUpdate(t *testing.T) {
	t.Run("locks the row", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "invoice_id", "amount", "version"}).
			AddRow(paymentID, uuid.New(), decimal.NewFromInt(100), 1)

		mock.ExpectQuery(`SELECT \* FROM "payments" WHERE id = \$1 ORDER BY .* FOR UPDATE`).
			WithArgs(paymentID, 1).
			WillReturnRows(rows)

		payment, err := repo.FindByIDForUpdate(context.Background(), paymentID)

		assert.NoError(t, err)
		assert.Equal(t, paymentID, payment.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRepository_SumByInvoice(t *testing.T) {
	t.Run("totals current effective amounts", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		invoiceID := uuid.New()

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) as total FROM "payments" WHERE invoice_id = \$1`).
			WithArgs(invoiceID).
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(decimal.NewFromFloat(750.25)))

		total, err := repo.SumByInvoice(context.Background(), invoiceID)

		assert.NoError(t, err)
		assert.True(t, total.Equal(decimal.NewFromFloat(750.25)))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns zero for invoice with no payments", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		invoiceID := uuid.New()

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(amount\), 0\) as total FROM "payments" WHERE invoice_id = \$1`).
			WithArgs(invoiceID).
			WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(decimal.Zero))

		total, err := repo.SumByInvoice(context.Background(), invoiceID)

		assert.NoError(t, err)
		assert.True(t, total.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormPaymentRepository_Delete(t *testing.T) {
	t.Run("deletes existing payment", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()

		mock.ExpectExec(`DELETE FROM "payments" WHERE id = \$1`).
			WithArgs(paymentID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(context.Background(), paymentID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when nothing deleted", func(t *testing.T) {
		repo, mock, mockDB := newMockPaymentRepository(t)
		defer mockDB.Close()

		paymentID := uuid.New()

		mock.ExpectExec(`DELETE FROM "payments" WHERE id = \$1`).
			WithArgs(paymentID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), paymentID)

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
