package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/franchise/backend/internal/domain/billing"
	"github.com/franchise/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db           *gorm.DB
	numberPrefix string
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository. The prefix is
// the leading segment of generated invoice numbers.
func NewGormInvoiceRepository(db *gorm.DB, numberPrefix string) *GormInvoiceRepository {
	if numberPrefix == "" {
		numberPrefix = "INV"
	}
	return &GormInvoiceRepository{db: db, numberPrefix: numberPrefix}
}

// Save creates or updates an invoice with its line items
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(invoice).Error
}

// SaveWithLock saves with optimistic locking. The update only lands when the
// stored row still carries expectedVersion; zero rows affected means another
// transaction moved the invoice first.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice, expectedVersion int) error {
	result := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Where("id = ? AND version = ?", invoice.ID, expectedVersion).
		Updates(map[string]interface{}{
			"invoice_date":     invoice.InvoiceDate,
			"due_date":         invoice.DueDate,
			"subtotal":         invoice.Subtotal,
			"tax_amount":       invoice.TaxAmount,
			"discount":         invoice.Discount,
			"total_amount":     invoice.TotalAmount,
			"paid_amount":      invoice.PaidAmount,
			"credit_amount":    invoice.CreditAmount,
			"balance":          invoice.Balance,
			"previous_balance": invoice.PreviousBalance,
			"status":           invoice.Status,
			"payment_status":   invoice.PaymentStatus,
			"notes":            invoice.Notes,
			"approved_by":      invoice.ApprovedBy,
			"approved_at":      invoice.ApprovedAt,
			"version":          invoice.Version,
			"updated_at":       invoice.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewDomainError(shared.ErrConcurrencyConflict.Code, "Invoice was modified by another transaction")
	}
	return nil
}

// FindByID finds an invoice by its ID, loading its items. Returns (nil, nil)
// when no such invoice exists.
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByIDForUpdate finds an invoice and takes a row lock for the enclosing
// transaction
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Preload("Items").
		First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByNumber finds an invoice by its invoice number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	var invoice billing.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&invoice, "invoice_number = ?", invoiceNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

// List returns a page of invoices matching the filter
func (r *GormInvoiceRepository) List(ctx context.Context, filter billing.InvoiceFilter) (*shared.Paginated[*billing.Invoice], error) {
	var total int64
	countQuery := r.applyFilter(r.db.WithContext(ctx).Model(&billing.Invoice{}), filter)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, InvoiceSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var invoices []*billing.Invoice
	query := r.applyFilter(r.db.WithContext(ctx).Model(&billing.Invoice{}), filter)
	if err := query.
		Preload("Items").
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&invoices).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(invoices, total, filter.Page, filter.PageSize)
	return &page, nil
}

// FindUnpaidByBranch returns unsettled invoices for a branch, oldest invoice
// date first
func (r *GormInvoiceRepository) FindUnpaidByBranch(ctx context.Context, branchRelationshipID uuid.UUID, forUpdate bool) ([]*billing.Invoice, error) {
	query := r.db.WithContext(ctx)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var invoices []*billing.Invoice
	if err := query.
		Where("branch_relationship_id = ? AND status <> ? AND balance > 0",
			branchRelationshipID, billing.InvoiceStatusCancelled).
		Order("invoice_date ASC, created_at ASC").
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// ExistsForPeriod checks whether a non-cancelled invoice already covers the
// period for the branch
func (r *GormInvoiceRepository) ExistsForPeriod(ctx context.Context, branchRelationshipID uuid.UUID, periodStart, periodEnd time.Time) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Where("branch_relationship_id = ? AND period_start = ? AND period_end = ? AND status <> ?",
			branchRelationshipID, periodStart, periodEnd, billing.InvoiceStatusCancelled).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// NextInvoiceNumber allocates the next sequential invoice number.
// Format: INV-YYYYMM-NNNNN (e.g., INV-202608-00001)
func (r *GormInvoiceRepository) NextInvoiceNumber(ctx context.Context, invoiceDate time.Time) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", r.numberPrefix, invoiceDate.Format("200601"))

	// Get the highest invoice number for this month
	var last billing.Invoice
	err := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Where("invoice_number LIKE ?", prefix+"%").
		Order("invoice_number DESC").
		First(&last).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && last.InvoiceNumber != "" {
		parts := strings.Split(last.InvoiceNumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

// OutstandingBalance sums the open balances of a branch's non-cancelled
// invoices dated before the given date
func (r *GormInvoiceRepository) OutstandingBalance(ctx context.Context, branchRelationshipID uuid.UUID, before time.Time) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&billing.Invoice{}).
		Select("COALESCE(SUM(balance), 0) as total").
		Where("branch_relationship_id = ? AND status <> ? AND invoice_date < ?",
			branchRelationshipID, billing.InvoiceStatusCancelled, before).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// applyFilter applies filter conditions without pagination or ordering
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	if filter.BranchRelationshipID != nil {
		query = query.Where("branch_relationship_id = ?", *filter.BranchRelationshipID)
	}
	if filter.FranchiseeID != nil {
		query = query.Where("franchisee_id = ?", *filter.FranchiseeID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.DateFrom != nil {
		query = query.Where("invoice_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("invoice_date <= ?", *filter.DateTo)
	}
	if filter.Search != "" {
		query = query.Where("invoice_number ILIKE ?", "%"+filter.Search+"%")
	}
	return query
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
