package billing

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/franchise/backend/internal/domain/billing"
	"github.com/franchise/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockEventPublisher collects published events for assertions
type MockEventPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{events: make([]shared.DomainEvent, 0)}
}

func (m *MockEventPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	return nil
}

func (m *MockEventPublisher) GetEventsByType(eventType string) []shared.DomainEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]shared.DomainEvent, 0)
	for _, e := range m.events {
		if e.EventType() == eventType {
			result = append(result, e)
		}
	}
	return result
}

// memInvoiceRepo is an in-memory InvoiceRepository
type memInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*billing.Invoice
	seq      int
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{invoices: make(map[uuid.UUID]*billing.Invoice)}
}

func (r *memInvoiceRepo) Save(_ context.Context, invoice *billing.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoices[invoice.ID] = invoice
	return nil
}

func (r *memInvoiceRepo) SaveWithLock(ctx context.Context, invoice *billing.Invoice, _ int) error {
	return r.Save(ctx, invoice)
}

func (r *memInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.invoices[id], nil
}

func (r *memInvoiceRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	return r.FindByID(ctx, id)
}

func (r *memInvoiceRepo) FindByNumber(_ context.Context, number string) (*billing.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.InvoiceNumber == number {
			return inv, nil
		}
	}
	return nil, nil
}

func (r *memInvoiceRepo) List(_ context.Context, filter billing.InvoiceFilter) (*shared.Paginated[*billing.Invoice], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*billing.Invoice
	for _, inv := range r.invoices {
		if filter.BranchRelationshipID != nil && inv.BranchRelationshipID != *filter.BranchRelationshipID {
			continue
		}
		if filter.FranchiseeID != nil && inv.FranchiseeID != *filter.FranchiseeID {
			continue
		}
		if filter.Status != nil && inv.Status != *filter.Status {
			continue
		}
		items = append(items, inv)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].InvoiceDate.Before(items[j].InvoiceDate) })
	page := shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize)
	return &page, nil
}

func (r *memInvoiceRepo) FindUnpaidByBranch(_ context.Context, branchID uuid.UUID, _ bool) ([]*billing.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*billing.Invoice
	for _, inv := range r.invoices {
		if inv.BranchRelationshipID == branchID && inv.Balance.IsPositive() && !inv.IsCancelled() {
			items = append(items, inv)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].InvoiceDate.Before(items[j].InvoiceDate) })
	return items, nil
}

func (r *memInvoiceRepo) ExistsForPeriod(_ context.Context, branchID uuid.UUID, periodStart, periodEnd time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.BranchRelationshipID == branchID && inv.PeriodStart.Equal(periodStart) && inv.PeriodEnd.Equal(periodEnd) && !inv.IsCancelled() {
			return true, nil
		}
	}
	return false, nil
}

func (r *memInvoiceRepo) NextInvoiceNumber(_ context.Context, invoiceDate time.Time) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return fmt.Sprintf("INV-%s-%05d", invoiceDate.Format("200601"), r.seq), nil
}

func (r *memInvoiceRepo) OutstandingBalance(_ context.Context, branchID uuid.UUID, before time.Time) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, inv := range r.invoices {
		if inv.BranchRelationshipID == branchID && inv.InvoiceDate.Before(before) && !inv.IsCancelled() {
			total = total.Add(inv.Balance)
		}
	}
	return total, nil
}

// memPaymentRepo is an in-memory PaymentRepository
type memPaymentRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*billing.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{payments: make(map[uuid.UUID]*billing.Payment)}
}

func (r *memPaymentRepo) Save(_ context.Context, payment *billing.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[payment.ID] = payment
	return nil
}

func (r *memPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.payments[id], nil
}

func (r *memPaymentRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	return r.FindByID(ctx, id)
}

func (r *memPaymentRepo) List(_ context.Context, filter billing.PaymentFilter) (*shared.Paginated[*billing.Payment], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*billing.Payment
	for _, p := range r.payments {
		if filter.InvoiceID != nil && p.InvoiceID != *filter.InvoiceID {
			continue
		}
		items = append(items, p)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].PaymentDate.Before(items[j].PaymentDate) })
	page := shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize)
	return &page, nil
}

func (r *memPaymentRepo) SumByInvoice(_ context.Context, invoiceID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, p := range r.payments {
		if p.InvoiceID == invoiceID {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

func (r *memPaymentRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.payments, id)
	return nil
}

// memCreditRepo is an in-memory CreditRepository
type memCreditRepo struct {
	mu      sync.Mutex
	credits map[uuid.UUID]*billing.Credit
}

func newMemCreditRepo() *memCreditRepo {
	return &memCreditRepo{credits: make(map[uuid.UUID]*billing.Credit)}
}

func (r *memCreditRepo) Save(_ context.Context, credit *billing.Credit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.credits[credit.ID] = credit
	return nil
}

func (r *memCreditRepo) SaveWithLock(ctx context.Context, credit *billing.Credit, _ int) error {
	return r.Save(ctx, credit)
}

func (r *memCreditRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Credit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.credits[id], nil
}

func (r *memCreditRepo) FindOpenByBranch(_ context.Context, branchID uuid.UUID, _ bool) ([]*billing.Credit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*billing.Credit
	for _, c := range r.credits {
		if c.BranchRelationshipID == branchID && c.IsOpen() {
			items = append(items, c)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID.String() < items[j].ID.String()
	})
	return items, nil
}

func (r *memCreditRepo) FindBySourcePayment(_ context.Context, paymentID uuid.UUID) (*billing.Credit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.credits {
		if c.SourcePaymentID != nil && *c.SourcePaymentID == paymentID {
			return c, nil
		}
	}
	return nil, nil
}

func (r *memCreditRepo) ListByFranchisee(_ context.Context, franchiseeID uuid.UUID, filter shared.Filter) (*shared.Paginated[*billing.Credit], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*billing.Credit
	for _, c := range r.credits {
		if c.FranchiseeID == franchiseeID {
			items = append(items, c)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	page := shared.NewPaginated(items, int64(len(items)), filter.Page, filter.PageSize)
	return &page, nil
}

func (r *memCreditRepo) AvailableByBranch(_ context.Context, branchID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, c := range r.credits {
		if c.BranchRelationshipID == branchID && c.IsOpen() {
			total = total.Add(c.RemainingAmount())
		}
	}
	return total, nil
}

func (r *memCreditRepo) SummaryByFranchisee(_ context.Context, franchiseeID uuid.UUID) (*billing.CreditSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	summary := &billing.CreditSummary{
		FranchiseeID:   franchiseeID,
		TotalGranted:   decimal.Zero,
		TotalUsed:      decimal.Zero,
		TotalAvailable: decimal.Zero,
	}
	for _, c := range r.credits {
		if c.FranchiseeID != franchiseeID {
			continue
		}
		summary.TotalGranted = summary.TotalGranted.Add(c.Amount)
		summary.TotalUsed = summary.TotalUsed.Add(c.UsedAmount)
		if c.IsOpen() {
			summary.TotalAvailable = summary.TotalAvailable.Add(c.RemainingAmount())
			summary.OpenCredits++
		}
	}
	return summary, nil
}

// memAdjustmentRepo is an in-memory, append-only AdjustmentRepository
type memAdjustmentRepo struct {
	mu          sync.Mutex
	adjustments []*billing.Adjustment
}

func newMemAdjustmentRepo() *memAdjustmentRepo {
	return &memAdjustmentRepo{}
}

func (r *memAdjustmentRepo) Save(_ context.Context, adjustment *billing.Adjustment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adjustments = append(r.adjustments, adjustment)
	return nil
}

func (r *memAdjustmentRepo) FindByPayment(_ context.Context, paymentID uuid.UUID) ([]*billing.Adjustment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*billing.Adjustment
	for _, a := range r.adjustments {
		if a.PaymentID == paymentID {
			items = append(items, a)
		}
	}
	return items, nil
}

func (r *memAdjustmentRepo) FindByInvoice(_ context.Context, invoiceID uuid.UUID) ([]*billing.Adjustment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*billing.Adjustment
	for _, a := range r.adjustments {
		if a.InvoiceID == invoiceID {
			items = append(items, a)
		}
	}
	return items, nil
}

// memBranchRepo is an in-memory BranchRelationshipRepository
type memBranchRepo struct {
	mu       sync.Mutex
	branches map[uuid.UUID]*billing.BranchRelationship
}

func newMemBranchRepo() *memBranchRepo {
	return &memBranchRepo{branches: make(map[uuid.UUID]*billing.BranchRelationship)}
}

func (r *memBranchRepo) add(branch *billing.BranchRelationship) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.branches[branch.ID] = branch
}

func (r *memBranchRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.BranchRelationship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.branches[id], nil
}

func (r *memBranchRepo) FindActive(_ context.Context) ([]*billing.BranchRelationship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []*billing.BranchRelationship
	for _, b := range r.branches {
		if b.Active {
			items = append(items, b)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID.String() < items[j].ID.String() })
	return items, nil
}

// fakeSalesReader serves canned sales per branch
type fakeSalesReader struct {
	sales map[uuid.UUID][]SaleRecord
	err   error
}

func (f *fakeSalesReader) SalesInPeriod(_ context.Context, branchID uuid.UUID, _, _ time.Time) ([]SaleRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sales[branchID], nil
}

// testEnv wires the services over the in-memory repositories
type testEnv struct {
	invoiceRepo    *memInvoiceRepo
	paymentRepo    *memPaymentRepo
	creditRepo     *memCreditRepo
	adjustmentRepo *memAdjustmentRepo
	branchRepo     *memBranchRepo
	salesReader    *fakeSalesReader
	publisher      *MockEventPublisher

	invoiceService    *InvoiceService
	paymentService    *PaymentService
	creditService     *CreditService
	adjustmentService *AdjustmentService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		invoiceRepo:    newMemInvoiceRepo(),
		paymentRepo:    newMemPaymentRepo(),
		creditRepo:     newMemCreditRepo(),
		adjustmentRepo: newMemAdjustmentRepo(),
		branchRepo:     newMemBranchRepo(),
		salesReader:    &fakeSalesReader{sales: make(map[uuid.UUID][]SaleRecord)},
		publisher:      NewMockEventPublisher(),
	}
	scope := NewNoOpTransactionScope(env.invoiceRepo, env.paymentRepo, env.creditRepo, env.adjustmentRepo)

	env.invoiceService = NewInvoiceService(scope, env.invoiceRepo, env.branchRepo, env.salesReader, env.publisher, 15)
	env.paymentService = NewPaymentService(scope, env.paymentRepo, nil, env.publisher)
	env.creditService = NewCreditService(scope, env.creditRepo, env.branchRepo, env.publisher)
	env.adjustmentService = NewAdjustmentService(scope, env.paymentRepo, env.adjustmentRepo, env.publisher)
	return env
}

func (env *testEnv) addBranch(active bool) *billing.BranchRelationship {
	branch := &billing.BranchRelationship{
		BaseEntity:      shared.NewBaseEntity(),
		FranchiseeID:    uuid.New(),
		BranchName:      "SM North EDSA",
		FranchiseeName:  "Dela Cruz Foods",
		PaymentTermDays: 15,
		Active:          active,
	}
	env.branchRepo.add(branch)
	return branch
}

func (env *testEnv) addSale(branchID uuid.UUID, total float64) {
	env.salesReader.sales[branchID] = append(env.salesReader.sales[branchID], SaleRecord{
		SaleID:      uuid.New(),
		SaleDate:    time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC),
		Quantity:    decimal.NewFromInt(1),
		UnitPrice:   decimal.NewFromFloat(total),
		Discount:    decimal.Zero,
		Tax:         decimal.Zero,
		Shipping:    decimal.Zero,
		TotalAmount: decimal.NewFromFloat(total),
	})
}
