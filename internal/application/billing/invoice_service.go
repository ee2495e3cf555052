package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/franchise/backend/internal/domain/billing"
	"github.com/franchise/backend/internal/domain/shared"
	"github.com/franchise/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// InvoiceService implements invoice generation and lifecycle operations
type InvoiceService struct {
	txScope        TransactionScope
	invoiceRepo    billing.InvoiceRepository
	branchRepo     billing.BranchRelationshipRepository
	salesReader    SalesReader
	eventPublisher shared.EventPublisher
	defaultDueDays int
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	txScope TransactionScope,
	invoiceRepo billing.InvoiceRepository,
	branchRepo billing.BranchRelationshipRepository,
	salesReader SalesReader,
	eventPublisher shared.EventPublisher,
	defaultDueDays int,
) *InvoiceService {
	return &InvoiceService{
		txScope:        txScope,
		invoiceRepo:    invoiceRepo,
		branchRepo:     branchRepo,
		salesReader:    salesReader,
		eventPublisher: eventPublisher,
		defaultDueDays: defaultDueDays,
	}
}

// GenerateInvoiceRequest describes one invoice generation run
type GenerateInvoiceRequest struct {
	BranchRelationshipID uuid.UUID
	PeriodStart          time.Time
	PeriodEnd            time.Time
	InvoiceDate          *time.Time // defaults to today
	DueDays              *int       // defaults to the branch term, then the configured default
	CreatedBy            uuid.UUID
	Notes                string
}

// GenerateInvoiceResult carries the generated invoice plus a non-blocking
// warning. A period with no sales still produces an invoice; the warning
// tells the caller why its total may be zero.
type GenerateInvoiceResult struct {
	Invoice InvoiceResponse `json:"invoice"`
	Warning string          `json:"warning,omitempty"`
}

// Generate builds one invoice from a branch's sales in the period. The whole
// write (number allocation, invoice, items, arrears lookup) commits atomically.
func (s *InvoiceService) Generate(ctx context.Context, req GenerateInvoiceRequest) (*GenerateInvoiceResult, error) {
	if req.PeriodEnd.Before(req.PeriodStart) {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period end cannot be before period start")
	}

	branch, err := s.branchRepo.FindByID(ctx, req.BranchRelationshipID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, shared.NewDomainError(shared.ErrNotFound.Code, "Branch relationship not found")
	}
	if !branch.Active {
		return nil, shared.NewDomainError("BRANCH_INACTIVE", "Cannot generate an invoice for an inactive branch relationship")
	}

	sales, err := s.salesReader.SalesInPeriod(ctx, branch.ID, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to read sales for branch %s: %w", branch.ID, err)
	}
	now := time.Now()
	invoiceDate := now
	if req.InvoiceDate != nil {
		invoiceDate = *req.InvoiceDate
	}
	dueDays := branch.EffectiveTermDays(s.defaultDueDays)
	if req.DueDays != nil && *req.DueDays > 0 {
		dueDays = *req.DueDays
	}

	invoice, err := billing.NewInvoice(branch.ID, branch.FranchiseeID,
		invoiceDate, req.PeriodStart, req.PeriodEnd, invoiceDate.AddDate(0, 0, dueDays),
		req.CreatedBy, req.Notes)
	if err != nil {
		return nil, err
	}
	for _, sale := range sales {
		invoice.AddItem(sale.SaleID, sale.Quantity, sale.UnitPrice, sale.Discount, sale.Tax, sale.Shipping, sale.TotalAmount)
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		exists, err := repos.InvoiceRepo().ExistsForPeriod(ctx, branch.ID, req.PeriodStart, req.PeriodEnd)
		if err != nil {
			return fmt.Errorf("failed to check existing invoices for branch %s: %w", branch.ID, err)
		}
		if exists {
			return shared.NewDomainError("DUPLICATE_PERIOD", "An invoice already exists for this branch and period")
		}

		arrears, err := repos.InvoiceRepo().OutstandingBalance(ctx, branch.ID, invoiceDate)
		if err != nil {
			return fmt.Errorf("failed to compute outstanding balance for branch %s: %w", branch.ID, err)
		}
		if err := invoice.SetPreviousBalance(valueobject.NewMoneyPHP(arrears)); err != nil {
			return err
		}

		number, err := repos.InvoiceRepo().NextInvoiceNumber(ctx, invoiceDate)
		if err != nil {
			return fmt.Errorf("failed to allocate invoice number: %w", err)
		}
		invoice.InvoiceNumber = number
		invoice.Recompute(now)

		return repos.InvoiceRepo().Save(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	invoice.AddDomainEvent(billing.NewInvoiceGeneratedEvent(invoice))
	s.publishEvents(ctx, invoice)

	result := &GenerateInvoiceResult{Invoice: ToInvoiceResponse(invoice, now)}
	if len(sales) == 0 {
		result.Warning = fmt.Sprintf("No sales were recorded for the period %s to %s",
			req.PeriodStart.Format("2006-01-02"), req.PeriodEnd.Format("2006-01-02"))
	}
	return result, nil
}

// BranchGenerationOutcome reports one branch's result of a bulk run
type BranchGenerationOutcome struct {
	BranchRelationshipID uuid.UUID  `json:"branch_relationship_id"`
	InvoiceID            *uuid.UUID `json:"invoice_id,omitempty"`
	InvoiceNumber        string     `json:"invoice_number,omitempty"`
	Warning              string     `json:"warning,omitempty"`
	Error                string     `json:"error,omitempty"`
}

// BulkGenerationResult summarizes a bulk generation run
type BulkGenerationResult struct {
	Generated int                       `json:"generated"`
	Failed    int                       `json:"failed"`
	Outcomes  []BranchGenerationOutcome `json:"outcomes"`
}

// GenerateBulkRequest runs generation for every active branch relationship,
// or only the listed ones when BranchRelationshipIDs is set.
type GenerateBulkRequest struct {
	BranchRelationshipIDs []uuid.UUID
	PeriodStart           time.Time
	PeriodEnd             time.Time
	DueDays               *int
	CreatedBy             uuid.UUID
}

// GenerateBulk generates invoices branch by branch in independent
// transactions. One branch failing never rolls back the others; every
// outcome is reported.
func (s *InvoiceService) GenerateBulk(ctx context.Context, req GenerateBulkRequest) (*BulkGenerationResult, error) {
	branchIDs := req.BranchRelationshipIDs
	if len(branchIDs) == 0 {
		branches, err := s.branchRepo.FindActive(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list active branch relationships: %w", err)
		}
		for _, b := range branches {
			branchIDs = append(branchIDs, b.ID)
		}
	}

	result := &BulkGenerationResult{Outcomes: make([]BranchGenerationOutcome, 0, len(branchIDs))}
	for _, branchID := range branchIDs {
		outcome := BranchGenerationOutcome{BranchRelationshipID: branchID}

		resp, err := s.Generate(ctx, GenerateInvoiceRequest{
			BranchRelationshipID: branchID,
			PeriodStart:          req.PeriodStart,
			PeriodEnd:            req.PeriodEnd,
			DueDays:              req.DueDays,
			CreatedBy:            req.CreatedBy,
		})
		if err != nil {
			outcome.Error = err.Error()
			result.Failed++
		} else {
			id := resp.Invoice.ID
			outcome.InvoiceID = &id
			outcome.InvoiceNumber = resp.Invoice.InvoiceNumber
			outcome.Warning = resp.Warning
			result.Generated++
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}
	return result, nil
}

// OpeningBalanceRequest seeds an invoice carrying a legacy balance
type OpeningBalanceRequest struct {
	BranchRelationshipID uuid.UUID
	Amount               valueobject.Money
	InvoiceDate          time.Time
	DueDate              time.Time
	CreatedBy            uuid.UUID
	Notes                string
}

// CreateOpeningBalance records an opening balance invoice for a branch
func (s *InvoiceService) CreateOpeningBalance(ctx context.Context, req OpeningBalanceRequest) (*InvoiceResponse, error) {
	branch, err := s.branchRepo.FindByID(ctx, req.BranchRelationshipID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, shared.NewDomainError(shared.ErrNotFound.Code, "Branch relationship not found")
	}

	invoice, err := billing.NewOpeningBalanceInvoice(branch.ID, branch.FranchiseeID,
		req.InvoiceDate, req.DueDate, req.Amount, req.CreatedBy, req.Notes)
	if err != nil {
		return nil, err
	}

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		number, err := repos.InvoiceRepo().NextInvoiceNumber(ctx, req.InvoiceDate)
		if err != nil {
			return fmt.Errorf("failed to allocate invoice number: %w", err)
		}
		invoice.InvoiceNumber = number
		return repos.InvoiceRepo().Save(ctx, invoice)
	})
	if err != nil {
		return nil, err
	}

	invoice.AddDomainEvent(billing.NewInvoiceGeneratedEvent(invoice))
	s.publishEvents(ctx, invoice)

	response := ToInvoiceResponse(invoice, time.Now())
	return &response, nil
}

// GetByID returns one invoice projected as of now
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, shared.NewDomainError(shared.ErrNotFound.Code, fmt.Sprintf("Invoice %s not found", id))
	}
	response := ToInvoiceResponse(invoice, time.Now())
	return &response, nil
}

// List returns a filtered, paginated invoice listing
func (s *InvoiceService) List(ctx context.Context, filter billing.InvoiceFilter) (*shared.Paginated[InvoiceResponse], error) {
	page, err := s.invoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	items := make([]InvoiceResponse, len(page.Items))
	for i, inv := range page.Items {
		items[i] = ToInvoiceResponse(inv, now)
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// UpdateStatus moves an invoice through its document lifecycle
func (s *InvoiceService) UpdateStatus(ctx context.Context, id uuid.UUID, newStatus billing.InvoiceStatus, actor uuid.UUID) (*InvoiceResponse, error) {
	var invoice *billing.Invoice
	now := time.Now()

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		invoice, err = repos.InvoiceRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if invoice == nil {
			return shared.NewDomainError(shared.ErrNotFound.Code, fmt.Sprintf("Invoice %s not found", id))
		}

		expectedVersion := invoice.Version
		if err := invoice.ChangeStatus(newStatus, actor, now); err != nil {
			return err
		}
		return repos.InvoiceRepo().SaveWithLock(ctx, invoice, expectedVersion)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice)
	response := ToInvoiceResponse(invoice, now)
	return &response, nil
}

// Reschedule moves the invoice date, preserving the payment term length
func (s *InvoiceService) Reschedule(ctx context.Context, id uuid.UUID, newDate time.Time) (*InvoiceResponse, error) {
	var invoice *billing.Invoice
	now := time.Now()

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		invoice, err = repos.InvoiceRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if invoice == nil {
			return shared.NewDomainError(shared.ErrNotFound.Code, fmt.Sprintf("Invoice %s not found", id))
		}

		expectedVersion := invoice.Version
		if err := invoice.Reschedule(newDate, now); err != nil {
			return err
		}
		return repos.InvoiceRepo().SaveWithLock(ctx, invoice, expectedVersion)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice)
	response := ToInvoiceResponse(invoice, now)
	return &response, nil
}

func (s *InvoiceService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range aggregate.GetDomainEvents() {
		// Best effort; the transaction already committed
		_ = s.eventPublisher.Publish(ctx, event)
	}
	aggregate.ClearDomainEvents()
}
