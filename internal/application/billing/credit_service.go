package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/franchise/backend/internal/domain/billing"
	"github.com/franchise/backend/internal/domain/shared"
	"github.com/franchise/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreditService manages the credit ledger and runs the waterfall allocator
type CreditService struct {
	txScope        TransactionScope
	creditRepo     billing.CreditRepository
	branchRepo     billing.BranchRelationshipRepository
	eventPublisher shared.EventPublisher
}

// NewCreditService creates a new CreditService
func NewCreditService(
	txScope TransactionScope,
	creditRepo billing.CreditRepository,
	branchRepo billing.BranchRelationshipRepository,
	eventPublisher shared.EventPublisher,
) *CreditService {
	return &CreditService{
		txScope:        txScope,
		creditRepo:     creditRepo,
		branchRepo:     branchRepo,
		eventPublisher: eventPublisher,
	}
}

// GrantCreditRequest describes a manual credit grant
type GrantCreditRequest struct {
	BranchRelationshipID uuid.UUID
	Amount               valueobject.Money
	SourceType           billing.CreditSourceType
	SourceInvoiceID      *uuid.UUID
	Notes                string
	CreatedBy            uuid.UUID
}

// Grant creates a credit for a branch relationship
func (s *CreditService) Grant(ctx context.Context, req GrantCreditRequest) (*CreditResponse, error) {
	branch, err := s.branchRepo.FindByID(ctx, req.BranchRelationshipID)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, shared.NewDomainError(shared.ErrNotFound.Code, "Branch relationship not found")
	}

	credit, err := billing.NewCredit(branch.ID, branch.FranchiseeID, req.Amount, req.SourceType, req.CreatedBy, req.Notes)
	if err != nil {
		return nil, err
	}
	credit.SourceInvoiceID = req.SourceInvoiceID

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return repos.CreditRepo().Save(ctx, credit)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, credit)
	response := ToCreditResponse(credit)
	return &response, nil
}

// AvailableBalance sums the open credit remainders for a branch
func (s *CreditService) AvailableBalance(ctx context.Context, branchRelationshipID uuid.UUID) (decimal.Decimal, error) {
	return s.creditRepo.AvailableByBranch(ctx, branchRelationshipID)
}

// Summary aggregates a franchisee's credit position across its branches
func (s *CreditService) Summary(ctx context.Context, franchiseeID uuid.UUID) (*CreditSummaryResponse, error) {
	summary, err := s.creditRepo.SummaryByFranchisee(ctx, franchiseeID)
	if err != nil {
		return nil, err
	}
	response := ToCreditSummaryResponse(summary)
	return &response, nil
}

// ListByFranchisee returns a paginated credit listing for one franchisee
func (s *CreditService) ListByFranchisee(ctx context.Context, franchiseeID uuid.UUID, filter shared.Filter) (*shared.Paginated[CreditResponse], error) {
	page, err := s.creditRepo.ListByFranchisee(ctx, franchiseeID, filter)
	if err != nil {
		return nil, err
	}

	items := make([]CreditResponse, len(page.Items))
	for i, c := range page.Items {
		items[i] = ToCreditResponse(c)
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// AutoApplyResult reports what the waterfall applied to one invoice
type AutoApplyResult struct {
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	AmountApplied decimal.Decimal `json:"amount_applied"`
	CreditsUsed   int             `json:"credits_used"`
	Invoice       InvoiceResponse `json:"invoice"`
}

// AutoApply runs the credit waterfall against one invoice. The invoice row
// and every touched credit row stay locked for the whole allocation; the
// amount to apply is fixed when the transaction starts and never re-checked
// mid-loop. Applying zero is a successful no-op.
func (s *CreditService) AutoApply(ctx context.Context, invoiceID uuid.UUID) (*AutoApplyResult, error) {
	var (
		invoice *billing.Invoice
		applied []*billing.Credit
		total   = decimal.Zero
	)
	now := time.Now()

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		invoice, err = repos.InvoiceRepo().FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return shared.NewDomainError(shared.ErrNotFound.Code, fmt.Sprintf("Invoice %s not found", invoiceID))
		}
		if invoice.IsCancelled() {
			return shared.NewDomainError("INVOICE_CANCELLED", "Cannot apply credit to a cancelled invoice")
		}

		credits, err := repos.CreditRepo().FindOpenByBranch(ctx, invoice.BranchRelationshipID, true)
		if err != nil {
			return fmt.Errorf("failed to load open credits for branch %s: %w", invoice.BranchRelationshipID, err)
		}

		available := decimal.Zero
		for _, c := range credits {
			available = available.Add(c.RemainingAmount())
		}
		toApply := decimal.Min(invoice.Balance, available)
		if !toApply.IsPositive() {
			return nil
		}

		plan, err := billing.PlanCreditAllocation(valueobject.NewMoneyPHP(toApply), credits)
		if err != nil {
			return err
		}

		byID := make(map[uuid.UUID]*billing.Credit, len(credits))
		for _, c := range credits {
			byID[c.ID] = c
		}
		for _, alloc := range plan.Allocations {
			credit := byID[alloc.CreditID]
			expectedVersion := credit.Version
			if err := credit.Consume(invoice.ID, valueobject.NewMoneyPHP(alloc.Amount), now); err != nil {
				return err
			}
			if err := repos.CreditRepo().SaveWithLock(ctx, credit, expectedVersion); err != nil {
				return err
			}
			applied = append(applied, credit)
		}

		expectedVersion := invoice.Version
		if err := invoice.ApplyCredit(valueobject.NewMoneyPHP(plan.Allocated), now); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().SaveWithLock(ctx, invoice, expectedVersion); err != nil {
			return err
		}

		total = plan.Allocated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice)
	for _, credit := range applied {
		s.publishEvents(ctx, credit)
	}

	return &AutoApplyResult{
		InvoiceID:     invoice.ID,
		AmountApplied: total,
		CreditsUsed:   len(applied),
		Invoice:       ToInvoiceResponse(invoice, now),
	}, nil
}

// BranchAutoApplyResult reports a bulk waterfall run over a branch's unpaid
// invoices, oldest invoice first
type BranchAutoApplyResult struct {
	BranchRelationshipID uuid.UUID         `json:"branch_relationship_id"`
	TotalApplied         decimal.Decimal   `json:"total_applied"`
	Results              []AutoApplyResult `json:"results"`
}

// AutoApplyForBranch applies available credit across a branch's unpaid
// invoices, oldest first. Each invoice is one independent allocation
// transaction; running out of credit simply stops the loop.
func (s *CreditService) AutoApplyForBranch(ctx context.Context, branchRelationshipID uuid.UUID) (*BranchAutoApplyResult, error) {
	invoices, err := s.invoicesToSettle(ctx, branchRelationshipID)
	if err != nil {
		return nil, err
	}

	result := &BranchAutoApplyResult{
		BranchRelationshipID: branchRelationshipID,
		TotalApplied:         decimal.Zero,
	}
	for _, invoiceID := range invoices {
		applied, err := s.AutoApply(ctx, invoiceID)
		if err != nil {
			return nil, err
		}
		if applied.AmountApplied.IsPositive() {
			result.TotalApplied = result.TotalApplied.Add(applied.AmountApplied)
			result.Results = append(result.Results, *applied)
		} else {
			// No credit left; later invoices cannot receive any either
			break
		}
	}
	return result, nil
}

func (s *CreditService) invoicesToSettle(ctx context.Context, branchRelationshipID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoices, err := repos.InvoiceRepo().FindUnpaidByBranch(ctx, branchRelationshipID, false)
		if err != nil {
			return err
		}
		for _, inv := range invoices {
			ids = append(ids, inv.ID)
		}
		return nil
	})
	return ids, err
}

func (s *CreditService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range aggregate.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	aggregate.ClearDomainEvents()
}
