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

// AdjustmentService corrects and reverses recorded payments, keeping the
// append-only audit trail and the owning invoice consistent
type AdjustmentService struct {
	txScope        TransactionScope
	paymentRepo    billing.PaymentRepository
	adjustmentRepo billing.AdjustmentRepository
	eventPublisher shared.EventPublisher
}

// NewAdjustmentService creates a new AdjustmentService
func NewAdjustmentService(
	txScope TransactionScope,
	paymentRepo billing.PaymentRepository,
	adjustmentRepo billing.AdjustmentRepository,
	eventPublisher shared.EventPublisher,
) *AdjustmentService {
	return &AdjustmentService{
		txScope:        txScope,
		paymentRepo:    paymentRepo,
		adjustmentRepo: adjustmentRepo,
		eventPublisher: eventPublisher,
	}
}

// CreateAdjustmentRequest describes one adjustment of a payment. For a
// reversal the adjusted amount is forced to zero regardless of input.
type CreateAdjustmentRequest struct {
	PaymentID      uuid.UUID
	Type           billing.AdjustmentType
	AdjustedAmount decimal.Decimal
	Reason         string
	AdjustedBy     uuid.UUID
}

// ValidationResult reports the outcome of a dry-run validation
type ValidationResult struct {
	Valid      bool                    `json:"valid"`
	Violations []billing.RuleViolation `json:"violations,omitempty"`
}

// Validate dry-runs an adjustment without applying it, returning every
// violated rule at once. The boundary uses this for its confirmation step.
func (s *AdjustmentService) Validate(ctx context.Context, req CreateAdjustmentRequest) (*ValidationResult, error) {
	if !req.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", fmt.Sprintf("Unknown adjustment type %q", req.Type))
	}

	payment, err := s.paymentRepo.FindByID(ctx, req.PaymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, shared.NewDomainError(shared.ErrNotFound.Code, fmt.Sprintf("Payment %s not found", req.PaymentID))
	}

	violations := billing.ValidateAdjustment(payment, req.Type, s.effectiveAmount(req), req.Reason)
	return &ValidationResult{Valid: len(violations) == 0, Violations: violations}, nil
}

// CreateAdjustmentResult reports the applied adjustment and the recomputed
// owning invoice
type CreateAdjustmentResult struct {
	Adjustment    AdjustmentResponse `json:"adjustment"`
	Payment       PaymentResponse    `json:"payment"`
	Invoice       InvoiceResponse    `json:"invoice"`
	CreditRevoked *CreditResponse    `json:"credit_revoked,omitempty"`
}

// Create validates and applies an adjustment in one transaction: the audit
// record is written, the payment's amount replaced, and the invoice's paid
// total recomputed from its surviving payment amounts. Reversing a payment
// that funded an overpayment credit also revokes that credit's unused
// remainder; already-applied portions stay applied.
func (s *AdjustmentService) Create(ctx context.Context, req CreateAdjustmentRequest) (*CreateAdjustmentResult, error) {
	if !req.Type.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", fmt.Sprintf("Unknown adjustment type %q", req.Type))
	}

	var (
		payment    *billing.Payment
		invoice    *billing.Invoice
		adjustment *billing.Adjustment
		revoked    *billing.Credit
	)
	now := time.Now()

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		payment, err = repos.PaymentRepo().FindByIDForUpdate(ctx, req.PaymentID)
		if err != nil {
			return err
		}
		if payment == nil {
			return shared.NewDomainError(shared.ErrNotFound.Code, fmt.Sprintf("Payment %s not found", req.PaymentID))
		}

		invoice, err = repos.InvoiceRepo().FindByIDForUpdate(ctx, payment.InvoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return shared.NewDomainError(shared.ErrNotFound.Code, fmt.Sprintf("Invoice %s not found", payment.InvoiceID))
		}

		adjustment, err = billing.NewAdjustment(payment, req.Type, s.effectiveAmount(req), req.Reason, req.AdjustedBy)
		if err != nil {
			return err
		}

		if err := repos.AdjustmentRepo().Save(ctx, adjustment); err != nil {
			return fmt.Errorf("failed to save adjustment for payment %s: %w", payment.ID, err)
		}
		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save adjusted payment %s: %w", payment.ID, err)
		}

		paidTotal, err := repos.PaymentRepo().SumByInvoice(ctx, invoice.ID)
		if err != nil {
			return fmt.Errorf("failed to recompute paid total for invoice %s: %w", invoice.ID, err)
		}
		expectedVersion := invoice.Version
		if err := invoice.SetPaidTotal(valueobject.NewMoneyPHP(paidTotal), now); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().SaveWithLock(ctx, invoice, expectedVersion); err != nil {
			return err
		}

		if adjustment.Type == billing.AdjustmentTypeReversal {
			credit, err := repos.CreditRepo().FindBySourcePayment(ctx, payment.ID)
			if err != nil {
				return fmt.Errorf("failed to look up overpayment credit for payment %s: %w", payment.ID, err)
			}
			if credit != nil && credit.IsOpen() {
				expectedVersion := credit.Version
				if _, err := credit.RevokeUnused(now); err != nil {
					return err
				}
				if err := repos.CreditRepo().SaveWithLock(ctx, credit, expectedVersion); err != nil {
					return err
				}
				revoked = credit
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice)
	if revoked != nil {
		s.publishEvents(ctx, revoked)
	}

	result := &CreateAdjustmentResult{
		Adjustment: ToAdjustmentResponse(adjustment),
		Payment:    ToPaymentResponse(payment),
		Invoice:    ToInvoiceResponse(invoice, now),
	}
	if revoked != nil {
		cr := ToCreditResponse(revoked)
		result.CreditRevoked = &cr
	}
	return result, nil
}

// ListByPayment returns a payment's full adjustment history, oldest first
func (s *AdjustmentService) ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]AdjustmentResponse, error) {
	adjustments, err := s.adjustmentRepo.FindByPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return toAdjustmentResponses(adjustments), nil
}

// ListByInvoice returns every adjustment touching an invoice's payments
func (s *AdjustmentService) ListByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]AdjustmentResponse, error) {
	adjustments, err := s.adjustmentRepo.FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return toAdjustmentResponses(adjustments), nil
}

func toAdjustmentResponses(adjustments []*billing.Adjustment) []AdjustmentResponse {
	responses := make([]AdjustmentResponse, len(adjustments))
	for i, a := range adjustments {
		responses[i] = ToAdjustmentResponse(a)
	}
	return responses
}

// effectiveAmount forces a reversal to zero regardless of the entered amount
func (s *AdjustmentService) effectiveAmount(req CreateAdjustmentRequest) decimal.Decimal {
	if req.Type == billing.AdjustmentTypeReversal {
		return decimal.Zero
	}
	return req.AdjustedAmount
}

func (s *AdjustmentService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range aggregate.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	aggregate.ClearDomainEvents()
}
