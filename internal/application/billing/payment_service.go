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

// PaymentService records payments and converts overpayment into credit
type PaymentService struct {
	txScope        TransactionScope
	paymentRepo    billing.PaymentRepository
	receiptStore   ReceiptStorageService
	eventPublisher shared.EventPublisher
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	txScope TransactionScope,
	paymentRepo billing.PaymentRepository,
	receiptStore ReceiptStorageService,
	eventPublisher shared.EventPublisher,
) *PaymentService {
	return &PaymentService{
		txScope:        txScope,
		paymentRepo:    paymentRepo,
		receiptStore:   receiptStore,
		eventPublisher: eventPublisher,
	}
}

// RecordPaymentRequest describes one payment entry
type RecordPaymentRequest struct {
	InvoiceID   uuid.UUID
	Amount      valueobject.Money
	PaymentDate time.Time
	Method      billing.PaymentMethod
	Reference   string
	Notes       string
	ReceiptRef  string
	AccountID   *uuid.UUID
	CreatedBy   uuid.UUID
	// ConfirmOverpayment must be set when Amount exceeds the outstanding
	// balance; the boundary collects the confirmation before calling.
	ConfirmOverpayment bool
}

// RecordPaymentResult reports the recorded payment and any credit granted
// from an overpayment
type RecordPaymentResult struct {
	Payment       PaymentResponse `json:"payment"`
	Invoice       InvoiceResponse `json:"invoice"`
	CreditGranted *CreditResponse `json:"credit_granted,omitempty"`
}

// RecordPayment records a payment against an invoice. The invoice row is
// locked for the whole read-then-write; when the entered amount exceeds the
// outstanding balance the full amount is still recorded and the excess is
// granted as an overpayment credit, all in the same transaction.
func (s *PaymentService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*RecordPaymentResult, error) {
	if !req.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	var (
		invoice *billing.Invoice
		payment *billing.Payment
		credit  *billing.Credit
	)
	now := time.Now()

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		invoice, err = repos.InvoiceRepo().FindByIDForUpdate(ctx, req.InvoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return shared.NewDomainError(shared.ErrNotFound.Code, fmt.Sprintf("Invoice %s not found", req.InvoiceID))
		}

		excess := req.Amount.Amount().Sub(invoice.Balance)
		if excess.IsPositive() && !req.ConfirmOverpayment {
			return shared.NewDomainError("OVERPAYMENT_UNCONFIRMED",
				fmt.Sprintf("Payment exceeds the outstanding balance by %s; overpayment must be confirmed", excess.StringFixed(2)))
		}

		payment, err = billing.NewPayment(invoice.ID, req.Amount, req.PaymentDate,
			req.Method, req.Reference, req.Notes, req.CreatedBy)
		if err != nil {
			return err
		}
		payment.AccountID = req.AccountID
		if req.ReceiptRef != "" {
			payment.AttachReceipt(req.ReceiptRef)
		}
		if err := repos.PaymentRepo().Save(ctx, payment); err != nil {
			return fmt.Errorf("failed to save payment for invoice %s: %w", invoice.ID, err)
		}

		expectedVersion := invoice.Version
		if err := invoice.ApplyCash(req.Amount, now); err != nil {
			return err
		}
		if err := repos.InvoiceRepo().SaveWithLock(ctx, invoice, expectedVersion); err != nil {
			return err
		}

		if excess.IsPositive() {
			credit, err = billing.NewOverpaymentCredit(invoice.BranchRelationshipID, invoice.FranchiseeID,
				valueobject.NewMoneyPHP(excess), invoice.ID, payment.ID, req.CreatedBy)
			if err != nil {
				return err
			}
			if err := repos.CreditRepo().Save(ctx, credit); err != nil {
				return fmt.Errorf("failed to save overpayment credit for invoice %s: %w", invoice.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, invoice)
	if credit != nil {
		s.publishEvents(ctx, credit)
	}

	result := &RecordPaymentResult{
		Payment: ToPaymentResponse(payment),
		Invoice: ToInvoiceResponse(invoice, now),
	}
	if credit != nil {
		cr := ToCreditResponse(credit)
		result.CreditGranted = &cr
	}
	return result, nil
}

// GetByID returns one payment record
func (s *PaymentService) GetByID(ctx context.Context, id uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, shared.NewDomainError(shared.ErrNotFound.Code, fmt.Sprintf("Payment %s not found", id))
	}
	response := ToPaymentResponse(payment)
	return &response, nil
}

// List returns a filtered, paginated payment listing
func (s *PaymentService) List(ctx context.Context, filter billing.PaymentFilter) (*shared.Paginated[PaymentResponse], error) {
	page, err := s.paymentRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]PaymentResponse, len(page.Items))
	for i, p := range page.Items {
		items[i] = ToPaymentResponse(p)
	}
	result := shared.NewPaginated(items, page.Total, page.Page, page.PageSize)
	return &result, nil
}

// Delete removes an erroneous payment record outside the adjustment
// workflow. The owning invoice's paid total is recomputed from the surviving
// payments in the same transaction. Adjustment history is never touched.
func (s *PaymentService) Delete(ctx context.Context, id uuid.UUID) error {
	var invoice *billing.Invoice
	now := time.Now()

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		payment, err := repos.PaymentRepo().FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if payment == nil {
			return shared.NewDomainError(shared.ErrNotFound.Code, fmt.Sprintf("Payment %s not found", id))
		}

		invoice, err = repos.InvoiceRepo().FindByIDForUpdate(ctx, payment.InvoiceID)
		if err != nil {
			return err
		}
		if invoice == nil {
			return shared.NewDomainError(shared.ErrNotFound.Code, fmt.Sprintf("Invoice %s not found", payment.InvoiceID))
		}

		if err := repos.PaymentRepo().Delete(ctx, payment.ID); err != nil {
			return fmt.Errorf("failed to delete payment %s: %w", payment.ID, err)
		}

		paidTotal, err := repos.PaymentRepo().SumByInvoice(ctx, invoice.ID)
		if err != nil {
			return fmt.Errorf("failed to recompute paid total for invoice %s: %w", invoice.ID, err)
		}

		expectedVersion := invoice.Version
		if err := invoice.SetPaidTotal(valueobject.NewMoneyPHP(paidTotal), now); err != nil {
			return err
		}
		return repos.InvoiceRepo().SaveWithLock(ctx, invoice, expectedVersion)
	})
	if err != nil {
		return err
	}

	s.publishEvents(ctx, invoice)
	return nil
}

// ReceiptUploadResponse carries a presigned upload target for a receipt image
type ReceiptUploadResponse struct {
	StorageKey string    `json:"storage_key"`
	UploadURL  string    `json:"upload_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// GenerateReceiptUploadURL allocates a storage key and presigns an upload URL
func (s *PaymentService) GenerateReceiptUploadURL(ctx context.Context, invoiceID uuid.UUID, contentType string) (*ReceiptUploadResponse, error) {
	if s.receiptStore == nil {
		return nil, shared.NewDomainError("STORAGE_DISABLED", "Receipt storage is not configured")
	}

	key := fmt.Sprintf("receipts/%s/%s", invoiceID, uuid.New())
	url, expiresAt, err := s.receiptStore.GenerateUploadURL(ctx, key, contentType, 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("failed to presign receipt upload: %w", err)
	}
	return &ReceiptUploadResponse{StorageKey: key, UploadURL: url, ExpiresAt: expiresAt}, nil
}

// GetReceiptDownloadURL presigns a download URL for a payment's receipt
func (s *PaymentService) GetReceiptDownloadURL(ctx context.Context, paymentID uuid.UUID) (string, error) {
	if s.receiptStore == nil {
		return "", shared.NewDomainError("STORAGE_DISABLED", "Receipt storage is not configured")
	}

	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return "", err
	}
	if payment == nil {
		return "", shared.NewDomainError(shared.ErrNotFound.Code, fmt.Sprintf("Payment %s not found", paymentID))
	}
	if payment.ReceiptRef == "" {
		return "", shared.NewDomainError(shared.ErrNotFound.Code, "Payment has no receipt attached")
	}

	url, _, err := s.receiptStore.GenerateDownloadURL(ctx, payment.ReceiptRef, 15*time.Minute)
	if err != nil {
		return "", fmt.Errorf("failed to presign receipt download: %w", err)
	}
	return url, nil
}

func (s *PaymentService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range aggregate.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	aggregate.ClearDomainEvents()
}
