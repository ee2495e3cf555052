package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleRecord is one billable sale delivered to a franchisee branch during a
// billing period, as exposed by the sales system.
type SaleRecord struct {
	SaleID      uuid.UUID
	SaleDate    time.Time
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Discount    decimal.Decimal
	Tax         decimal.Decimal
	Shipping    decimal.Decimal
	TotalAmount decimal.Decimal
}

// SalesReader is the read port into the sales system. The invoice generator
// pulls the period's billable sales through it; billing never writes sales.
type SalesReader interface {
	// SalesInPeriod returns the finalized sales of a branch whose sale date
	// falls within [periodStart, periodEnd], oldest first.
	SalesInPeriod(ctx context.Context, branchRelationshipID uuid.UUID, periodStart, periodEnd time.Time) ([]SaleRecord, error)
}

// ReceiptStorageService abstracts the object store holding payment receipt
// images. Keys are opaque; the payment record stores the key, not a URL.
type ReceiptStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading a receipt.
	// Returns the upload URL and expiration time.
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a receipt.
	// Returns the download URL and expiration time.
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// ObjectExists checks if a receipt object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}
