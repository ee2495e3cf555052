// Package storage provides object storage implementations for receipt files.
package storage

import (
	"context"
	"errors"
	"time"

	billingapp "github.com/franchise/backend/internal/application/billing"
)

// StubReceiptStorage is a placeholder implementation of ReceiptStorageService.
// It is wired when storage is disabled in configuration so payment recording
// still works in environments without an object store.
type StubReceiptStorage struct {
	// BaseURL is the base URL for generated upload/download URLs.
	// Defaults to "https://storage.example.com" if not set.
	BaseURL string
}

// NewStubReceiptStorage creates a new StubReceiptStorage
func NewStubReceiptStorage() *StubReceiptStorage {
	return &StubReceiptStorage{
		BaseURL: "https://storage.example.com",
	}
}

// Ensure StubReceiptStorage implements ReceiptStorageService
var _ billingapp.ReceiptStorageService = (*StubReceiptStorage)(nil)

// GenerateUploadURL generates a stub presigned URL for uploading a receipt
func (s *StubReceiptStorage) GenerateUploadURL(
	ctx context.Context,
	storageKey, contentType string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	expiresAt := time.Now().Add(expiresIn)
	url := s.BaseURL + "/upload/" + storageKey + "?expires=" + expiresAt.Format(time.RFC3339)

	return url, expiresAt, nil
}

// GenerateDownloadURL generates a stub presigned URL for downloading a receipt
func (s *StubReceiptStorage) GenerateDownloadURL(
	ctx context.Context,
	storageKey string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	expiresAt := time.Now().Add(expiresIn)
	url := s.BaseURL + "/download/" + storageKey + "?expires=" + expiresAt.Format(time.RFC3339)

	return url, expiresAt, nil
}

// ObjectExists always returns true in stub mode so the receipt attachment
// flow can be exercised without a real object store
func (s *StubReceiptStorage) ObjectExists(ctx context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}
	return true, nil
}
