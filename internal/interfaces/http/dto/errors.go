package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
	// ErrCodeValidationRange is used when a value is out of range
	ErrCodeValidationRange = "ERR_VALIDATION_RANGE"
	// ErrCodeValidationLength is used when a field length is invalid
	ErrCodeValidationLength = "ERR_VALIDATION_LENGTH"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeBusinessRule is used for generic business rule violations
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"
	// ErrCodeInsufficientCredit is used when a credit cannot cover an application
	ErrCodeInsufficientCredit = "ERR_INSUFFICIENT_CREDIT"
	// ErrCodeConfirmationRequired is used when an operation needs an explicit confirmation flag
	ErrCodeConfirmationRequired = "ERR_CONFIRMATION_REQUIRED"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
)

// Service availability error codes
const (
	// ErrCodeFeatureDisabled is used when a deployment has an optional subsystem turned off
	ErrCodeFeatureDisabled = "ERR_FEATURE_DISABLED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,
	ErrCodeValidationRange:    http.StatusBadRequest,
	ErrCodeValidationLength:   http.StatusBadRequest,

	// Resource errors
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	// Business rule errors -> 422 Unprocessable Entity
	ErrCodeInvalidState:         http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:         http.StatusUnprocessableEntity,
	ErrCodeInsufficientCredit:   http.StatusUnprocessableEntity,
	ErrCodeConfirmationRequired: http.StatusUnprocessableEntity,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,

	// Availability errors
	ErrCodeFeatureDisabled: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to the standardized
// transport codes. Domain code families share one transport code so the
// HTTP status stays consistent across the ledger operations.
var DomainErrorCodeMapping = map[string]string{
	// Lookups
	"NOT_FOUND": ErrCodeNotFound,

	// Duplicates and races
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"DUPLICATE_PERIOD":     ErrCodeAlreadyExists,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,

	// Malformed or out-of-range input
	"INVALID_INPUT":               ErrCodeInvalidInput,
	"INVALID_AMOUNT":              ErrCodeInvalidInput,
	"INVALID_PERIOD":              ErrCodeInvalidInput,
	"INVALID_DUE_DATE":            ErrCodeInvalidInput,
	"INVALID_METHOD":              ErrCodeInvalidInput,
	"INVALID_SOURCE":              ErrCodeInvalidInput,
	"INVALID_STATUS":              ErrCodeInvalidInput,
	"INVALID_TYPE":                ErrCodeInvalidInput,
	"INVALID_INVOICE":             ErrCodeInvalidInput,
	"INVALID_BRANCH_RELATIONSHIP": ErrCodeInvalidInput,
	"INVALID_FRANCHISEE":          ErrCodeInvalidInput,

	// Operations rejected by the aggregate's current state
	"INVALID_STATE":      ErrCodeInvalidState,
	"INVALID_TRANSITION": ErrCodeInvalidState,
	"INVOICE_CANCELLED":  ErrCodeInvalidState,
	"INVOICE_PAID":       ErrCodeInvalidState,
	"CREDIT_REVOKED":     ErrCodeInvalidState,
	"CREDIT_DEPLETED":    ErrCodeInvalidState,
	"BRANCH_INACTIVE":    ErrCodeInvalidState,

	// Ledger rules
	"EXCEEDS_BALANCE":         ErrCodeBusinessRule,
	"INSUFFICIENT_CREDIT":     ErrCodeInsufficientCredit,
	"OVERPAYMENT_UNCONFIRMED": ErrCodeConfirmationRequired,

	// Deployment configuration
	"STORAGE_DISABLED": ErrCodeFeatureDisabled,

	// Generic passthrough
	"VALIDATION_ERROR": ErrCodeValidation,
	"BAD_REQUEST":      ErrCodeBadRequest,
	"INTERNAL_ERROR":   ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := DomainErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
