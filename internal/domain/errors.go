package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeUpstream         = "UPSTREAM_ERROR"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrInvalidChunkParams   = NewDomainError(ErrCodeValidation, "chunk size and step must be positive")
	ErrInvalidChartType     = NewDomainError(ErrCodeValidation, "invalid chart type")
	ErrInvalidAggregation   = NewDomainError(ErrCodeValidation, "invalid aggregation function")
	ErrInvalidFilterOp      = NewDomainError(ErrCodeValidation, "invalid filter operator")
	ErrInvalidLogSource     = NewDomainError(ErrCodeValidation, "invalid log source")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrTableNotFound  = NewDomainError(ErrCodeNotFound, "table not loaded")
	ErrColumnNotFound = NewDomainError(ErrCodeNotFound, "column not found")
	ErrNoLogRecords   = NewDomainError(ErrCodeNotFound, "no log records match the filter")
	ErrIndexEmpty     = NewDomainError(ErrCodeNotFound, "no documents have been indexed")
)

// Already exists errors
var (
	ErrTableAlreadyLoaded = NewDomainError(ErrCodeAlreadyExists, "table already loaded")
)

// Authorization errors
var (
	ErrInvalidAPIKey = NewDomainError(ErrCodeUnauthorized, "invalid api key")
)

// Upstream errors
var (
	ErrArchiveDownload = NewDomainError(ErrCodeUpstream, "repository archive download failed")
	ErrLLMUnavailable  = NewDomainError(ErrCodeUpstream, "language model request failed")
)

// Operation errors
var (
	ErrDatabaseNotConnected = NewDomainError(ErrCodeInvalidOperation, "no database connection configured")
	ErrAgentNotReady        = NewDomainError(ErrCodeInvalidOperation, "agent has no indexed documents or tables")
)
