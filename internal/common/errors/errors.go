// internal/common/errors/errors.go

// Package errors provides standardized error handling for the back-office service.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Validation errors: caught before any network call, never retried.
	ErrCodeValidationFailed     ErrorCode = "VALIDATION_FAILED"
	ErrCodeRequiredFieldMissing ErrorCode = "REQUIRED_FIELD_MISSING"
	ErrCodeInvalidPhoneFormat   ErrorCode = "INVALID_PHONE_FORMAT"

	// Backend errors: surfaced verbatim to the operator, no automatic retry.
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeConstraintViolation      ErrorCode = "CONSTRAINT_VIOLATION"
	ErrCodeDeleteBlocked            ErrorCode = "DELETE_BLOCKED"
	ErrCodeUnknownQueryType         ErrorCode = "UNKNOWN_QUERY_TYPE"

	// AI provider errors: contained in the orchestrator, surfaced only as empty content.
	ErrCodeProviderRequestFailed ErrorCode = "PROVIDER_REQUEST_FAILED"
	ErrCodeProviderBadStatus     ErrorCode = "PROVIDER_BAD_STATUS"
	ErrCodeProviderParseFailed   ErrorCode = "PROVIDER_PARSE_FAILED"
	ErrCodeProviderMissingKey    ErrorCode = "PROVIDER_MISSING_KEY"

	// Import errors: row-level failures stay in the batch report; only a
	// template mismatch rejects the file outright.
	ErrCodeImportTemplateMismatch ErrorCode = "IMPORT_TEMPLATE_MISMATCH"

	// Search / notification errors.
	ErrCodeSearchQueryFailed      ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// FieldError carries a single field-level validation message.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationFailedError creates a non-retryable validation error with field details.
func NewValidationFailedError(fields []FieldError) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Input validation failed",
		Retryable: false,
		Metadata:  map[string]interface{}{"fields": fields},
		Timestamp: time.Now().UTC(),
	}
}

// NewRequiredFieldMissingError creates a non-retryable validation error.
func NewRequiredFieldMissingError(field string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRequiredFieldMissing,
		Message:   "Required field missing",
		Details:   fmt.Sprintf("field: %s", field),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidPhoneFormatError creates a non-retryable validation error.
func NewInvalidPhoneFormatError(value string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPhoneFormat,
		Message:   "Phone number format is invalid",
		Details:   fmt.Sprintf("value: %s", value),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a query execution error carrying the backend message.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewConstraintViolationError surfaces the backend's constraint message verbatim.
func NewConstraintViolationError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeConstraintViolation,
		Message:   "Backend rejected the change",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDeleteBlockedError reports a permanent delete blocked by references.
// The underlying reason is kept so it can be shown to the operator.
func NewDeleteBlockedError(entity, id string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDeleteBlocked,
		Message:   "Delete blocked by existing references",
		Details:   fmt.Sprintf("%s %s: %s", entity, id, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownQueryTypeError creates a non-retryable unknown query type error.
func NewUnknownQueryTypeError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownQueryType,
		Message:   "Unsupported query type",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderRequestFailedError creates a provider transport error.
func NewProviderRequestFailedError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderRequestFailed,
		Message:   "AI provider request failed",
		Details:   fmt.Sprintf("provider: %s, error: %s", provider, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderBadStatusError creates a provider non-2xx error.
func NewProviderBadStatusError(provider string, status int) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderBadStatus,
		Message:   "AI provider returned an error status",
		Details:   fmt.Sprintf("provider: %s, status: %d", provider, status),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderParseFailedError creates a provider response parse error.
func NewProviderParseFailedError(provider string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderParseFailed,
		Message:   "AI provider response could not be parsed",
		Details:   fmt.Sprintf("provider: %s, error: %s", provider, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderMissingKeyError reports a provider invoked without credentials.
func NewProviderMissingKeyError(provider string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderMissingKey,
		Message:   "AI provider has no API key configured",
		Details:   fmt.Sprintf("provider: %s", provider),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewImportTemplateMismatchError reports headers that do not match the template.
func NewImportTemplateMismatchError(missing []string) *StandardError {
	return &StandardError{
		Code:      ErrCodeImportTemplateMismatch,
		Message:   "Import file does not match the template",
		Metadata:  map[string]interface{}{"missingColumns": missing},
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search error.
func NewSearchQueryFailedError(index string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Search query error",
		Details:   fmt.Sprintf("index: %s, error: %s", index, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotificationSendFailedError creates a notification dispatch error.
func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotificationSendFailed,
		Message:   "Notification send failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}
