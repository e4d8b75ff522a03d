package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents a specific error type for categorization and metrics
type ErrorCode string

const (
	// Validation errors: the webhook is rejected before any Slack call
	ErrInvalidEvent    ErrorCode = "INVALID_EVENT"
	ErrDraftSuppressed ErrorCode = "DRAFT_SUPPRESSED"
	ErrThreadNotFound  ErrorCode = "THREAD_NOT_FOUND"
	ErrUnknownTeam     ErrorCode = "UNKNOWN_TEAM"

	// Slack API errors: the notification could not be delivered
	ErrSlackAPIFailed ErrorCode = "SLACK_API_FAILED"
	ErrSlackRateLimit ErrorCode = "SLACK_RATE_LIMIT"

	// System errors
	ErrConfigurationError ErrorCode = "CONFIGURATION_ERROR"
)

// AppError represents a structured application error
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	HTTPStatus int       `json:"http_status"`
	Timestamp  time.Time `json:"timestamp"`
	Cause      error     `json:"-"` // Original error, not serialized
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *AppError) Unwrap() error {
	return e.Cause
}

// IsValidation reports whether this error rejects the webhook as a
// business-rule violation rather than a delivery failure.
func (e *AppError) IsValidation() bool {
	switch e.Code {
	case ErrInvalidEvent, ErrDraftSuppressed, ErrThreadNotFound, ErrUnknownTeam:
		return true
	}
	return false
}

// NewValidationError creates a business-rule rejection surfaced as HTTP 400
func NewValidationError(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
		Timestamp:  time.Now(),
	}
}

// NewSlackError wraps a failed Slack API call. The HTTP status is deliberately
// 200: GitLab has no retry logic of its own and a 5xx would only hide the
// error code from the webhook log without triggering a redelivery.
func NewSlackError(operation string, cause error) *AppError {
	return &AppError{
		Code:       ErrSlackAPIFailed,
		Message:    fmt.Sprintf("Slack API %s failed", operation),
		Details:    errDetails(cause),
		HTTPStatus: http.StatusOK,
		Timestamp:  time.Now(),
		Cause:      cause,
	}
}

// AsAppError extracts an AppError from an error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsValidation reports whether err is a business-rule rejection
func IsValidation(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsValidation()
	}
	return false
}

func errDetails(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
