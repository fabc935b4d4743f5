package riskshield

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorCategory defines the normalized failure taxonomy for upstream errors.
//
// The client classifies every failed scoring attempt into one of these
// categories, letting the retry loop make consistent decisions without
// inspecting raw error messages or status codes at the call site.
type ErrorCategory string

const (
	// ErrorTimeout indicates the upstream took too long to respond
	ErrorTimeout ErrorCategory = "timeout"

	// ErrorRateLimited indicates the upstream returned 429
	ErrorRateLimited ErrorCategory = "rate_limited"

	// ErrorServerError indicates a 5xx response from the upstream
	ErrorServerError ErrorCategory = "server_error"

	// ErrorBadStatus indicates a non-retryable 4xx response
	ErrorBadStatus ErrorCategory = "bad_status"

	// ErrorAuthentication indicates the upstream rejected our API key
	ErrorAuthentication ErrorCategory = "authentication"

	// ErrorBadData indicates the upstream returned a malformed body
	ErrorBadData ErrorCategory = "bad_data"

	// ErrorConnection indicates the upstream could not be reached
	ErrorConnection ErrorCategory = "connection"
)

// UpstreamError wraps scoring failures with normalized categorization.
type UpstreamError struct {
	Category   ErrorCategory
	StatusCode int
	Message    string
	Underlying error
	Retryable  bool // Set by NewUpstreamError based on Category
}

// Error implements the error interface
func (e *UpstreamError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("riskshield [%s]: %s: %v", e.Category, e.Message, e.Underlying)
	}
	return fmt.Sprintf("riskshield [%s]: %s", e.Category, e.Message)
}

// Unwrap supports error unwrapping
func (e *UpstreamError) Unwrap() error {
	return e.Underlying
}

// NewUpstreamError creates a normalized upstream error with automatic retry
// classification. Timeouts, connection failures, 429s and 5xx responses are
// retryable; authentication and other 4xx responses are not.
func NewUpstreamError(category ErrorCategory, statusCode int, message string, underlying error) *UpstreamError {
	retryable := category == ErrorTimeout ||
		category == ErrorConnection ||
		category == ErrorRateLimited ||
		category == ErrorServerError

	return &UpstreamError{
		Category:   category,
		StatusCode: statusCode,
		Message:    message,
		Underlying: underlying,
		Retryable:  retryable,
	}
}

// IsRetryable checks if an error is worth retrying
func IsRetryable(err error) bool {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Retryable
	}
	return false
}

// GetCategory extracts the error category from an error
func GetCategory(err error) ErrorCategory {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Category
	}
	return ErrorConnection
}

// ClassifyStatus maps an HTTP response status to an upstream error.
// Callers should only pass non-2xx statuses.
func ClassifyStatus(statusCode int) *UpstreamError {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return NewUpstreamError(ErrorAuthentication, statusCode,
			fmt.Sprintf("upstream rejected credentials with status %d", statusCode), nil)
	case statusCode == http.StatusTooManyRequests:
		return NewUpstreamError(ErrorRateLimited, statusCode, "upstream rate limit exceeded", nil)
	case statusCode >= 500:
		return NewUpstreamError(ErrorServerError, statusCode,
			fmt.Sprintf("upstream returned status %d", statusCode), nil)
	default:
		return NewUpstreamError(ErrorBadStatus, statusCode,
			fmt.Sprintf("upstream returned status %d", statusCode), nil)
	}
}

// ClassifyTransportError maps a transport-level error from the HTTP client to
// an upstream error. Deadline expiry becomes a timeout; everything else is a
// connection failure.
func ClassifyTransportError(err error) *UpstreamError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewUpstreamError(ErrorTimeout, 0, "upstream call timed out", err)
	case errors.As(err, &netErr) && netErr.Timeout():
		return NewUpstreamError(ErrorTimeout, 0, "upstream call timed out", err)
	default:
		return NewUpstreamError(ErrorConnection, 0, "upstream unreachable", err)
	}
}
