package domainerrors

import "errors"

// Code represents a domain error category independent of transport layer.
// These codes describe what went wrong in business logic terms, not HTTP terms.
type Code string

const (
	CodeBadRequest Code = "bad_request"
	CodeValidation Code = "validation_failed"
	CodeInternal   Code = "internal_error"

	// CodeTimeout indicates an upstream attempt exceeded its deadline.
	CodeTimeout Code = "timeout"

	// CodeUpstreamUnavailable indicates the upstream scoring API kept failing
	// after the retry budget was exhausted.
	CodeUpstreamUnavailable Code = "upstream_unavailable"

	// CodeUpstreamRejected indicates the upstream scoring API rejected the
	// request with a non-retryable client error.
	CodeUpstreamRejected Code = "upstream_rejected"

	// CodeCircuitOpen indicates the circuit breaker rejected the call without
	// touching the network. Distinct from CodeUpstreamUnavailable so operators
	// can tell "upstream is failing" apart from "we stopped calling it".
	CodeCircuitOpen Code = "circuit_open"

	// CodeSecretUnavailable indicates the secret source is unreachable and no
	// cached value exists.
	CodeSecretUnavailable Code = "secret_unavailable"

	CodeUnauthorized Code = "unauthorized"
)

// Error wraps domain or infrastructure failures with a stable code.
// It is transport-agnostic and can be used across service, client, and other layers.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Code)
}

// Unwrap implements error unwrapping for error chains.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is enables errors.Is() to match errors by code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New creates a new domain error with the given code and message.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates a new domain error wrapping an existing error.
// If the wrapped error is already a domain error, the original code is preserved.
func Wrap(err error, code Code, msg string) error {
	var existing *Error
	if errors.As(err, &existing) {
		// Preserve the original domain code, update message
		return &Error{Code: existing.Code, Message: msg, Err: err}
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// HasCode checks if an error is a domain error with the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
