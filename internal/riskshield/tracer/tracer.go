// Package tracer provides a lightweight tracing abstraction for the scoring client.
//
// The client emits spans for the overall scoring call and each HTTP attempt
// without depending on OpenTelemetry APIs directly. Two implementations exist:
// NoopTracer for tests and OTelTracer for production.
package tracer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording any error that occurred.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)

	// AddEvent records a timestamped event within the span.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans for distributed tracing.
// Implementations must be safe for concurrent use.
type Tracer interface {
	// Start creates a new span with the given name and attributes.
	// The returned context contains the new span and should be passed to
	// child operations. The span must be ended by calling Span.End().
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int64 creates an int64 attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// HashIDNumber returns a SHA-256 hash of an ID number for safe use in traces.
// This allows correlation of traces without exposing PII.
func HashIDNumber(idNumber string) string {
	if idNumber == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(idNumber))
	return hex.EncodeToString(hash[:8])
}

// Span names used by the scoring client.
const (
	SpanScore   = "riskshield.score"
	SpanAttempt = "riskshield.attempt"
)

// Attribute keys used by the scoring client.
const (
	AttrIDNumberHash  = "id_number_hash"
	AttrCorrelationID = "correlation_id"
	AttrAttempt       = "attempt"
	AttrStatusCode    = "http.status_code"
	AttrRetryable     = "retryable"
	AttrBackoff       = "backoff_ms"
)

// Event names used by the scoring client.
const (
	EventRetryScheduled = "retry.scheduled"
	EventCircuitOpen    = "circuit.open"
)
