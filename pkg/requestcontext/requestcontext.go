// Package requestcontext carries per-request values (correlation ID, client
// metadata) through context so handlers, services, and the upstream client
// see the same identifiers without explicit plumbing at every call site.
package requestcontext

import "context"

type correlationIDKey struct{}

type clientMetadataKey struct{}

// ClientMetadata holds request origin details extracted by middleware.
// It is used for request logging only and never persisted.
type ClientMetadata struct {
	IP          string
	Fingerprint string
}

// WithCorrelationID returns a context carrying the correlation ID.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// CorrelationID retrieves the correlation ID from the context.
// Returns "" when no middleware has set one (e.g. in unit tests).
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithClientMetadata returns a context carrying client origin details.
func WithClientMetadata(ctx context.Context, meta ClientMetadata) context.Context {
	return context.WithValue(ctx, clientMetadataKey{}, meta)
}

// GetClientMetadata retrieves client origin details from the context.
func GetClientMetadata(ctx context.Context) ClientMetadata {
	if meta, ok := ctx.Value(clientMetadataKey{}).(ClientMetadata); ok {
		return meta
	}
	return ClientMetadata{}
}
