package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"riskgate/pkg/requestcontext"
)

// CorrelationIDHeader carries the per-request identifier through inbound
// requests, responses, and the upstream scoring call.
const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationID binds a correlation ID to each request. If the client
// supplies X-Correlation-ID it is reused; otherwise a new UUID is generated.
// The ID is stored in the context and echoed back as a response header, and
// every log line and the outbound upstream call carry the same value.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		ctx := requestcontext.WithCorrelationID(r.Context(), correlationID)
		w.Header().Set(CorrelationIDHeader, correlationID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
