package middleware

import (
	"log/slog"
	"net/http"

	dErrors "riskgate/pkg/domain-errors"
	"riskgate/pkg/platform/httputil"
	"riskgate/pkg/requestcontext"
	"riskgate/pkg/secrets"
)

// AdminTokenHeader authenticates operator requests to admin endpoints.
const AdminTokenHeader = "X-Admin-Token"

// AdminToken guards admin endpoints with a shared operator token, verified
// against a bcrypt hash so configuration never holds the plaintext. An empty
// hash disables the admin surface: every request is rejected.
func AdminToken(tokenHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if tokenHash == "" {
				httputil.WriteError(w, ctx, dErrors.New(dErrors.CodeUnauthorized, "admin endpoints are disabled"))
				return
			}

			token := r.Header.Get(AdminTokenHeader)
			if token == "" {
				httputil.WriteError(w, ctx, dErrors.New(dErrors.CodeUnauthorized, "missing admin token"))
				return
			}

			if err := secrets.Verify(token, tokenHash); err != nil {
				logger.WarnContext(ctx, "admin token rejected",
					"correlation_id", requestcontext.CorrelationID(ctx),
				)
				httputil.WriteError(w, ctx, dErrors.New(dErrors.CodeUnauthorized, "invalid admin token"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
