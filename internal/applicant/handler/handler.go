// Package handler exposes the applicant validation HTTP endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"riskgate/internal/applicant/models"
	"riskgate/internal/platform/metrics"
	"riskgate/pkg/circuit"
	"riskgate/pkg/platform/httputil"
	"riskgate/pkg/requestcontext"
	"riskgate/pkg/validation"
)

// Service defines the interface for applicant scoring operations.
type Service interface {
	ScoreApplicant(ctx context.Context, req *models.ValidateRequest) (*models.RiskScoreResponse, error)
}

// Handler handles the applicant validation endpoint and the admin circuit
// reset endpoint.
type Handler struct {
	svc     Service
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures the Handler.
type Option func(*Handler)

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Handler) { h.metrics = m }
}

// New creates an applicant Handler. The breaker may be nil when no upstream
// circuit exists (demo mode); the admin reset endpoint then no-ops.
func New(svc Service, breaker *circuit.Breaker, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{svc: svc, breaker: breaker, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register registers the applicant routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/v1/validate", h.HandleValidate)
}

// RegisterAdmin registers operator endpoints. The parent router applies the
// admin token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/circuit/reset", h.HandleCircuitReset)
}

// HandleValidate validates an applicant and returns their risk score.
//
// Field validation failures return 400 with one detail entry per failed
// field; a structurally valid applicant is forwarded for scoring and upstream
// failures are translated to the error envelope by the httputil layer.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeJSON[models.ValidateRequest](w, r, h.logger)
	if !ok {
		return
	}
	req.Normalize()

	if fieldErrors := validation.Validate(req); fieldErrors != nil {
		h.recordRejection(fieldErrors)
		h.logger.InfoContext(ctx, "applicant rejected by validation",
			"field_count", len(fieldErrors),
			"correlation_id", requestcontext.CorrelationID(ctx),
		)
		httputil.WriteValidationError(w, ctx, fieldErrors)
		return
	}

	resp, err := h.svc.ScoreApplicant(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "applicant scoring failed",
			"error", err,
			"correlation_id", requestcontext.CorrelationID(ctx),
		)
		httputil.WriteError(w, ctx, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, resp)
}

// CircuitResetResponse is the admin circuit reset response.
type CircuitResetResponse struct {
	Status  string `json:"status"`
	Circuit string `json:"circuit"`
}

// HandleCircuitReset forces the upstream circuit breaker back to closed.
// Used by operators after confirming the upstream has recovered, instead of
// waiting out the cooldown.
func (h *Handler) HandleCircuitReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	name := "none"
	if h.breaker != nil {
		h.breaker.Reset()
		name = h.breaker.Name()
		h.logger.InfoContext(ctx, "circuit breaker reset by operator",
			"circuit", name,
			"correlation_id", requestcontext.CorrelationID(ctx),
		)
	}

	httputil.WriteJSON(w, http.StatusOK, CircuitResetResponse{
		Status:  "reset",
		Circuit: name,
	})
}

func (h *Handler) recordRejection(fieldErrors []validation.FieldError) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordValidation("rejected")
	for _, fe := range fieldErrors {
		h.metrics.RecordFieldError(fe.Field)
	}
}
