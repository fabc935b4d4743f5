package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	applicantHandler "riskgate/internal/applicant/handler"
	"riskgate/internal/platform/config"
	"riskgate/internal/platform/health"
	"riskgate/internal/platform/metrics"
	"riskgate/internal/platform/middleware"
	"riskgate/internal/riskshield"
	"riskgate/pkg/circuit"
)

const (
	requestTimeout = 30 * time.Second
	maxBodyBytes   = 1 << 20
)

// newRouter assembles the middleware chain and mounts all endpoints.
// Health and metrics sit outside the JSON content-type guard so probes and
// scrapers work without headers.
func newRouter(cfg config.Server, applicant *applicantHandler.Handler, healthHandler *health.Handler, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID)
	r.Use(middleware.ClientInfo)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	healthHandler.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		applicant.Register(r)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.AdminToken(cfg.AdminTokenHash, logger))
		applicant.RegisterAdmin(r)
	})

	return r
}

// upstreamCheck reports readiness of the scoring path. An open circuit means
// the gateway cannot currently score, so readiness reflects the breaker state
// rather than probing the upstream on every check.
func upstreamCheck(breaker *circuit.Breaker) health.CheckFunc {
	return func(_ context.Context) error {
		if breaker != nil && breaker.State() == circuit.StateOpen {
			return circuit.ErrOpen
		}
		return nil
	}
}

// secretsCheck reports readiness of the secret source by resolving the
// upstream API key. The cached source keeps repeated checks off the store
// between refreshes.
func secretsCheck(keys riskshield.KeySource, name string) health.CheckFunc {
	return func(ctx context.Context) error {
		_, err := keys.Get(ctx, name)
		return err
	}
}
