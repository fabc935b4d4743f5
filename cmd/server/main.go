package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	applicantHandler "riskgate/internal/applicant/handler"
	applicantService "riskgate/internal/applicant/service"
	"riskgate/internal/platform/config"
	"riskgate/internal/platform/health"
	"riskgate/internal/platform/httpserver"
	"riskgate/internal/platform/logger"
	"riskgate/internal/platform/metrics"
	"riskgate/internal/riskshield"
	"riskgate/internal/riskshield/tracer"
	"riskgate/internal/secrets"
	"riskgate/pkg/circuit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	log.Info("initializing riskgate",
		"addr", cfg.Addr,
		"environment", cfg.Environment,
		"upstream", cfg.Upstream.BaseURL,
		"demo_mode", cfg.DemoMode,
	)

	m := metrics.New()

	healthHandler := health.New(cfg.Environment)

	var (
		scorer  applicantService.Scorer
		breaker *circuit.Breaker
	)
	if cfg.DemoMode {
		log.Warn("demo mode enabled, scoring locally without RiskShield")
		scorer = applicantService.DemoScorer{}
	} else {
		keySource := secrets.NewCached(secrets.EnvSource{}, cfg.Secrets.CacheTTL, log)
		client := riskshield.New(cfg.Upstream, keySource, log,
			riskshield.WithMetrics(m),
			riskshield.WithTracer(tracer.NewOTel()),
		)
		scorer = client
		breaker = client.Breaker()
		healthHandler.RegisterCheck("secrets", secretsCheck(keySource, cfg.Upstream.APIKeySecret))
	}

	svc := applicantService.New(scorer, log, applicantService.WithMetrics(m))
	applicant := applicantHandler.New(svc, breaker, log, applicantHandler.WithMetrics(m))

	healthHandler.RegisterCheck("riskshield", upstreamCheck(breaker))

	router := newRouter(cfg, applicant, healthHandler, m, log)
	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting http server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown on SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info("shutting down server gracefully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
