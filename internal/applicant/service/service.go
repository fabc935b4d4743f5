// Package service orchestrates applicant risk scoring against the upstream.
package service

import (
	"context"
	"log/slog"

	"riskgate/internal/applicant/models"
	"riskgate/internal/platform/metrics"
	"riskgate/internal/riskshield"
	"riskgate/pkg/requestcontext"
	"riskgate/pkg/validation"
)

// Scorer submits an applicant for risk scoring.
type Scorer interface {
	Score(ctx context.Context, req riskshield.ScoreRequest) (*riskshield.ScoreResult, error)
}

// Service validates applicants by delegating to a scorer and shaping the
// result for the API.
type Service struct {
	scorer  Scorer
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

// WithMetrics attaches Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates an applicant service.
func New(scorer Scorer, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{scorer: scorer, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScoreApplicant submits a validated applicant for scoring. The risk level is
// recomputed locally from the numeric score so the two response fields always
// agree regardless of what label the upstream returned.
func (s *Service) ScoreApplicant(ctx context.Context, req *models.ValidateRequest) (*models.RiskScoreResponse, error) {
	correlationID := requestcontext.CorrelationID(ctx)

	result, err := s.scorer.Score(ctx, riskshield.ScoreRequest{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		IDNumber:  req.IDNumber,
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordValidation("upstream_error")
		}
		return nil, err
	}

	level := models.RiskLevelFromScore(result.RiskScore)
	if string(level) != result.RiskLevel && result.RiskLevel != "" {
		s.logger.WarnContext(ctx, "upstream risk level disagrees with score, using local mapping",
			"upstream_level", result.RiskLevel,
			"local_level", string(level),
			"risk_score", result.RiskScore,
			"correlation_id", correlationID,
		)
	}

	s.logger.InfoContext(ctx, "applicant scored",
		"id_number", validation.MaskID(req.IDNumber),
		"risk_score", result.RiskScore,
		"risk_level", string(level),
		"correlation_id", correlationID,
	)
	if s.metrics != nil {
		s.metrics.RecordValidation("accepted")
	}

	return &models.RiskScoreResponse{
		RiskScore:     result.RiskScore,
		RiskLevel:     level,
		CorrelationID: correlationID,
	}, nil
}

// DemoScorer scores applicants locally without an upstream. It exists so the
// gateway can run end to end in local development with no RiskShield
// deployment and no API key.
type DemoScorer struct{}

// Score derives a deterministic pseudo-score from the ID number's digits.
func (DemoScorer) Score(_ context.Context, req riskshield.ScoreRequest) (*riskshield.ScoreResult, error) {
	sum := 0
	for _, r := range req.IDNumber {
		if r >= '0' && r <= '9' {
			sum += int(r - '0')
		}
	}
	score := sum % 101
	return &riskshield.ScoreResult{
		RiskScore: score,
		RiskLevel: string(models.RiskLevelFromScore(score)),
	}, nil
}
