package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskgate/internal/applicant/models"
	"riskgate/internal/riskshield"
	"riskgate/pkg/requestcontext"
)

type stubScorer struct {
	result *riskshield.ScoreResult
	err    error
	got    riskshield.ScoreRequest
}

func (s *stubScorer) Score(_ context.Context, req riskshield.ScoreRequest) (*riskshield.ScoreResult, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func testServiceLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_ScoreApplicant(t *testing.T) {
	t.Run("maps upstream score to response", func(t *testing.T) {
		scorer := &stubScorer{result: &riskshield.ScoreResult{RiskScore: 72, RiskLevel: "HIGH"}}
		svc := New(scorer, testServiceLogger())

		ctx := requestcontext.WithCorrelationID(context.Background(), "abc-123")
		resp, err := svc.ScoreApplicant(ctx, &models.ValidateRequest{
			FirstName: "Thandi",
			LastName:  "Nkosi",
			IDNumber:  "8001015009087",
		})

		require.NoError(t, err)
		assert.Equal(t, 72, resp.RiskScore)
		assert.Equal(t, models.RiskLevelHigh, resp.RiskLevel)
		assert.Equal(t, "abc-123", resp.CorrelationID)
		assert.Equal(t, "8001015009087", scorer.got.IDNumber)
	})

	t.Run("recomputes level from score", func(t *testing.T) {
		// Upstream label disagrees with its own score; local mapping wins.
		scorer := &stubScorer{result: &riskshield.ScoreResult{RiskScore: 10, RiskLevel: "HIGH"}}
		svc := New(scorer, testServiceLogger())

		resp, err := svc.ScoreApplicant(context.Background(), &models.ValidateRequest{IDNumber: "8001015009087"})

		require.NoError(t, err)
		assert.Equal(t, models.RiskLevelLow, resp.RiskLevel)
	})

	t.Run("propagates scorer errors", func(t *testing.T) {
		scorer := &stubScorer{err: errors.New("upstream down")}
		svc := New(scorer, testServiceLogger())

		_, err := svc.ScoreApplicant(context.Background(), &models.ValidateRequest{IDNumber: "8001015009087"})

		require.Error(t, err)
	})
}

func TestDemoScorer(t *testing.T) {
	result, err := DemoScorer{}.Score(context.Background(), riskshield.ScoreRequest{IDNumber: "8001015009087"})

	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.RiskScore, 0)
	assert.LessOrEqual(t, result.RiskScore, 100)
	assert.Equal(t, string(models.RiskLevelFromScore(result.RiskScore)), result.RiskLevel)

	// Deterministic for the same input.
	again, err := DemoScorer{}.Score(context.Background(), riskshield.ScoreRequest{IDNumber: "8001015009087"})
	require.NoError(t, err)
	assert.Equal(t, result.RiskScore, again.RiskScore)
}
