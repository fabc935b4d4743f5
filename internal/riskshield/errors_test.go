package riskshield

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status        int
		wantCategory  ErrorCategory
		wantRetryable bool
	}{
		{http.StatusInternalServerError, ErrorServerError, true},
		{http.StatusBadGateway, ErrorServerError, true},
		{http.StatusServiceUnavailable, ErrorServerError, true},
		{http.StatusTooManyRequests, ErrorRateLimited, true},
		{http.StatusUnauthorized, ErrorAuthentication, false},
		{http.StatusForbidden, ErrorAuthentication, false},
		{http.StatusBadRequest, ErrorBadStatus, false},
		{http.StatusNotFound, ErrorBadStatus, false},
		{http.StatusUnprocessableEntity, ErrorBadStatus, false},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status %d", tt.status), func(t *testing.T) {
			err := ClassifyStatus(tt.status)
			assert.Equal(t, tt.wantCategory, err.Category)
			assert.Equal(t, tt.wantRetryable, err.Retryable)
			assert.Equal(t, tt.status, err.StatusCode)
		})
	}
}

func TestClassifyTransportError(t *testing.T) {
	t.Run("deadline exceeded is a timeout", func(t *testing.T) {
		err := ClassifyTransportError(context.DeadlineExceeded)
		assert.Equal(t, ErrorTimeout, err.Category)
		assert.True(t, err.Retryable)
	})

	t.Run("connection refused is retryable", func(t *testing.T) {
		err := ClassifyTransportError(errors.New("dial tcp: connection refused"))
		assert.Equal(t, ErrorConnection, err.Category)
		assert.True(t, err.Retryable)
	})
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewUpstreamError(ErrorTimeout, 0, "timed out", nil)))
	assert.True(t, IsRetryable(NewUpstreamError(ErrorServerError, 500, "boom", nil)))
	assert.False(t, IsRetryable(NewUpstreamError(ErrorBadData, 200, "garbage", nil)))
	assert.False(t, IsRetryable(errors.New("plain error")))
}

func TestUpstreamError_Unwrap(t *testing.T) {
	underlying := errors.New("connection reset")
	err := NewUpstreamError(ErrorConnection, 0, "unreachable", underlying)

	assert.ErrorIs(t, err, underlying)
	assert.Contains(t, err.Error(), "connection")
	assert.Contains(t, err.Error(), "connection reset")
}

func TestGetCategory(t *testing.T) {
	wrapped := fmt.Errorf("call failed: %w", NewUpstreamError(ErrorRateLimited, 429, "slow down", nil))
	assert.Equal(t, ErrorRateLimited, GetCategory(wrapped))
	assert.Equal(t, ErrorConnection, GetCategory(errors.New("opaque")))
}
