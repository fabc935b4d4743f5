package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "riskgate/pkg/domain-errors"
	"riskgate/pkg/requestcontext"
	"riskgate/pkg/validation"
)

func decodeEnvelope(t *testing.T, body *bytes.Buffer) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(body.Bytes(), &resp))
	return resp
}

func TestWriteError(t *testing.T) {
	ctx := requestcontext.WithCorrelationID(context.Background(), "abc-123")

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "validation error maps to 400",
			err:        dErrors.New(dErrors.CodeValidation, "request validation failed"),
			wantStatus: http.StatusBadRequest,
			wantError:  "VALIDATION_ERROR",
		},
		{
			name:       "upstream unavailable maps to 502",
			err:        dErrors.New(dErrors.CodeUpstreamUnavailable, "scoring service unavailable"),
			wantStatus: http.StatusBadGateway,
			wantError:  "UPSTREAM_ERROR",
		},
		{
			name:       "timeout maps to 504",
			err:        dErrors.New(dErrors.CodeTimeout, "scoring request timed out"),
			wantStatus: http.StatusGatewayTimeout,
			wantError:  "UPSTREAM_ERROR",
		},
		{
			name:       "circuit open maps to 503",
			err:        dErrors.New(dErrors.CodeCircuitOpen, "scoring service temporarily unavailable"),
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "service_unavailable",
		},
		{
			name:       "secret unavailable maps to 503",
			err:        dErrors.New(dErrors.CodeSecretUnavailable, "credential store unreachable"),
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "service_unavailable",
		},
		{
			name:       "unknown error maps to 500 with generic message",
			err:        errors.New("pq: connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, ctx, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			resp := decodeEnvelope(t, rec.Body)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Equal(t, "abc-123", resp.CorrelationID)
			assert.NotEmpty(t, resp.Message)
		})
	}

	t.Run("internal details never leak", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, ctx, errors.New("dial tcp 10.0.0.8:443: connect: connection refused"))

		resp := decodeEnvelope(t, rec.Body)
		assert.Equal(t, "internal server error", resp.Message)
		assert.NotContains(t, rec.Body.String(), "10.0.0.8")
	})
}

func TestWriteValidationError(t *testing.T) {
	ctx := requestcontext.WithCorrelationID(context.Background(), "abc-123")
	rec := httptest.NewRecorder()

	WriteValidationError(rec, ctx, []validation.FieldError{
		{Field: "body.id_number", Message: "Invalid ID number (checksum failed)", Code: "value_error"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeEnvelope(t, rec.Body)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error)
	assert.Equal(t, "abc-123", resp.CorrelationID)
	require.Len(t, resp.Details, 1)
	assert.Equal(t, "body.id_number", resp.Details[0].Field)
	assert.Equal(t, "value_error", resp.Details[0].Code)
}

func TestDecodeJSON(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	type payload struct {
		Name string `json:"name"`
	}

	t.Run("decodes valid body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"name":"Jane"}`))
		rec := httptest.NewRecorder()

		got, ok := DecodeJSON[payload](rec, req, logger)
		require.True(t, ok)
		assert.Equal(t, "Jane", got.Name)
	})

	t.Run("rejects malformed body with 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{not json`))
		rec := httptest.NewRecorder()

		_, ok := DecodeJSON[payload](rec, req, logger)
		require.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		resp := decodeEnvelope(t, rec.Body)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error)
	})
}
