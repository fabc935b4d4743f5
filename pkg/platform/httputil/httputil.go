package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	dErrors "riskgate/pkg/domain-errors"
	"riskgate/pkg/requestcontext"
	"riskgate/pkg/validation"
)

// ErrorResponse is the JSON error envelope for every failure path.
// The correlation ID is always included so operators can match client
// reports against server logs.
type ErrorResponse struct {
	Error         string                  `json:"error"`
	Message       string                  `json:"message"`
	CorrelationID string                  `json:"correlation_id,omitempty"`
	Details       []validation.FieldError `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, response any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Errors after WriteHeader cannot change the status code, so we ignore encoding errors.
	// The response body may be incomplete, but headers are already sent.
	_ = json.NewEncoder(w).Encode(response)
}

// WriteValidationError writes the 400 envelope with per-field details.
func WriteValidationError(w http.ResponseWriter, ctx context.Context, details []validation.FieldError) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:         "VALIDATION_ERROR",
		Message:       "request validation failed",
		CorrelationID: requestcontext.CorrelationID(ctx),
		Details:       details,
	})
}

// WriteError centralizes domain error translation to HTTP responses.
// Messages come from the domain error and never include upstream URLs,
// stack traces, or raw identifiers.
func WriteError(w http.ResponseWriter, ctx context.Context, err error) {
	response := ErrorResponse{
		CorrelationID: requestcontext.CorrelationID(ctx),
	}

	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		response.Error = DomainCodeToAPICode(domainErr.Code)
		response.Message = domainErr.Message
		if response.Message == "" {
			response.Message = string(domainErr.Code)
		}
		WriteJSON(w, DomainCodeToHTTPStatus(domainErr.Code), response)
		return
	}

	// Fallback for unexpected errors: generic body, details stay in the logs.
	response.Error = DomainCodeToAPICode(dErrors.CodeInternal)
	response.Message = "internal server error"
	WriteJSON(w, http.StatusInternalServerError, response)
}

// DomainCodeToHTTPStatus translates domain error codes to HTTP status codes.
func DomainCodeToHTTPStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeUpstreamUnavailable, dErrors.CodeUpstreamRejected:
		return http.StatusBadGateway
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	case dErrors.CodeCircuitOpen, dErrors.CodeSecretUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// DomainCodeToAPICode translates domain error codes to the stable error
// strings of the public API.
func DomainCodeToAPICode(code dErrors.Code) string {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeValidation:
		return "VALIDATION_ERROR"
	case dErrors.CodeUnauthorized:
		return "unauthorized"
	case dErrors.CodeUpstreamUnavailable, dErrors.CodeUpstreamRejected, dErrors.CodeTimeout:
		return "UPSTREAM_ERROR"
	case dErrors.CodeCircuitOpen, dErrors.CodeSecretUnavailable:
		return "service_unavailable"
	default:
		return "internal_error"
	}
}
