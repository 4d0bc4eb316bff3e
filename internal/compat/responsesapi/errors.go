package responsesapi

import (
	"context"
	"errors"
	"net/http"

	"completions-bridge/internal/compat"
	"completions-bridge/internal/responses"
)

// toCompletionError normalizes any backend failure into the legacy error
// envelope. Backend validation failures pass through with their message
// intact — this layer validates nothing, so the backend's verdict is the
// caller-visible one. Non-backend errors (network, timeouts) are wrapped as
// generic server_error.
func toCompletionError(err error) error {
	if err == nil {
		return nil
	}

	// Already normalized; pass through unchanged.
	var envelope *compat.ErrorResponse
	if errors.As(err, &envelope) {
		return envelope
	}

	// Structured backend HTTP errors carry the taxonomy we map from.
	var apiErr *responses.APIError
	if errors.As(err, &apiErr) {
		return &compat.ErrorResponse{Err: &compat.CompletionError{
			Message: apiErr.Message,
			Type:    mapBackendErrorType(apiErr.Type, apiErr.StatusCode),
			Code:    apiErr.Code,
		}}
	}

	// Failure payloads from the stream protocol.
	var respErr *responses.ResponseError
	if errors.As(err, &respErr) {
		return &compat.ErrorResponse{Err: &compat.CompletionError{
			Message: respErr.Message,
			Type:    "server_error",
			Code:    respErr.Code,
		}}
	}

	return &compat.ErrorResponse{Err: &compat.CompletionError{
		Message: err.Error(),
		Type:    "server_error",
	}}
}

// failedEventError extracts the failure payload of a response.failed event.
func failedEventError(ev responses.StreamEvent) error {
	if ev.Response != nil && ev.Response.Error != nil {
		return toCompletionError(ev.Response.Error)
	}
	return &compat.ErrorResponse{Err: &compat.CompletionError{
		Message: "response failed without error details",
		Type:    "server_error",
	}}
}

// mapBackendErrorType translates the backend error taxonomy to legacy error
// types, falling back to the HTTP status when the backend gave no type.
func mapBackendErrorType(backendType string, status int) string {
	switch backendType {
	case "invalid_request_error":
		return "invalid_request_error"
	case "authentication_error":
		return "authentication_error"
	case "permission_error":
		return "permission_denied"
	case "not_found_error":
		return "invalid_request_error"
	case "rate_limit_error":
		return "rate_limit_error"
	case "server_error", "api_error":
		return backendType
	}

	switch status {
	case http.StatusBadRequest, http.StatusNotFound:
		return "invalid_request_error"
	case http.StatusUnauthorized:
		return "authentication_error"
	case http.StatusForbidden:
		return "permission_denied"
	case http.StatusTooManyRequests:
		return "rate_limit_error"
	default:
		// Unknown error types default to api_error for safe handling
		return "api_error"
	}
}

// isCanceled reports whether err is a caller-initiated cancellation, which
// the stream translator treats as a partial result rather than a failure.
func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
