package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"lingod/internal/manager"
	"lingod/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps session errors to HTTP status codes.
func statusFor(err error) int {
	var he HTTPError
	switch {
	case errors.As(err, &he):
		return he.StatusCode()
	case manager.IsEmptyInput(err):
		return http.StatusBadRequest
	case manager.IsUnsupportedEnvironment(err), manager.IsSessionClosed(err):
		return http.StatusServiceUnavailable
	case manager.IsCreationFailed(err), manager.IsInvocationFailed(err):
		if errors.Is(err, context.DeadlineExceeded) {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	case manager.IsDetectionFailed(err):
		return http.StatusUnprocessableEntity
	case manager.IsSuperseded(err):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}
