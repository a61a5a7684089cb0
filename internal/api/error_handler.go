package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/breachscan/tender-system/internal/core/domain"
	"github.com/breachscan/tender-system/internal/core/filter"
)

// errorResponse is the canonical error envelope for all API errors. Code is
// a stable machine-readable discriminator; clients branch on it, not on the
// human-readable message.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Stable error codes carried in the envelope.
const (
	CodeInvalidCredentials    = "invalid_credentials"
	CodeUnauthenticated       = "unauthenticated"
	CodePermissionDenied      = "permission_denied"
	CodeUserExists            = "user_exists"
	CodeUserNotFound          = "user_not_found"
	CodeRequestAlreadyPending = "request_already_pending"
	CodeRequestAlreadyHandled = "request_already_handled"
	CodeRequestNotFound       = "request_not_found"
	CodeTenderNotFound        = "tender_not_found"
	CodeNoStoredResults       = "no_stored_results"
	CodeInvalidFilter         = "invalid_filter"
	CodeInternal              = "internal"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>", "code": "<code>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, resp := resolveError(err, log, c)
		_ = c.JSON(status, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Error: fmt.Sprintf("%v", he.Message)}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, errorResponse{Error: "invalid credentials", Code: CodeInvalidCredentials}
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, errorResponse{Error: "authentication required", Code: CodeUnauthenticated}
	case errors.Is(err, domain.ErrPermissionDenied):
		return http.StatusForbidden, errorResponse{Error: err.Error(), Code: CodePermissionDenied}
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, errorResponse{Error: "user already exists", Code: CodeUserExists}
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, errorResponse{Error: "user not found", Code: CodeUserNotFound}
	case errors.Is(err, domain.ErrRequestAlreadyPending):
		return http.StatusBadRequest, errorResponse{Error: "admin request already pending", Code: CodeRequestAlreadyPending}
	case errors.Is(err, domain.ErrRequestNotPending):
		return http.StatusBadRequest, errorResponse{Error: "admin request already handled", Code: CodeRequestAlreadyHandled}
	case errors.Is(err, domain.ErrRequestNotFound):
		return http.StatusNotFound, errorResponse{Error: "admin request not found", Code: CodeRequestNotFound}
	case errors.Is(err, domain.ErrTenderNotFound):
		return http.StatusNotFound, errorResponse{Error: "tender not found", Code: CodeTenderNotFound}
	case errors.Is(err, domain.ErrNoStoredResults):
		return http.StatusNotFound, errorResponse{Error: "no stored tender results; trigger a scan first", Code: CodeNoStoredResults}
	case errors.Is(err, filter.ErrDateInFuture), errors.Is(err, filter.ErrMalformedDate):
		return http.StatusBadRequest, errorResponse{Error: err.Error(), Code: CodeInvalidFilter}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Error: "internal server error", Code: CodeInternal}
}
