package client

import (
	"fmt"
)

// The client maps every failed call into one of five error kinds so callers
// can decide between "surface and stop", "fix the input" and "retry by
// hand" without parsing status codes.

// AuthError covers bad credentials and failed identity verification.
// Never retried automatically.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return "auth: " + e.Message }

// PermissionError means the caller is authenticated but the role lacks the
// capability. Terminal; retrying cannot help.
type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string { return "permission: " + e.Message }

// ValidationError is a malformed or conflicting input reported by the
// server, surfaced verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return "validation: " + e.Message }

// StaleStateError means the target state moved on before the call landed,
// e.g. deciding an already-decided request. Non-retryable; the caller
// should refresh the underlying list instead.
type StaleStateError struct {
	Message string
}

func (e *StaleStateError) Error() string { return "stale: " + e.Message }

// NetworkError is a transport failure, a non-JSON body or a 5xx. Safe to
// retry manually, never automatically.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string { return "network: " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// ErrSuperseded marks a fetch whose result was discarded because a newer
// fetch was issued before it resolved. It is a signal, not a failure.
var ErrSuperseded = &StaleStateError{Message: "request superseded by a newer one"}

// Envelope codes the client branches on. Mirrors the server's stable set.
const (
	codeRequestAlreadyHandled = "request_already_handled"
)

// apiError converts a non-2xx response into the typed taxonomy. The
// machine-readable envelope code decides the ambiguous cases; the message
// is only carried for display.
func apiError(status int, code, message string) error {
	if message == "" {
		message = fmt.Sprintf("server returned status %d", status)
	}
	switch {
	case status == 401:
		return &AuthError{Message: message}
	case status == 403:
		return &PermissionError{Message: message}
	case status == 400 && code == codeRequestAlreadyHandled:
		return &StaleStateError{Message: message}
	case status >= 400 && status < 500:
		return &ValidationError{Message: message}
	default:
		return &NetworkError{Err: fmt.Errorf("%s (status %d)", message, status)}
	}
}
