package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/breachscan/tender-system/internal/core/domain"
)

// ElevationClient drives the admin-request workflow from the client side.
type ElevationClient struct {
	api     *Client
	session *SessionStore
}

func NewElevationClient(api *Client, session *SessionStore) *ElevationClient {
	return &ElevationClient{api: api, session: session}
}

// Submit files an admin request for the current user. The preconditions
// mirror the server's: only a plain user without a pending request may
// file one, so a doomed submission never leaves the process. On success
// the session is refreshed so the pending flag shows up immediately.
func (e *ElevationClient) Submit(ctx context.Context) error {
	id := e.session.Current()
	if id == nil {
		return &AuthError{Message: "not logged in"}
	}
	if id.Role != domain.RoleUser {
		return &ValidationError{Message: fmt.Sprintf("role %q cannot request elevation", id.Role)}
	}
	if id.HasPendingAdminRequest {
		return &ValidationError{Message: "an admin request is already pending"}
	}

	if err := e.api.do(ctx, http.MethodPost, "/admin-request", nil, nil); err != nil {
		return err
	}
	e.session.Refresh(ctx)
	return nil
}

// List returns all admin requests. Requires the manage-admins capability.
func (e *ElevationClient) List(ctx context.Context) ([]domain.AdminRequest, error) {
	if err := e.session.Can(domain.CapManageAdmins); err != nil {
		return nil, &PermissionError{Message: err.Error()}
	}
	var requests []domain.AdminRequest
	if err := e.api.do(ctx, http.MethodGet, "/admin-requests", nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// Decide approves or rejects the pending request for username. A
// StaleStateError means someone else decided it first; callers should
// re-List rather than retry.
func (e *ElevationClient) Decide(ctx context.Context, username string, approve bool) error {
	if err := e.session.Can(domain.CapManageAdmins); err != nil {
		return &PermissionError{Message: err.Error()}
	}
	action := "reject"
	if approve {
		action = "approve"
	}
	path := fmt.Sprintf("/admin-requests/%s/%s", action, url.PathEscape(username))
	return e.api.do(ctx, http.MethodPost, path, nil, nil)
}
