package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breachscan/tender-system/internal/core/domain"
)

func loggedInElevation(t *testing.T, f *fakeServer, id *domain.Identity) *ElevationClient {
	t.Helper()
	f.handle("GET /me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, id)
	})
	s := newTestSession(t, f)
	require.True(t, s.Refresh(context.Background()))
	return NewElevationClient(s.api, s)
}

func TestElevationClient_Submit(t *testing.T) {
	f := newFakeServer(t)
	f.handle("POST /admin-request", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
	})
	ec := loggedInElevation(t, f, identityOf("alice", domain.RoleUser))

	require.NoError(t, ec.Submit(context.Background()))
	assert.Equal(t, 1, f.callCount("POST /admin-request"))
	// Submit refreshes the identity so the pending flag shows up.
	assert.GreaterOrEqual(t, f.callCount("GET /me"), 2)
}

func TestElevationClient_Submit_PrecheckBlocksAdmins(t *testing.T) {
	f := newFakeServer(t)
	ec := loggedInElevation(t, f, identityOf("bob", domain.RoleAdmin))

	err := ec.Submit(context.Background())
	require.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
	assert.Equal(t, 0, f.callCount("POST /admin-request"), "doomed submission must not leave the process")
}

func TestElevationClient_Submit_PrecheckBlocksPending(t *testing.T) {
	f := newFakeServer(t)
	id := identityOf("alice", domain.RoleUser)
	id.HasPendingAdminRequest = true
	ec := loggedInElevation(t, f, id)

	err := ec.Submit(context.Background())
	require.Error(t, err)
	assert.IsType(t, &ValidationError{}, err)
	assert.Equal(t, 0, f.callCount("POST /admin-request"))
}

func TestElevationClient_List_PrecheckIsLocal(t *testing.T) {
	f := newFakeServer(t)
	ec := loggedInElevation(t, f, identityOf("alice", domain.RoleUser))

	_, err := ec.List(context.Background())
	require.Error(t, err)
	assert.IsType(t, &PermissionError{}, err)
	assert.Equal(t, 0, f.callCount("GET /admin-requests"))
}

func TestElevationClient_List(t *testing.T) {
	f := newFakeServer(t)
	f.handle("GET /admin-requests", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []domain.AdminRequest{
			{ID: "r1", Username: "alice", Status: domain.RequestPending},
		})
	})
	ec := loggedInElevation(t, f, identityOf("owner", domain.RoleOwner))

	requests, err := ec.List(context.Background())
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, domain.RequestPending, requests[0].Status)
}

func TestElevationClient_Decide_StaleSurfaced(t *testing.T) {
	f := newFakeServer(t)
	f.handle("POST /admin-requests/approve/alice", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "admin request already handled",
			"code":  "request_already_handled",
		})
	})
	ec := loggedInElevation(t, f, identityOf("owner", domain.RoleOwner))

	err := ec.Decide(context.Background(), "alice", true)
	require.Error(t, err)
	assert.IsType(t, &StaleStateError{}, err, "already-decided must surface as stale, not a bare error")
}

func TestElevationClient_Decide_Reject(t *testing.T) {
	f := newFakeServer(t)
	f.handle("POST /admin-requests/reject/alice", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})
	ec := loggedInElevation(t, f, identityOf("owner", domain.RoleOwner))

	require.NoError(t, ec.Decide(context.Background(), "alice", false))
	assert.Equal(t, 1, f.callCount("POST /admin-requests/reject/alice"))
}
