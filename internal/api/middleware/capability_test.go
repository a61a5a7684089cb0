package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/breachscan/tender-system/internal/core/domain"
)

func capContext(t *testing.T, id *domain.Identity) echo.Context {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if id != nil {
		c.Set(identityKey, id)
	}
	return c
}

func TestRequireCapability_Allows(t *testing.T) {
	c := capContext(t, &domain.Identity{Username: "bob", Role: domain.RoleAdmin})

	called := false
	handler := RequireCapability(domain.CapManageScanning)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next handler not called")
	}
}

func TestRequireCapability_Forbids(t *testing.T) {
	c := capContext(t, &domain.Identity{Username: "alice", Role: domain.RoleUser})

	handler := RequireCapability(domain.CapManageScanning)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	err := handler(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestRequireCapability_Unauthenticated(t *testing.T) {
	c := capContext(t, nil)

	handler := RequireCapability(domain.CapViewTable)(func(c echo.Context) error {
		t.Fatalf("should not reach next handler")
		return nil
	})

	err := handler(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestRequireCapability_DistinctMessages(t *testing.T) {
	caps := []domain.Capability{
		domain.CapViewTable,
		domain.CapDoAnalysis,
		domain.CapManageScanning,
		domain.CapManageAdmins,
	}
	seen := make(map[string]domain.Capability)
	for _, cap := range caps {
		msg := forbiddenMessage(cap)
		if prev, dup := seen[msg]; dup {
			t.Fatalf("capabilities %s and %s share message %q", prev, cap, msg)
		}
		seen[msg] = cap
	}
}
