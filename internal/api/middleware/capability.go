package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/breachscan/tender-system/internal/core/domain"
)

// Identity extracts the identity resolved by Auth, or nil when the request
// is unauthenticated.
func Identity(c echo.Context) *domain.Identity {
	id, _ := c.Get(identityKey).(*domain.Identity)
	return id
}

// RequireCapability rejects callers whose role does not grant cap. This is
// the server-side boundary; any client-side check is an optimization only.
func RequireCapability(cap domain.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := Identity(c)
			switch err := domain.Require(id, cap); err {
			case nil:
				return next(c)
			case domain.ErrUnauthenticated:
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			default:
				return echo.NewHTTPError(http.StatusForbidden, forbiddenMessage(cap))
			}
		}
	}
}

// forbiddenMessage keeps a distinct message per capability so a denial tells
// the caller what was missing, not just that something was.
func forbiddenMessage(cap domain.Capability) string {
	switch cap {
	case domain.CapViewTable:
		return "your role cannot view tender results"
	case domain.CapDoAnalysis:
		return "your role cannot request tender analysis"
	case domain.CapManageScanning:
		return "only admins and owners can trigger scans"
	case domain.CapManageAdmins:
		return "only owners can manage admin requests"
	default:
		return "forbidden"
	}
}
