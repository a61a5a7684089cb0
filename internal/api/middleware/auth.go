package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/breachscan/tender-system/internal/api/metrics"
	"github.com/breachscan/tender-system/internal/core/domain"
	"github.com/breachscan/tender-system/internal/core/ports"
)

// CookieName is the session cookie carrying the signed token.
const CookieName = "token"

// IdentityKey is the echo context key the resolved identity is stored under.
const identityKey = "identity"

// Auth validates the session cookie and resolves the server-confirmed
// identity. The token carries only the subject; role and pending-request
// state come from the stores on every request, so a role change or account
// deletion takes effect immediately rather than at token expiry.
func Auth(jwtSecret string, auth ports.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing session cookie")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(cookie.Value, claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				metrics.AuthFailuresTotal.WithLabelValues("invalid_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid session token")
			}

			username, _ := claims["sub"].(string)
			if username == "" {
				metrics.AuthFailuresTotal.WithLabelValues("invalid_token").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid session token")
			}

			identity, err := auth.Identity(c.Request().Context(), username)
			if err != nil {
				// Only a confirmed missing account kills the session. A store
				// failure propagates as a server error so the client retries
				// instead of forcing a re-login.
				if errors.Is(err, domain.ErrUserNotFound) {
					metrics.AuthFailuresTotal.WithLabelValues("stale_session").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, "session no longer valid")
				}
				return fmt.Errorf("resolve session identity: %w", err)
			}

			c.Set(identityKey, identity)
			return next(c)
		}
	}
}
