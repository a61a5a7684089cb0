package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/breachscan/tender-system/internal/api/metrics"
	"github.com/breachscan/tender-system/internal/api/middleware"
	"github.com/breachscan/tender-system/internal/core/domain"
	"github.com/breachscan/tender-system/internal/core/ports"
)

// AuthHandler serves the credential lifecycle: register, login (setting the
// session cookie), the identity read, logout and password change.
type AuthHandler struct {
	authService  ports.AuthService
	tokenTTL     time.Duration
	secureCookie bool
}

func NewAuthHandler(authService ports.AuthService, tokenTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, tokenTTL: tokenTTL, secureCookie: secureCookie}
}

type credentialsRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,max=128"`
}

type statusResponse struct {
	Success bool `json:"success"`
}

// Register creates a new user account with the user role.
//
// @Summary      Register a new user
// @Tags         auth
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if _, err := h.authService.Register(c.Request().Context(), req.Username, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, statusResponse{Success: true})
}

// Login authenticates the user and sets the HTTP-only session cookie.
//
// @Summary      Login
// @Tags         auth
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	token, _, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if err == domain.ErrInvalidCredentials {
			metrics.AuthFailuresTotal.WithLabelValues("bad_credentials").Inc()
		}
		return err
	}

	c.SetCookie(h.sessionCookie(token, h.tokenTTL))
	return c.JSON(http.StatusOK, statusResponse{Success: true})
}

// Me returns the caller's server-confirmed identity, including the
// pending-admin-request flag derived from the ledger.
//
// @Summary      Current identity
// @Tags         auth
// @Router       /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	id := middleware.Identity(c)
	if id == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return c.JSON(http.StatusOK, id)
}

// Logout clears the session cookie. Clearing is unconditional: there is
// nothing to fail server-side that should leave the caller logged in.
//
// @Summary      Logout
// @Tags         auth
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.sessionCookie("", -time.Hour))
	return c.JSON(http.StatusOK, statusResponse{Success: true})
}

// ChangePassword verifies the old password before storing the new hash.
//
// @Summary      Change password
// @Tags         auth
// @Router       /change-password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	id := middleware.Identity(c)
	if id == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.authService.ChangePassword(c.Request().Context(), id.Username, req.OldPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{Success: true})
}

// sessionCookie builds the session cookie with the attributes the original
// deployment uses: HTTP-only, SameSite=Lax, path /, Secure in production.
func (h *AuthHandler) sessionCookie(token string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
