package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/breachscan/tender-system/internal/core/domain"
)

type stubAuthService struct {
	registerFn       func(ctx context.Context, username, password string) (*domain.User, error)
	loginFn          func(ctx context.Context, username, password string) (string, *domain.User, error)
	changePasswordFn func(ctx context.Context, username, oldPassword, newPassword string) error
	identityFn       func(ctx context.Context, username string) (*domain.Identity, error)
}

func (s *stubAuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	return s.registerFn(ctx, username, password)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	return s.changePasswordFn(ctx, username, oldPassword, newPassword)
}

func (s *stubAuthService) Identity(ctx context.Context, username string) (*domain.Identity, error) {
	return s.identityFn(ctx, username)
}

func jsonRequest(method, target, body string) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e, e.NewContext(req, rec), rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "token" {
			return cookie
		}
	}
	t.Fatalf("no session cookie set")
	return nil
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(_ context.Context, username, password string) (*domain.User, error) {
			if username != "alice" || password != "longenough" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return &domain.User{Username: username, Role: domain.RoleUser}, nil
		},
	}
	h := NewAuthHandler(stub, time.Hour, false)

	_, c, rec := jsonRequest(http.MethodPost, "/register", `{"username":"alice","password":"longenough"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, time.Hour, false)

	_, c, _ := jsonRequest(http.MethodPost, "/register", `{"username":"alice","password":"short"}`)
	err := h.Register(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}

func TestAuthHandler_Login_SetsCookie(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, username, password string) (string, *domain.User, error) {
			return "signed-token", &domain.User{Username: username}, nil
		},
	}
	h := NewAuthHandler(stub, time.Hour, false)

	_, c, rec := jsonRequest(http.MethodPost, "/login", `{"username":"alice","password":"longenough"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	cookie := sessionCookie(t, rec)
	if cookie.Value != "signed-token" {
		t.Fatalf("cookie must carry the token, got %q", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Fatalf("session cookie must be HTTP-only")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Fatalf("session cookie must be SameSite=Lax")
	}
	if cookie.Path != "/" {
		t.Fatalf("session cookie path must be /, got %q", cookie.Path)
	}
	if cookie.Secure {
		t.Fatalf("cookie must not be Secure outside production")
	}
}

func TestAuthHandler_Login_SecureInProduction(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(_ context.Context, username, password string) (string, *domain.User, error) {
			return "signed-token", &domain.User{Username: username}, nil
		},
	}
	h := NewAuthHandler(stub, time.Hour, true)

	_, c, rec := jsonRequest(http.MethodPost, "/login", `{"username":"alice","password":"longenough"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !sessionCookie(t, rec).Secure {
		t.Fatalf("cookie must be Secure in production")
	}
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(context.Context, string, string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, time.Hour, false)

	_, c, rec := jsonRequest(http.MethodPost, "/login", `{"username":"alice","password":"wrong"}`)
	if err := h.Login(c); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials passed through, got %v", err)
	}
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == "token" {
			t.Fatalf("failed login must not set a cookie")
		}
	}
}

func TestAuthHandler_Logout_ExpiresCookie(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, time.Hour, false)

	_, c, rec := jsonRequest(http.MethodPost, "/logout", "")
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	cookie := sessionCookie(t, rec)
	if cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Fatalf("logout must expire the cookie: value=%q maxage=%d", cookie.Value, cookie.MaxAge)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, time.Hour, false)

	_, c, rec := jsonRequest(http.MethodGet, "/me", "")
	c.Set("identity", &domain.Identity{Username: "alice", Role: domain.RoleUser, HasPendingAdminRequest: true})

	if err := h.Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var got domain.Identity
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Username != "alice" || !got.HasPendingAdminRequest {
		t.Fatalf("identity not serialized: %+v", got)
	}
}

func TestAuthHandler_Me_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, time.Hour, false)

	_, c, _ := jsonRequest(http.MethodGet, "/me", "")
	err := h.Me(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}
