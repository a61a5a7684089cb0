package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/breachscan/tender-system/internal/core/domain"
)

type stubUserRepo struct {
	users map[string]*domain.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Username]; exists {
		return nil, domain.ErrUserExists
	}
	copy := cloneUser(user)
	if copy.ID == "" {
		copy.ID = user.Username
	}
	r.users[copy.Username] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, username, passwordHash string) error {
	u, ok := r.users[username]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *stubUserRepo) UpdateRole(_ context.Context, username string, role domain.Role) error {
	u, ok := r.users[username]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	return nil
}

type stubRequestRepo struct {
	requests []domain.AdminRequest
}

func (r *stubRequestRepo) Create(_ context.Context, req *domain.AdminRequest) error {
	for _, existing := range r.requests {
		if existing.Username == req.Username && existing.Status == domain.RequestPending {
			return domain.ErrRequestAlreadyPending
		}
	}
	r.requests = append(r.requests, *req)
	return nil
}

func (r *stubRequestRepo) HasPending(_ context.Context, username string) (bool, error) {
	for _, req := range r.requests {
		if req.Username == username && req.Status == domain.RequestPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubRequestRepo) List(_ context.Context) ([]domain.AdminRequest, error) {
	out := make([]domain.AdminRequest, len(r.requests))
	copy(out, r.requests)
	return out, nil
}

func (r *stubRequestRepo) Decide(_ context.Context, username string, next domain.RequestStatus, decidedBy string) (*domain.AdminRequest, error) {
	for i := range r.requests {
		if r.requests[i].Username != username {
			continue
		}
		if r.requests[i].Status != domain.RequestPending {
			return nil, domain.ErrRequestNotPending
		}
		r.requests[i].Status = next
		r.requests[i].DecidedAt = time.Now().UTC()
		r.requests[i].DecidedBy = decidedBy
		out := r.requests[i]
		return &out, nil
	}
	return nil, domain.ErrRequestNotFound
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, &stubRequestRepo{}, "secret", time.Hour)

	user, err := svc.Register(context.Background(), "alice", "longenough")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user == nil {
		t.Fatalf("expected user, got nil")
	}
	if user.PasswordHash == "longenough" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("longenough")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("new users must start as %s, got %s", domain.RoleUser, user.Role)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, &stubRequestRepo{}, "secret", time.Hour)

	if _, err := svc.Register(context.Background(), "", "longenough"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for empty username, got %v", err)
	}
	if _, err := svc.Register(context.Background(), "bob", "short"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for short password, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, &stubRequestRepo{}, "secret", time.Hour)

	_, _ = svc.Register(context.Background(), "bob", "longenough")
	if _, err := svc.Register(context.Background(), "bob", "otherpass1"); err != domain.ErrUserExists {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, &stubRequestRepo{}, "secret", time.Hour)

	if _, err := svc.Register(context.Background(), "carol", "s3cretpass"); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "carol", "s3cretpass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}
	if user == nil || user.Username != "carol" {
		t.Fatalf("unexpected user: %+v", user)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sub"] != "carol" {
		t.Fatalf("expected sub carol, got %v", claims["sub"])
	}
	if _, ok := claims["role"]; ok {
		t.Fatalf("token must not carry role claims")
	}
}

func TestAuthService_Login_InvalidPassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, &stubRequestRepo{}, "secret", time.Hour)

	_, _ = svc.Register(context.Background(), "dave", "goodpass1")
	if _, _, err := svc.Login(context.Background(), "dave", "badpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_UnknownUserIndistinguishable(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, &stubRequestRepo{}, "secret", time.Hour)

	if _, _, err := svc.Login(context.Background(), "ghost", "whatever"); err != domain.ErrInvalidCredentials {
		t.Fatalf("unknown user must look like bad credentials, got %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, &stubRequestRepo{}, "secret", time.Hour)

	_, _ = svc.Register(context.Background(), "erin", "original1")

	if err := svc.ChangePassword(context.Background(), "erin", "wrongpass", "replacement1"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for wrong old password, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), "erin", "original1", "short"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for short new password, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), "erin", "original1", "replacement1"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "erin", "original1"); err != domain.ErrInvalidCredentials {
		t.Fatalf("old password must stop working, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "erin", "replacement1"); err != nil {
		t.Fatalf("new password must work: %v", err)
	}
}

func TestAuthService_Identity_PendingFlag(t *testing.T) {
	users := newStubUserRepo()
	requests := &stubRequestRepo{}
	svc := NewAuthService(users, requests, "secret", time.Hour)

	_, _ = svc.Register(context.Background(), "frank", "longenough")

	id, err := svc.Identity(context.Background(), "frank")
	if err != nil {
		t.Fatalf("identity failed: %v", err)
	}
	if id.HasPendingAdminRequest {
		t.Fatalf("expected no pending request")
	}

	_ = requests.Create(context.Background(), &domain.AdminRequest{
		ID: "r1", Username: "frank", Status: domain.RequestPending, CreatedAt: time.Now(),
	})

	id, err = svc.Identity(context.Background(), "frank")
	if err != nil {
		t.Fatalf("identity failed: %v", err)
	}
	if !id.HasPendingAdminRequest {
		t.Fatalf("expected pending request flag to be set")
	}
}
