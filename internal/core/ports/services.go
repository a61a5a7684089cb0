package ports

import (
	"context"

	"github.com/breachscan/tender-system/internal/core/domain"
	"github.com/breachscan/tender-system/internal/core/filter"
)

// AuthService implements the credential lifecycle.
type AuthService interface {
	Register(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error
	Identity(ctx context.Context, username string) (*domain.Identity, error)
}

// ElevationService is the role-elevation workflow: a user submits a request,
// an owner lists and decides them.
type ElevationService interface {
	Submit(ctx context.Context, caller *domain.Identity) (*domain.AdminRequest, error)
	List(ctx context.Context, caller *domain.Identity) ([]domain.AdminRequest, error)
	Decide(ctx context.Context, caller *domain.Identity, username string, approve bool) (*domain.AdminRequest, error)
}

// TenderService triggers collection passes and serves stored result sets.
type TenderService interface {
	TriggerScan(ctx context.Context, caller *domain.Identity, criteria filter.Criteria) (*domain.ParseSession, error)
	Fetch(ctx context.Context, caller *domain.Identity, criteria filter.Criteria) ([]domain.TenderRecord, error)
}

// AnalysisService serves per-tender AI analysis with result caching.
type AnalysisService interface {
	Analyze(ctx context.Context, caller *domain.Identity, tenderID string) (*domain.AnalysisResult, error)
}
