package ports

import (
	"context"

	"github.com/breachscan/tender-system/internal/core/domain"
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	UpdatePassword(ctx context.Context, username, passwordHash string) error
	UpdateRole(ctx context.Context, username string, role domain.Role) error
}
