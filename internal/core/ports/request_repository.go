package ports

import (
	"context"

	"github.com/breachscan/tender-system/internal/core/domain"
)

// RequestRepository is the role-elevation request ledger. It owns the
// "at most one pending request per username" invariant: Create must fail
// with ErrRequestAlreadyPending when a pending request already exists, and
// Decide must fail with ErrRequestNotPending unless the target request is
// still pending at the moment of the update.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.AdminRequest) error
	HasPending(ctx context.Context, username string) (bool, error)
	List(ctx context.Context) ([]domain.AdminRequest, error)
	Decide(ctx context.Context, username string, next domain.RequestStatus, decidedBy string) (*domain.AdminRequest, error)
}
