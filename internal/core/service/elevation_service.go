package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/breachscan/tender-system/internal/core/domain"
	"github.com/breachscan/tender-system/internal/core/ports"
)

// ElevationService runs the role-elevation workflow: submit as a user,
// list and decide as an owner. Every call re-checks the caller's capability
// even when the transport layer already did; the gate in front of a request
// is an optimization, not the security boundary.
type ElevationService struct {
	requests ports.RequestRepository
	users    ports.UserRepository
	logger   zerolog.Logger
}

func NewElevationService(requests ports.RequestRepository, users ports.UserRepository, logger zerolog.Logger) *ElevationService {
	return &ElevationService{requests: requests, users: users, logger: logger}
}

// Submit files a pending admin request for the caller. Only plain users may
// apply, and a second submission while one is pending is refused without
// creating a record.
func (s *ElevationService) Submit(ctx context.Context, caller *domain.Identity) (*domain.AdminRequest, error) {
	if caller == nil {
		return nil, domain.ErrUnauthenticated
	}
	if caller.Role != domain.RoleUser {
		return nil, domain.ErrPermissionDenied
	}
	if caller.HasPendingAdminRequest {
		return nil, domain.ErrRequestAlreadyPending
	}

	req := &domain.AdminRequest{
		ID:        uuid.NewString(),
		Username:  caller.Username,
		Status:    domain.RequestPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.requests.Create(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info().Str("username", caller.Username).Str("request_id", req.ID).Msg("admin request submitted")
	return req, nil
}

// List returns all requests, any status. Owner only.
func (s *ElevationService) List(ctx context.Context, caller *domain.Identity) ([]domain.AdminRequest, error) {
	if err := domain.Require(caller, domain.CapManageAdmins); err != nil {
		return nil, err
	}
	return s.requests.List(ctx)
}

// Decide transitions the target user's pending request to approved or
// rejected. Approval also promotes the target to admin in the user store.
// A request that is no longer pending fails as stale and is left unchanged.
func (s *ElevationService) Decide(ctx context.Context, caller *domain.Identity, username string, approve bool) (*domain.AdminRequest, error) {
	if err := domain.Require(caller, domain.CapManageAdmins); err != nil {
		return nil, err
	}

	next := domain.RequestRejected
	if approve {
		next = domain.RequestApproved
	}

	req, err := s.requests.Decide(ctx, username, next, caller.Username)
	if err != nil {
		return nil, err
	}

	if approve {
		if err := s.users.UpdateRole(ctx, username, domain.RoleAdmin); err != nil {
			s.logger.Error().Err(err).Str("username", username).Msg("request approved but role update failed")
			return nil, err
		}
	}

	s.logger.Info().
		Str("username", username).
		Str("status", string(req.Status)).
		Str("decided_by", caller.Username).
		Msg("admin request decided")
	return req, nil
}
