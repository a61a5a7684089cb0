package domain

import (
	"errors"
	"time"
)

// RequestStatus represents the lifecycle state of a role-elevation request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// validDecisions defines the allowed state machine transitions. Only a
// pending request can be decided; decided requests are immutable.
var validDecisions = map[RequestStatus][]RequestStatus{
	RequestPending: {RequestApproved, RequestRejected},
}

var ErrRequestNotFound = errors.New("admin request not found")
var ErrRequestAlreadyPending = errors.New("admin request already pending")
var ErrRequestNotPending = errors.New("admin request already handled")

// CanTransitionTo reports whether a decision from status s to next is valid.
func (s RequestStatus) CanTransitionTo(next RequestStatus) bool {
	for _, allowed := range validDecisions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AdminRequest is a user's application for the admin role. At most one
// pending request may exist per username; the ledger enforces this.
type AdminRequest struct {
	ID        string        `json:"id"`
	Username  string        `json:"username"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	DecidedAt time.Time     `json:"decided_at,omitempty"`
	DecidedBy string        `json:"decided_by,omitempty"`
}
