package domain

import (
	"errors"
	"time"
)

// Role is the closed set of roles a user can hold.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleAdmin, RoleOwner:
		return true
	default:
		return false
	}
}

// Capability is a named permission granted by role.
type Capability string

const (
	CapViewTable      Capability = "view_table"
	CapDoAnalysis     Capability = "do_analysis"
	CapManageScanning Capability = "manage_scanning"
	CapManageAdmins   Capability = "manage_admins"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrUnauthenticated = errors.New("authentication required")
var ErrPermissionDenied = errors.New("insufficient role for this operation")

// User models an authenticated actor in the system.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the server-confirmed view of a user published to clients.
// HasPendingAdminRequest is derived from the request ledger on every read,
// never inferred locally.
type Identity struct {
	ID                     string    `json:"id"`
	Username               string    `json:"username"`
	Role                   Role      `json:"role"`
	CreatedAt              time.Time `json:"created_at"`
	HasPendingAdminRequest bool      `json:"has_pending_admin_request"`
}

// Can reports whether a holder of role r is granted cap. The policy table is
// static and total over the role set.
func (r Role) Can(cap Capability) bool {
	switch r {
	case RoleUser:
		return cap == CapViewTable || cap == CapDoAnalysis
	case RoleAdmin:
		return cap == CapViewTable || cap == CapDoAnalysis || cap == CapManageScanning
	case RoleOwner:
		return cap == CapViewTable || cap == CapDoAnalysis || cap == CapManageScanning || cap == CapManageAdmins
	default:
		return false
	}
}

// Require returns ErrPermissionDenied unless id holds cap. A nil identity
// holds no capabilities.
func Require(id *Identity, cap Capability) error {
	if id == nil {
		return ErrUnauthenticated
	}
	if !id.Role.Can(cap) {
		return ErrPermissionDenied
	}
	return nil
}
