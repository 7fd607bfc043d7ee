package domain

import (
	"errors"
	"time"
)

// TenantRole is a role scoped to a single tenant's membership list. There is
// deliberately no crossover with the global roles: a global ADMIN has no
// implicit standing inside a tenant.
type TenantRole string

const (
	TenantRoleOwner  TenantRole = "OWNER"
	TenantRoleAdmin  TenantRole = "ADMIN"
	TenantRoleEditor TenantRole = "EDITOR"
	TenantRoleViewer TenantRole = "VIEWER"
)

// ErrUnknownTenantRole reports a role string outside the known set.
var ErrUnknownTenantRole = errors.New("domain: unknown tenant role")

// ParseTenantRole validates a role string from a request body.
func ParseTenantRole(s string) (TenantRole, error) {
	switch TenantRole(s) {
	case TenantRoleOwner, TenantRoleAdmin, TenantRoleEditor, TenantRoleViewer:
		return TenantRole(s), nil
	default:
		return "", ErrUnknownTenantRole
	}
}

type Tenant struct {
	ID        string
	Name      string // unique across the service
	CreatedBy string // user id of the creator (initial OWNER)
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Membership ties a user to a tenant with a tenant-local role.
type Membership struct {
	TenantID  string
	UserID    string
	Role      TenantRole
	CreatedAt time.Time
}

// Join request lifecycle.
const (
	JoinRequestPending  = "PENDING"
	JoinRequestApproved = "APPROVED"
	JoinRequestRejected = "REJECTED"
)

// JoinRequest is a user's petition to join a tenant. At most one pending
// request exists per (tenant, user) pair.
type JoinRequest struct {
	ID        string
	TenantID  string
	UserID    string
	Status    string
	Message   string // optional free-text note from the requester
	CreatedAt time.Time
	UpdatedAt time.Time
}
