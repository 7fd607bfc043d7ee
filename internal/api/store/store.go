// Package store defines the persistence boundary for the service. Drivers
// live under store/drivers and satisfy these interfaces; services depend only
// on this package.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/atriumhq/atrium/internal/api/domain"
)

// Sentinel errors every driver maps its backend's failures onto.
var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root persistence handle.
type Store interface {
	Users() Users
	Tenants() Tenants
	JoinRequests() JoinRequests

	// ApplyMigrations brings the schema up to date. Safe to call on every
	// startup.
	ApplyMigrations() error

	// WithTx runs fn inside a transaction. The transactional Store passed to
	// fn exposes the same repositories bound to that transaction. A non-nil
	// error from fn rolls back; otherwise the transaction commits.
	WithTx(ctx context.Context, fn func(Store) error) error

	Ping(ctx context.Context) error
	Close() error
}

// Users is the user repository. Lookups come in two flavors: the default ones
// never return credential material, the WithSecrets variant does. Handlers
// and most services use the default ones so a secret can't leak by accident.
type Users interface {
	CreateUser(ctx context.Context, u domain.User) error
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmailWithSecrets additionally populates PasswordHash and
	// RefreshTokenHash. Only the auth service calls this.
	GetUserByEmailWithSecrets(ctx context.Context, email string) (domain.User, error)

	ListUsers(ctx context.Context) ([]domain.User, error)

	// SetRefreshTokenHash unconditionally replaces the stored refresh digest
	// (login path).
	SetRefreshTokenHash(ctx context.Context, userID, hash string) error

	// RotateRefreshTokenHash swaps the stored digest from expectedCurrent to
	// next in one statement. Returns ErrNotFound when the stored digest no
	// longer equals expectedCurrent, which is how a lost refresh race
	// surfaces.
	RotateRefreshTokenHash(ctx context.Context, userID, expectedCurrent, next string) error

	// ClearRefreshTokenHash removes the digest, ending the session (logout).
	ClearRefreshTokenHash(ctx context.Context, userID string) error

	SetBillingCustomerID(ctx context.Context, userID, customerID string) error
	ClearBillingCustomerID(ctx context.Context, userID string) error
}

// Tenants covers tenants and their membership lists.
type Tenants interface {
	CreateTenant(ctx context.Context, t domain.Tenant) error
	GetTenantByID(ctx context.Context, id string) (domain.Tenant, error)
	ListTenantsForUser(ctx context.Context, userID string) ([]domain.Tenant, error)
	UpdateTenantName(ctx context.Context, id, name string) error
	DeleteTenant(ctx context.Context, id string) error

	AddMember(ctx context.Context, m domain.Membership) error
	GetMembership(ctx context.Context, tenantID, userID string) (domain.Membership, error)
	ListMembers(ctx context.Context, tenantID string) ([]domain.Membership, error)
	UpdateMemberRole(ctx context.Context, tenantID, userID string, role domain.TenantRole) error
	RemoveMember(ctx context.Context, tenantID, userID string) error

	// CountMembersWithRole backs the last-owner protection.
	CountMembersWithRole(ctx context.Context, tenantID string, role domain.TenantRole) (int64, error)
}

// JoinRequests is the join-request repository.
type JoinRequests interface {
	CreateJoinRequest(ctx context.Context, jr domain.JoinRequest) error
	GetJoinRequestByID(ctx context.Context, id string) (domain.JoinRequest, error)

	// ListJoinRequestsByTenant filters by status when status is non-empty.
	ListJoinRequestsByTenant(ctx context.Context, tenantID, status string) ([]domain.JoinRequest, error)

	UpdateJoinRequestStatus(ctx context.Context, id, status string) error
	DeleteJoinRequest(ctx context.Context, id string) error

	// DeleteResolvedJoinRequestsBefore purges approved and rejected requests
	// last touched before cutoff. Returns the number of rows removed.
	DeleteResolvedJoinRequestsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
