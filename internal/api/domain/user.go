package domain

import "time"

// Global roles. Distinct from tenant roles: these gate service-wide routes,
// tenant roles gate a single workspace.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID    string
	Email string // opaque unique key; stored exactly as given, no normalization

	// PasswordHash is the argon2 encoded credential. Default store lookups
	// leave it empty; only GetUserByEmailWithSecrets populates it.
	PasswordHash string

	Roles    []string // parsed from space-delimited storage
	IsActive bool

	// RefreshTokenHash is the argon2 digest of the user's current refresh
	// token. nil means no active session: refresh is impossible until the
	// next login. Populated only by the WithSecrets lookup.
	RefreshTokenHash *string

	// BillingCustomerID is the payment processor's customer id, set once the
	// user has been provisioned.
	BillingCustomerID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
