package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTL constants. The access token is deliberately short-lived;
// the refresh token is the long-lived session anchor and its server-side hash
// is the sole revocation mechanism.
const (
	// DefaultAccessTokenTTL is the default lifetime for access tokens.
	DefaultAccessTokenTTL = time.Hour

	// DefaultRefreshTokenTTL is the default lifetime for refresh tokens.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims are the token claims shared by access and refresh tokens. Both token
// kinds carry the same payload shape; only the signing secret and lifetime
// differ.
type Claims struct {
	jwt.RegisteredClaims

	// Email of the authenticated user.
	Email string `json:"email,omitempty"`

	// Roles are the user's global roles, e.g. ["USER"] or ["ADMIN"].
	Roles []string `json:"roles,omitempty"`

	// IsActive mirrors the user record's active flag at issuance time.
	IsActive bool `json:"is_active"`
}

// NewClaims builds minimally-correct claims for a user.
func NewClaims(
	subject, email string,
	roles []string,
	isActive bool,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Email:    email,
		Roles:    roles,
		IsActive: isActive,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
