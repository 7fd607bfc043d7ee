package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
)

// Signer signs claims into a compact JWT.
type Signer interface {
	Sign(Claims) (string, error)
}

// Verifier validates a JWT and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

// VerifyOptions captures common expectations used by verifiers.
type VerifyOptions struct {
	// Issuer the token must have (claims.iss). Empty means "don't care".
	Issuer string

	// Leeway allows small clock skew when validating exp/nbf. The default is
	// zero: no extra tolerance beyond exact wall-clock comparison.
	Leeway time.Duration
}

// HS256 signs and verifies tokens with a single shared secret. The service
// holds two instances: one keyed with the access secret and one keyed with the
// distinct refresh secret, so a refresh token never verifies as an access
// token or vice versa.
type HS256 struct {
	secret []byte
	opts   VerifyOptions
}

// NewHS256 builds a signer/verifier around the given secret.
func NewHS256(secret []byte, opts VerifyOptions) *HS256 {
	return &HS256{secret: secret, opts: opts}
}

// Sign produces a compact HS256-signed JWT for the claims.
func (h *HS256) Sign(c Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return tok.SignedString(h.secret)
}

// Verify parses and validates a compact JWT against the secret. Signature,
// expiry, not-before and (when configured) issuer are all enforced. Errors are
// mapped to the package sentinels so callers can collapse or branch on them
// without touching the underlying library.
func (h *HS256) Verify(token string) (Claims, error) {
	var claims Claims

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(h.opts.Leeway),
		jwt.WithExpirationRequired(),
	}
	if h.opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(h.opts.Issuer))
	}

	tok, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return h.secret, nil
	}, parserOpts...)
	if err != nil {
		return Claims{}, mapParseError(err)
	}
	if !tok.Valid {
		return Claims{}, ErrInvalidSig
	}

	return claims, nil
}

func mapParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return ErrNotYetValid
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSig
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrIssuer
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ErrMalformed
	default:
		return ErrMalformed
	}
}
