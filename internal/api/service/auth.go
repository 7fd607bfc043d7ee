package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/atriumhq/atrium/internal/api/domain"
	"github.com/atriumhq/atrium/internal/api/store"
	"github.com/atriumhq/atrium/pkg/cryptox"
	"github.com/atriumhq/atrium/pkg/idx"
	"github.com/atriumhq/atrium/pkg/jwtx"
	"github.com/atriumhq/atrium/pkg/slogx"
)

var (
	ErrEmailTaken         = errors.New("email_taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidRefresh     = errors.New("invalid_refresh_token")
)

// AuthService owns registration, login, refresh rotation, and logout.
//
// AccessSigner and RefreshSigner hold distinct secrets so a refresh token can
// never pass access-token verification or vice versa.
type AuthService struct {
	Store         store.Store
	AccessSigner  *jwtx.HS256
	RefreshSigner *jwtx.HS256
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Register creates a new user with the USER role. The returned user carries
// no credential material.
func (s *AuthService) Register(ctx context.Context, email, password string) (domain.User, error) {
	hash, err := cryptox.HashCredential(password)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: hash,
		Roles:        []string{domain.RoleUser},
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, err
	}

	u.PasswordHash = ""
	return u, nil
}

// Login verifies the credential and issues a fresh token pair, replacing any
// previously stored refresh digest. Every failure mode surfaces as
// ErrInvalidCredentials so responses can't be used to probe which emails
// exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	u, err := s.Store.Users().GetUserByEmailWithSecrets(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !u.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := cryptox.VerifyCredential(password, u.PasswordHash); err != nil {
		if errors.Is(err, cryptox.ErrInvalidCredentialFormat) {
			// A corrupt stored hash fails closed but is worth flagging.
			l.Warn("stored credential hash is malformed", slog.String("user_id", u.ID))
		}
		return nil, ErrInvalidCredentials
	}

	pair, refreshHash, err := s.issueTokens(u, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.Store.Users().SetRefreshTokenHash(ctx, u.ID, refreshHash); err != nil {
		return nil, err
	}

	return pair, nil
}

// Refresh rotates the session: it verifies the presented refresh token
// against both its signature and the stored digest, then atomically swaps the
// digest for the new token's. All failures, including store errors and a lost
// concurrent-rotation race, collapse into ErrInvalidRefresh; the real cause
// is logged.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.RefreshSigner.Verify(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	u, err := s.Store.Users().GetUserByEmailWithSecrets(ctx, claims.Email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			l.Error("refresh user lookup failed", slog.Any("error", err))
		}
		return nil, ErrInvalidRefresh
	}

	if !u.IsActive || u.RefreshTokenHash == nil {
		return nil, ErrInvalidRefresh
	}

	// The token must match the one stored at last login/refresh; an older,
	// already-rotated token fails here.
	if err := cryptox.VerifyCredential(refreshToken, *u.RefreshTokenHash); err != nil {
		return nil, ErrInvalidRefresh
	}

	pair, nextHash, err := s.issueTokens(u, time.Now())
	if err != nil {
		l.Error("refresh token issuance failed", slog.Any("error", err))
		return nil, ErrInvalidRefresh
	}

	if err := s.Store.Users().RotateRefreshTokenHash(ctx, u.ID, *u.RefreshTokenHash, nextHash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// A concurrent refresh won the swap; this request's token is dead.
			l.Info("refresh rotation lost a concurrent race", slog.String("user_id", u.ID))
		} else {
			l.Error("refresh rotation failed", slog.Any("error", err))
		}
		return nil, ErrInvalidRefresh
	}

	return pair, nil
}

// Logout clears the stored refresh digest, ending the session. Errors
// propagate: a failed logout must not look successful to the caller.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	return s.Store.Users().ClearRefreshTokenHash(ctx, userID)
}

// issueTokens signs an access/refresh pair and returns alongside it the
// argon2 digest of the refresh token for storage.
func (s *AuthService) issueTokens(u domain.User, now time.Time) (*domain.TokenPair, string, error) {
	access, err := s.AccessSigner.Sign(jwtx.NewClaims(u.ID, u.Email, u.Roles, u.IsActive, s.AccessTTL, s.Issuer, now))
	if err != nil {
		return nil, "", err
	}

	refresh, err := s.RefreshSigner.Sign(jwtx.NewClaims(u.ID, u.Email, u.Roles, u.IsActive, s.RefreshTTL, s.Issuer, now))
	if err != nil {
		return nil, "", err
	}

	refreshHash, err := cryptox.HashCredential(refresh)
	if err != nil {
		return nil, "", err
	}

	return &domain.TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    s.AccessTTL,
	}, refreshHash, nil
}
