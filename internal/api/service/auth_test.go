package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atriumhq/atrium/internal/api/store"
	"github.com/atriumhq/atrium/internal/api/store/drivers/sqlite"
	"github.com/atriumhq/atrium/pkg/cryptox"
	"github.com/atriumhq/atrium/pkg/jwtx"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "atrium-service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newAuthService(t *testing.T) *AuthService {
	t.Helper()

	opts := jwtx.VerifyOptions{Issuer: "atrium-test"}
	return &AuthService{
		Store:         newTestStore(t),
		AccessSigner:  jwtx.NewHS256([]byte("access-secret"), opts),
		RefreshSigner: jwtx.NewHS256([]byte("refresh-secret"), opts),
		Issuer:        "atrium-test",
		AccessTTL:     jwtx.DefaultAccessTokenTTL,
		RefreshTTL:    jwtx.DefaultRefreshTokenTTL,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()
	svc := newAuthService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "alice@example.com", "hunter2hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.Empty(t, u.PasswordHash, "register must not return credential material")
	require.Equal(t, []string{"USER"}, u.Roles)
	require.True(t, u.IsActive)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, "alice@example.com", "another-password")
		require.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("login issues a verifiable pair", func(t *testing.T) {
		pair, err := svc.Login(ctx, "alice@example.com", "hunter2hunter2")
		require.NoError(t, err)
		require.Equal(t, "Bearer", pair.TokenType)

		claims, err := svc.AccessSigner.Verify(pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, u.ID, claims.Subject)
		require.Equal(t, "alice@example.com", claims.Email)

		// The refresh token only verifies under the refresh secret.
		_, err = svc.AccessSigner.Verify(pair.RefreshToken)
		require.Error(t, err)
		_, err = svc.RefreshSigner.Verify(pair.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice@example.com", "wrong")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email gets the same error", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody@example.com", "hunter2hunter2")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestRefreshRotation(t *testing.T) {
	t.Parallel()
	svc := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "bob@example.com", "correct-horse-battery")
	require.NoError(t, err)

	pair, err := svc.Login(ctx, "bob@example.com", "correct-horse-battery")
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, rotated.RefreshToken)

	t.Run("superseded token is rejected", func(t *testing.T) {
		_, err := svc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("rotated token still works", func(t *testing.T) {
		_, err := svc.Refresh(ctx, rotated.RefreshToken)
		require.NoError(t, err)
	})
}

func TestRefreshFailsClosed(t *testing.T) {
	t.Parallel()
	svc := newAuthService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "carol@example.com", "correct-horse-battery")
	require.NoError(t, err)

	pair, err := svc.Login(ctx, "carol@example.com", "correct-horse-battery")
	require.NoError(t, err)

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Refresh(ctx, "not-a-jwt")
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := svc.Refresh(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})

	t.Run("valid signature but cleared session", func(t *testing.T) {
		require.NoError(t, svc.Logout(ctx, u.ID))
		_, err := svc.Refresh(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidRefresh)
	})
}

func TestLogout(t *testing.T) {
	t.Parallel()
	svc := newAuthService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "dave@example.com", "correct-horse-battery")
	require.NoError(t, err)

	_, err = svc.Login(ctx, "dave@example.com", "correct-horse-battery")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, u.ID))

	// Logout for a nonexistent user reports the failure instead of hiding it.
	err = svc.Logout(ctx, "01K00000000000000000000000")
	require.ErrorIs(t, err, store.ErrNotFound)
}
