package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doGuarded(t *testing.T, guard Middleware, id *Identity) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if id != nil {
		req = req.WithContext(ContextWithIdentity(req.Context(), *id))
	}

	rec := httptest.NewRecorder()
	Chain(okHandler(), guard).ServeHTTP(rec, req)
	return rec
}

func TestRequireAnyRole(t *testing.T) {
	t.Parallel()

	t.Run("user role rejected for admin route", func(t *testing.T) {
		rec := doGuarded(t, RequireAnyRole("ADMIN"), &Identity{UserID: "u1", Roles: []string{"USER"}})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("admin allowed on admin route", func(t *testing.T) {
		rec := doGuarded(t, RequireAnyRole("ADMIN"), &Identity{UserID: "u1", Roles: []string{"ADMIN"}})
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("admin bypasses unrelated requirement", func(t *testing.T) {
		// Every role-gated route is implicitly "or ADMIN".
		rec := doGuarded(t, RequireAnyRole("AUDITOR"), &Identity{UserID: "u1", Roles: []string{"ADMIN"}})
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("matching non-admin role allowed", func(t *testing.T) {
		rec := doGuarded(t, RequireAnyRole("AUDITOR", "SUPPORT"), &Identity{UserID: "u1", Roles: []string{"SUPPORT"}})
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("no declared roles always allows", func(t *testing.T) {
		rec := doGuarded(t, RequireAnyRole(), &Identity{UserID: "u1", Roles: nil})
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("empty requirement allows even without identity", func(t *testing.T) {
		rec := doGuarded(t, RequireAnyRole(), nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("no identity is forbidden when roles required", func(t *testing.T) {
		rec := doGuarded(t, RequireAnyRole("USER"), nil)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestIsPrivileged(t *testing.T) {
	t.Parallel()

	require.True(t, IsPrivileged(Identity{Roles: []string{"USER", "ADMIN"}}))
	require.False(t, IsPrivileged(Identity{Roles: []string{"USER"}}))
	require.False(t, IsPrivileged(Identity{}))
}
