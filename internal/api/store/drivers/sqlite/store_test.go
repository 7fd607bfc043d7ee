package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atriumhq/atrium/internal/api/domain"
	"github.com/atriumhq/atrium/internal/api/store"
	"github.com/atriumhq/atrium/pkg/idx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedUser(t *testing.T, s *Store, email string) domain.User {
	t.Helper()

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		Roles:        []string{domain.RoleUser},
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	require.NoError(t, s.Users().CreateUser(context.Background(), u))
	return u
}

func TestUsersRepo(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "alice@example.com")

	t.Run("default lookup excludes secrets", func(t *testing.T) {
		got, err := s.Users().GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
		require.Empty(t, got.PasswordHash)
		require.Nil(t, got.RefreshTokenHash)
		require.Equal(t, []string{domain.RoleUser}, got.Roles)
	})

	t.Run("secrets lookup includes credential material", func(t *testing.T) {
		got, err := s.Users().GetUserByEmailWithSecrets(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, u.PasswordHash, got.PasswordHash)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		dup := u
		dup.ID = idx.New().String()
		err := s.Users().CreateUser(ctx, dup)
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("unknown email is not found", func(t *testing.T) {
		_, err := s.Users().GetUserByEmailWithSecrets(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestRefreshTokenHashRotation(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "bob@example.com")

	require.NoError(t, s.Users().SetRefreshTokenHash(ctx, u.ID, "hash-1"))

	got, err := s.Users().GetUserByEmailWithSecrets(ctx, u.Email)
	require.NoError(t, err)
	require.NotNil(t, got.RefreshTokenHash)
	require.Equal(t, "hash-1", *got.RefreshTokenHash)

	// CAS succeeds when the expected value matches.
	require.NoError(t, s.Users().RotateRefreshTokenHash(ctx, u.ID, "hash-1", "hash-2"))

	// A second rotation against the superseded value loses the race.
	err = s.Users().RotateRefreshTokenHash(ctx, u.ID, "hash-1", "hash-3")
	require.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Users().ClearRefreshTokenHash(ctx, u.ID))
	got, err = s.Users().GetUserByEmailWithSecrets(ctx, u.Email)
	require.NoError(t, err)
	require.Nil(t, got.RefreshTokenHash)
}

func TestTenantsRepo(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner@example.com")
	member := seedUser(t, s, "member@example.com")

	tenant := domain.Tenant{
		ID:        idx.New().String(),
		Name:      "acme",
		CreatedBy: owner.ID,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.Tenants().CreateTenant(ctx, tenant))

	t.Run("duplicate name rejected", func(t *testing.T) {
		dup := tenant
		dup.ID = idx.New().String()
		require.ErrorIs(t, s.Tenants().CreateTenant(ctx, dup), store.ErrAlreadyExists)
	})

	require.NoError(t, s.Tenants().AddMember(ctx, domain.Membership{
		TenantID: tenant.ID, UserID: owner.ID, Role: domain.TenantRoleOwner, CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, s.Tenants().AddMember(ctx, domain.Membership{
		TenantID: tenant.ID, UserID: member.ID, Role: domain.TenantRoleViewer, CreatedAt: time.Now().UTC(),
	}))

	t.Run("membership list and role counts", func(t *testing.T) {
		members, err := s.Tenants().ListMembers(ctx, tenant.ID)
		require.NoError(t, err)
		require.Len(t, members, 2)

		owners, err := s.Tenants().CountMembersWithRole(ctx, tenant.ID, domain.TenantRoleOwner)
		require.NoError(t, err)
		require.EqualValues(t, 1, owners)
	})

	t.Run("list tenants for user", func(t *testing.T) {
		tenants, err := s.Tenants().ListTenantsForUser(ctx, member.ID)
		require.NoError(t, err)
		require.Len(t, tenants, 1)
		require.Equal(t, "acme", tenants[0].Name)
	})

	t.Run("role update and removal", func(t *testing.T) {
		require.NoError(t, s.Tenants().UpdateMemberRole(ctx, tenant.ID, member.ID, domain.TenantRoleEditor))
		m, err := s.Tenants().GetMembership(ctx, tenant.ID, member.ID)
		require.NoError(t, err)
		require.Equal(t, domain.TenantRoleEditor, m.Role)

		require.NoError(t, s.Tenants().RemoveMember(ctx, tenant.ID, member.ID))
		_, err = s.Tenants().GetMembership(ctx, tenant.ID, member.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("delete cascades memberships", func(t *testing.T) {
		require.NoError(t, s.Tenants().DeleteTenant(ctx, tenant.ID))
		_, err := s.Tenants().GetMembership(ctx, tenant.ID, owner.ID)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestJoinRequestsRepo(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner@example.com")
	applicant := seedUser(t, s, "applicant@example.com")

	tenant := domain.Tenant{
		ID: idx.New().String(), Name: "acme", CreatedBy: owner.ID,
		CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.Tenants().CreateTenant(ctx, tenant))

	jr := domain.JoinRequest{
		ID:       idx.New().String(),
		TenantID: tenant.ID,
		UserID:   applicant.ID,
		Status:   domain.JoinRequestPending,
		Message:  "let me in",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.JoinRequests().CreateJoinRequest(ctx, jr))

	t.Run("second pending request rejected", func(t *testing.T) {
		dup := jr
		dup.ID = idx.New().String()
		require.ErrorIs(t, s.JoinRequests().CreateJoinRequest(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("lookup by id", func(t *testing.T) {
		got, err := s.JoinRequests().GetJoinRequestByID(ctx, jr.ID)
		require.NoError(t, err)
		require.Equal(t, applicant.ID, got.UserID)
		require.Equal(t, domain.JoinRequestPending, got.Status)
	})

	t.Run("status filter", func(t *testing.T) {
		pending, err := s.JoinRequests().ListJoinRequestsByTenant(ctx, tenant.ID, domain.JoinRequestPending)
		require.NoError(t, err)
		require.Len(t, pending, 1)

		approved, err := s.JoinRequests().ListJoinRequestsByTenant(ctx, tenant.ID, domain.JoinRequestApproved)
		require.NoError(t, err)
		require.Empty(t, approved)
	})

	t.Run("resolve allows a fresh pending request", func(t *testing.T) {
		require.NoError(t, s.JoinRequests().UpdateJoinRequestStatus(ctx, jr.ID, domain.JoinRequestRejected))

		fresh := jr
		fresh.ID = idx.New().String()
		require.NoError(t, s.JoinRequests().CreateJoinRequest(ctx, fresh))
	})

	t.Run("purge removes only stale resolved requests", func(t *testing.T) {
		// jr is rejected, the fresh one is still pending.
		n, err := s.JoinRequests().DeleteResolvedJoinRequestsBefore(ctx, time.Now().UTC().Add(time.Hour))
		require.NoError(t, err)
		require.EqualValues(t, 1, n)

		all, err := s.JoinRequests().ListJoinRequestsByTenant(ctx, tenant.ID, "")
		require.NoError(t, err)
		require.Len(t, all, 1)
		require.Equal(t, domain.JoinRequestPending, all[0].Status)
	})
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, s, "owner@example.com")
	tenantID := idx.New().String()

	err := s.WithTx(ctx, func(tx store.Store) error {
		if err := tx.Tenants().CreateTenant(ctx, domain.Tenant{
			ID: tenantID, Name: "doomed", CreatedBy: owner.ID,
			CreatedAt: time.Now().UTC(), UpdatedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
		return context.Canceled
	})
	require.ErrorIs(t, err, context.Canceled)

	_, err = s.Tenants().GetTenantByID(ctx, tenantID)
	require.ErrorIs(t, err, store.ErrNotFound)
}
