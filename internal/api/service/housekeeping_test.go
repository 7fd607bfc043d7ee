package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atriumhq/atrium/internal/api/domain"
)

func TestHousekeepingLifecycle(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)

	owner := seedUser(t, st, "owner@example.com")
	applicant := seedUser(t, st, "applicant@example.com")

	tenants := &TenantService{Store: st}
	ctx := context.Background()

	tenant, err := tenants.CreateTenant(ctx, "acme", owner.ID)
	require.NoError(t, err)

	jr, err := tenants.RequestJoin(ctx, tenant.ID, applicant.ID, "")
	require.NoError(t, err)
	_, err = tenants.ResolveJoinRequest(ctx, tenant.ID, jr.ID, false, domain.TenantRoleViewer)
	require.NoError(t, err)

	hk := NewHousekeepingService(st, slog.Default(), 50*time.Millisecond, time.Nanosecond)
	hk.Start()
	hk.Stop()

	// The startup cleanup runs before Start returns control to the ticker, but
	// give it the full Stop round trip before asserting.
	remaining, err := st.JoinRequests().ListJoinRequestsByTenant(ctx, tenant.ID, "")
	require.NoError(t, err)
	require.Empty(t, remaining)
}

func TestHousekeepingDefaults(t *testing.T) {
	t.Parallel()

	hk := NewHousekeepingService(newTestStore(t), slog.Default(), 0, 0)
	require.Equal(t, time.Hour, hk.Interval)
	require.Equal(t, DefaultJoinRequestRetention, hk.Retention)
}
