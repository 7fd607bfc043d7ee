package http

import (
	"errors"
	"net/http"

	"github.com/atriumhq/atrium/internal/api/domain"
	"github.com/atriumhq/atrium/internal/api/service"
	"github.com/atriumhq/atrium/internal/api/store"
	"github.com/atriumhq/atrium/pkg/httpx"
)

// tenantIDHeader is the fallback tenant selector for routes without a path
// id. When both are present the path wins.
const tenantIDHeader = "X-Tenant-ID"

// tenantIDFromRequest resolves the tenant the request targets.
func tenantIDFromRequest(r *http.Request) string {
	if id := r.PathValue("id"); id != "" {
		return id
	}
	return r.Header.Get(tenantIDHeader)
}

// RequireTenantRole admits only members of the target tenant whose tenant
// role is in the given set. Unlike the global role guard there is no ADMIN
// bypass: a global ADMIN with no membership is turned away like anyone else.
func RequireTenantRole(tenants *service.TenantService, roles ...domain.TenantRole) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// No resolvable tenant means no way to prove membership, so the
			// request is refused like any other non-member's.
			tenantID := tenantIDFromRequest(r)
			if tenantID == "" {
				httpx.WriteError(w, http.StatusForbidden, "forbidden")
				return
			}

			id, ok := httpx.IdentityFromContext(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusForbidden, "forbidden")
				return
			}

			m, err := tenants.GetMembership(r.Context(), tenantID, id.UserID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					httpx.WriteError(w, http.StatusForbidden, "forbidden")
					return
				}
				writeServiceError(w, r, err)
				return
			}

			for _, role := range roles {
				if m.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			httpx.WriteError(w, http.StatusForbidden, "forbidden")
		})
	}
}
