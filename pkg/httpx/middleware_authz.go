package httpx

import (
	"net/http"
	"slices"
)

// RoleAdmin is the privileged global role. Every role-gated route is
// implicitly "or ADMIN": the bypass is checked explicitly, before the
// intersection test, so it stays visible and independently testable.
const RoleAdmin = "ADMIN"

// IsPrivileged reports whether the identity carries the global ADMIN role.
func IsPrivileged(id Identity) bool {
	return slices.Contains(id.Roles, RoleAdmin)
}

// AllowedByRoles is the role-guard decision function. An empty requirement
// always allows. A privileged identity always passes. Otherwise at least one
// of the identity's roles must appear in the required set.
func AllowedByRoles(id Identity, required []string) bool {
	if len(required) == 0 {
		return true
	}
	if IsPrivileged(id) {
		return true
	}
	for _, have := range id.Roles {
		if slices.Contains(required, have) {
			return true
		}
	}
	return false
}

// RequireAnyRole declares the route's required global roles. An empty
// requirement is a no-op regardless of identity. When roles are required, the
// guard reads the pre-authenticated identity; a request that never passed
// authentication is rejected outright.
func RequireAnyRole(required ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(required) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			id, ok := IdentityFromContext(r.Context())
			if !ok {
				WriteError(w, http.StatusForbidden, "forbidden")
				return
			}

			if !AllowedByRoles(id, required) {
				WriteError(w, http.StatusForbidden, "forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
