package httpx

import "context"

// Identity is the decoded principal attached to a request after token
// verification. It is read-only to downstream guards and handlers and is
// never persisted.
type Identity struct {
	UserID   string
	Email    string
	Roles    []string
	IsActive bool
}

type ctxKey string

const (
	CtxKeyIdentity ctxKey = "identity"
)

// ContextWithIdentity attaches an authenticated identity to the context.
// Exported for handler tests; production code goes through AuthnMiddleware.
func ContextWithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, CtxKeyIdentity, id)
}

// IdentityFromContext returns the authenticated identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(CtxKeyIdentity).(Identity)
	return id, ok
}
