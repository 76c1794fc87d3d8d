package shared

import "context"

type identityContextKey struct{}

// ContextWithIdentity stores the verified caller identity in context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the caller identity from context.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}

// EmailFromContext returns the verified caller email, or "" when the caller
// was not identified.
func EmailFromContext(ctx context.Context) string {
	if id := IdentityFromContext(ctx); id != nil {
		return id.Email
	}
	return ""
}
