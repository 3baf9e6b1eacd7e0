package auth

import "context"

type contextKey string

const identityContextKey contextKey = "identity"

// Identity is the authenticated subject of a request.
type Identity struct {
	Email string
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, id)
}

// IdentityFrom returns the request identity; ok is false for anonymous requests.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityContextKey).(Identity)
	if !ok || id.Email == "" {
		return Identity{}, false
	}
	return id, true
}
