package auth

import "context"

// Identity describes the authenticated requester populated from a verified
// access token.
type Identity struct {
	UserID   string
	Username string
	Email    string
	FullName string
}

type identityKey struct{}

// WithIdentity stores the requester identity on the context.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext retrieves the requester identity, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok && identity.UserID != ""
}
