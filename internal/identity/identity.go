// Package identity carries the authenticated caller through a request.
//
// Core operations take an Identity explicitly; the context helpers exist
// only so that transport middleware can hand it to handlers.
package identity

import "context"

// Identity is the caller as reported by the identity provider.
type Identity struct {
	UserID string
	Name   string
}

// IsZero reports whether no caller is present.
func (i Identity) IsZero() bool {
	return i.UserID == ""
}

// Owns reports whether the caller is the given owner. Ownership is strict
// identifier equality.
func (i Identity) Owns(ownerID string) bool {
	return !i.IsZero() && i.UserID == ownerID
}

type identityContextKey struct{}

// WithIdentity stores the caller in ctx.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityContextKey{}, id)
}

// FromContext returns the caller stored in ctx, or the zero Identity.
func FromContext(ctx context.Context) Identity {
	if ctx == nil {
		return Identity{}
	}
	id, _ := ctx.Value(identityContextKey{}).(Identity)
	return id
}
