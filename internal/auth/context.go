package auth

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the authenticated caller carried by a verified token.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity stored by WithIdentity.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
