package common

import (
	"context"

	"github.com/sngm3741/store-rating-services/api/internal/auth"
)

type contextKey string

const identityContextKey contextKey = "identity"

// ContextWithIdentity stores the verified identity into context.
func ContextWithIdentity(ctx context.Context, identity auth.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext extracts the verified identity from context.
func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(auth.Identity)
	return identity, ok
}
