package auth

import (
	"context"

	"github.com/masar-hq/masar/engine/auth/user"
)

type userCtxKey struct{}

// WithUser returns a context carrying the authenticated user
func WithUser(ctx context.Context, u *user.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, u)
}

// UserFromContext returns the authenticated user, or nil when the request is
// unauthenticated.
func UserFromContext(ctx context.Context) *user.User {
	if u, ok := ctx.Value(userCtxKey{}).(*user.User); ok {
		return u
	}
	return nil
}
