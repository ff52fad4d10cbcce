package policy

import (
	"context"

	"github.com/sammiepius/homelink-backend/internal/models"
)

type ctxKey int

const (
	userCtxKey ctxKey = iota
	resourceCtxKey
)

// WithUser stores the resolved caller on the context.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, userCtxKey, u)
}

// UserFromContext returns the caller resolved by RequireUser.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(userCtxKey).(*models.User)
	return u, ok && u != nil
}

// WithResource stores a resource loaded by RequireOwnership.
func WithResource(ctx context.Context, r any) context.Context {
	return context.WithValue(ctx, resourceCtxKey, r)
}

// ResourceFrom returns the resource loaded by RequireOwnership.
func ResourceFrom[T any](ctx context.Context) (T, bool) {
	r, ok := ctx.Value(resourceCtxKey).(T)
	return r, ok
}
