package policy

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/sammiepius/homelink-backend/auth"
	"github.com/sammiepius/homelink-backend/gate"
	"github.com/sammiepius/homelink-backend/httpx"
	"github.com/sammiepius/homelink-backend/internal/logger"
	"github.com/sammiepius/homelink-backend/internal/models"
	"github.com/sammiepius/homelink-backend/internal/services"
)

// UserLoader fetches the caller's row. It returns services.ErrUserNotFound
// when the row is gone.
type UserLoader interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// Loader fetches the resource named by a path id.
type Loader[T any] func(ctx context.Context, id uint) (T, error)

// AuthGate resolves callers from bearer tokens and guards routes by role
// and resource ownership.
type AuthGate struct {
	Gate   *gate.Gate[*models.User]
	issuer *auth.Issuer
	users  UserLoader
	log    *zap.Logger
}

// NewAuthGate wires token verification, user lookup, and the policy gate.
func NewAuthGate(issuer *auth.Issuer, users UserLoader, g *gate.Gate[*models.User], log *zap.Logger) *AuthGate {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthGate{Gate: g, issuer: issuer, users: users, log: log}
}

// Authorize maps gate outcomes to service errors.
func (ag *AuthGate) Authorize(ctx context.Context, user *models.User, action gate.Action, resourceType string, resource any) error {
	return services.Authorize(ctx, ag.Gate, user, action, resourceType, resource)
}

// RequireUser verifies the bearer token and loads the caller on every
// request, so role changes apply immediately.
func (ag *AuthGate) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := ag.issuer.FromRequest(r)
		if err != nil {
			if errors.Is(err, auth.ErrNoToken) {
				httpx.Error(w, services.ErrNoToken)
				return
			}
			httpx.Error(w, services.ErrUnauthenticated)
			return
		}

		user, err := ag.users.GetByID(r.Context(), claims.UserID)
		if err != nil {
			if services.KindOf(err) != services.KindUnauthenticated {
				logger.WithContext(r.Context(), ag.log).Error("load caller", zap.Uint("user_id", claims.UserID), zap.Error(err))
			}
			httpx.Error(w, err)
			return
		}

		ctx := auth.WithClaims(r.Context(), claims)
		ctx = WithUser(ctx, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole returns middleware allowing only callers whose role is in
// allowed. It must run after RequireUser.
func (ag *AuthGate) RequireRole(allowed ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				httpx.Error(w, services.ErrUnauthenticated)
				return
			}
			if !models.RoleIn(user.Role, allowed...) {
				httpx.Error(w, services.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin allows admins holding an admin session token.
func (ag *AuthGate) RequireAdmin() func(http.Handler) http.Handler {
	role := ag.RequireRole(models.RoleAdmin)
	return func(next http.Handler) http.Handler {
		return role(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, _ := auth.ClaimsFromContext(r.Context())
			if !claims.IsAdminSession() {
				httpx.Error(w, services.ErrNotAdminSession)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// PathID parses a positive integer path value.
func PathID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || id == 0 {
		return 0, services.InvalidField(name, "invalid_id")
	}
	return uint(id), nil
}

// RequireOwnership loads the resource named by the {id} path value,
// authorizes action on it, and stores it for ResourceFrom. It must run
// after RequireUser.
func RequireOwnership[T any](ag *AuthGate, resourceType string, action gate.Action, load Loader[T]) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				httpx.Error(w, services.ErrUnauthenticated)
				return
			}
			id, err := PathID(r, "id")
			if err != nil {
				httpx.Error(w, err)
				return
			}
			res, err := load(r.Context(), id)
			if err != nil {
				httpx.Error(w, err)
				return
			}
			if err := ag.Authorize(r.Context(), user, action, resourceType, res); err != nil {
				if services.KindOf(err) == services.KindUnknown {
					logger.WithContext(r.Context(), ag.log).Error("authorize", zap.String("resource", resourceType), zap.Error(err))
				}
				httpx.Error(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithResource(r.Context(), res)))
		})
	}
}
