package main

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sammiepius/homelink-backend/gate"
	"github.com/sammiepius/homelink-backend/internal/handlers"
	"github.com/sammiepius/homelink-backend/internal/middleware"
	"github.com/sammiepius/homelink-backend/internal/models"
	"github.com/sammiepius/homelink-backend/internal/policy"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	routerCfg *handlers.RouterConfig
	handler   http.Handler
}

// NewApp creates the application with all routes and middleware configured.
// Metrics are registered on reg and served from /metrics.
func NewApp(routerCfg *handlers.RouterConfig, log *zap.Logger, reg *prometheus.Registry) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{Registerer: reg})
	if err != nil {
		return nil, fmt.Errorf("http metrics: %w", err)
	}

	app := &App{
		mux:       http.NewServeMux(),
		routerCfg: routerCfg,
	}
	app.setupRoutes()
	app.mux.Handle("GET /metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	// Logging and metrics wrap the mux directly so they see the matched pattern.
	app.handler = middleware.Chain(app.mux,
		middleware.RequestID,
		middleware.Recover(log),
		middleware.CORS(nil),
		metrics.Handler,
		middleware.Logging(log),
	)
	return app, nil
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	ag := a.routerCfg.AuthGate
	user := ag.RequireUser
	landlord := func(h http.HandlerFunc) http.Handler {
		return user(ag.RequireRole(models.RoleLandlord)(h))
	}
	tenant := func(h http.HandlerFunc) http.Handler {
		return user(ag.RequireRole(models.RoleTenant)(h))
	}
	admin := func(h http.HandlerFunc) http.Handler {
		return user(ag.RequireAdmin()(h))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// Ops
	// ─────────────────────────────────────────────────────────────────────────
	hh := a.routerCfg.HealthHandler
	a.mux.HandleFunc("GET /{$}", hh.Banner)
	a.mux.HandleFunc("GET /healthz", hh.Healthz)

	// ─────────────────────────────────────────────────────────────────────────
	// Auth
	// ─────────────────────────────────────────────────────────────────────────
	ah := a.routerCfg.AuthHandler
	a.mux.HandleFunc("POST /api/auth/signup", ah.Signup)
	a.mux.HandleFunc("POST /api/auth/login", ah.Login)
	a.mux.HandleFunc("POST /api/auth/admin-login", ah.AdminLogin)
	a.mux.Handle("GET /api/auth/me", user(http.HandlerFunc(ah.Me)))
	a.mux.Handle("PUT /api/auth/update", user(http.HandlerFunc(ah.UpdateProfile)))
	a.mux.Handle("PUT /api/auth/change-password", user(http.HandlerFunc(ah.ChangePassword)))

	// ─────────────────────────────────────────────────────────────────────────
	// Properties (owner routes load the listing and check ownership once)
	// ─────────────────────────────────────────────────────────────────────────
	ph := a.routerCfg.PropertyHandler
	props := a.routerCfg.Properties
	owned := func(action gate.Action, h http.HandlerFunc) http.Handler {
		ownership := policy.RequireOwnership(ag, policy.ResourceProperty, action, props.Load)
		return user(ag.RequireRole(models.RoleLandlord)(ownership(h)))
	}
	a.mux.HandleFunc("GET /api/properties", ph.List)
	a.mux.Handle("POST /api/properties/add", landlord(ph.Create))
	a.mux.Handle("GET /api/properties/my-property", landlord(ph.Mine))
	a.mux.HandleFunc("GET /api/properties/{id}", ph.Get)
	a.mux.Handle("PUT /api/properties/update/{id}", owned(gate.ActionUpdate, ph.Update))
	a.mux.Handle("DELETE /api/properties/{id}/image", owned(gate.ActionUpdate, ph.RemoveImage))
	a.mux.Handle("DELETE /api/properties/{id}", owned(gate.ActionDelete, ph.Delete))
	a.mux.Handle("PATCH /api/properties/{id}/toggle-active", owned(gate.ActionUpdate, ph.ToggleActive))

	// ─────────────────────────────────────────────────────────────────────────
	// Favorites
	// ─────────────────────────────────────────────────────────────────────────
	fh := a.routerCfg.FavoriteHandler
	a.mux.Handle("GET /api/favorite", tenant(fh.List))
	a.mux.Handle("POST /api/favorite/{propertyId}", tenant(fh.Add))
	a.mux.Handle("DELETE /api/favorite/{propertyId}", tenant(fh.Remove))
	a.mux.Handle("GET /api/favorite/{propertyId}/status", tenant(fh.Status))

	// ─────────────────────────────────────────────────────────────────────────
	// Contact & upload
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.HandleFunc("POST /api/contact", a.routerCfg.ContactHandler.Submit)
	a.mux.Handle("POST /api/upload",
		user(ag.RequireRole(models.RoleLandlord, models.RoleAdmin)(http.HandlerFunc(a.routerCfg.UploadHandler.Upload))))

	// ─────────────────────────────────────────────────────────────────────────
	// Admin routes (require an admin session token)
	// ─────────────────────────────────────────────────────────────────────────
	adh := a.routerCfg.AdminHandler
	a.mux.Handle("GET /api/admin/stats", admin(adh.Stats))
	a.mux.Handle("GET /api/admin/adminstats", admin(adh.Overview))
	a.mux.Handle("GET /api/admin/charts", admin(adh.Charts))
	a.mux.Handle("GET /api/admin/users", admin(adh.Users))
	a.mux.Handle("GET /api/admin/properties", admin(adh.Properties))
	a.mux.Handle("PATCH /api/admin/property/{id}/approve", admin(adh.Approve))
	a.mux.Handle("PATCH /api/admin/property/{id}/reject", admin(adh.Reject))
	a.mux.Handle("DELETE /api/admin/property/{id}/delete", admin(adh.DeleteProperty))
	a.mux.Handle("GET /api/admin/audit-logs", admin(adh.AuditLogs))
	a.mux.Handle("GET /api/admin/recent-activity", admin(adh.RecentActivity))
	a.mux.Handle("GET /api/admin/messages", admin(adh.Messages))
}
