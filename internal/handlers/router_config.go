package handlers

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sammiepius/homelink-backend/auth"
	"github.com/sammiepius/homelink-backend/internal/blob"
	"github.com/sammiepius/homelink-backend/internal/config"
	"github.com/sammiepius/homelink-backend/internal/policy"
	"github.com/sammiepius/homelink-backend/internal/services"
)

// RouterConfig holds the configured services, handlers and authorization
// middleware of the application.
type RouterConfig struct {
	// AuthGate resolves callers and guards routes by role and ownership
	AuthGate *policy.AuthGate

	// Services
	Users      *services.UserService
	Properties *services.PropertyService
	Favorites  *services.FavoriteService
	Contacts   *services.ContactService
	Audit      *services.AuditService
	Admin      *services.AdminService

	// Handlers
	AuthHandler     *AuthHandler
	PropertyHandler *PropertyHandler
	FavoriteHandler *FavoriteHandler
	ContactHandler  *ContactHandler
	UploadHandler   *UploadHandler
	AdminHandler    *AdminHandler
	HealthHandler   *HealthHandler
}

// NewRouterConfig wires the token issuer, the property gate, every service
// and every handler.
func NewRouterConfig(cfg *config.Config, db *gorm.DB, blobs blob.Store, log *zap.Logger) *RouterConfig {
	if log == nil {
		log = zap.NewNop()
	}
	issuer := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	propertyGate := policy.NewPropertyGate()

	audit := services.NewAuditService(db, log)
	users := services.NewUserService(db, issuer, services.SessionTTL{
		Token:      cfg.Auth.TokenTTL,
		AdminToken: cfg.Auth.AdminTokenTTL,
	}, blobs, audit, log)
	props := services.NewPropertyService(db, propertyGate, blobs, audit, log)
	favs := services.NewFavoriteService(db)
	contacts := services.NewContactService(db, log)
	admin := services.NewAdminService(db)

	return &RouterConfig{
		AuthGate:        policy.NewAuthGate(issuer, users, propertyGate, log),
		Users:           users,
		Properties:      props,
		Favorites:       favs,
		Contacts:        contacts,
		Audit:           audit,
		Admin:           admin,
		AuthHandler:     NewAuthHandler(users, cfg.Upload, log),
		PropertyHandler: NewPropertyHandler(props),
		FavoriteHandler: NewFavoriteHandler(favs),
		ContactHandler:  NewContactHandler(contacts),
		UploadHandler:   NewUploadHandler(blobs, cfg.Upload, log),
		AdminHandler:    NewAdminHandler(admin, props, audit, contacts),
		HealthHandler:   NewHealthHandler(db, log),
	}
}
