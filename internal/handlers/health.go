package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sammiepius/homelink-backend/httpx"
	"github.com/sammiepius/homelink-backend/internal/db"
	"github.com/sammiepius/homelink-backend/internal/logger"
)

const pingTimeout = 2 * time.Second

type HealthHandler struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewHealthHandler(dbConn *gorm.DB, log *zap.Logger) *HealthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &HealthHandler{db: dbConn, log: log}
}

func (h *HealthHandler) Banner(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, MessageResponse{Message: "HomeLink API is running..."})
}

// Healthz pings the database; a failure reports 503 without details.
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()
	if err := db.Ping(ctx, h.db); err != nil {
		logger.WithContext(r.Context(), h.log).Warn("health check failed", zap.Error(err))
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
