package services

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sammiepius/homelink-backend/internal/logger"
	"github.com/sammiepius/homelink-backend/internal/models"
)

const (
	DefaultRecentActivity = 10
	MaxRecentActivity     = 50
)

// AuditEntry describes one administrative action to record.
type AuditEntry struct {
	ActorID   *uint
	ActorRole string
	Action    string
	Entity    string
	EntityID  uint
	Metadata  map[string]any
	IP        string
}

// AuditFilter narrows the audit log listing.
type AuditFilter struct {
	Action string
	Search string
	Page
}

// AuditService appends to and reads the audit log.
type AuditService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewAuditService(db *gorm.DB, log *zap.Logger) *AuditService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuditService{db: db, log: log}
}

// Record writes e outside any caller transaction. Failures are logged and
// swallowed; the triggering action has already committed.
func (s *AuditService) Record(ctx context.Context, e AuditEntry) {
	row := models.AuditLog{
		ActorID:   e.ActorID,
		ActorRole: e.ActorRole,
		Action:    e.Action,
		Entity:    e.Entity,
		EntityID:  e.EntityID,
	}
	if row.ActorRole == "" {
		row.ActorRole = models.ActorSystem
	}
	if e.IP != "" {
		ip := e.IP
		row.IPAddress = &ip
	}
	log := logger.WithContext(ctx, s.log).With(
		zap.String("action", e.Action),
		zap.String("entity", e.Entity),
		zap.Uint("entity_id", e.EntityID),
	)
	if len(e.Metadata) > 0 {
		raw, err := json.Marshal(e.Metadata)
		if err != nil {
			log.Warn("audit metadata dropped", zap.Error(err))
		} else {
			row.Metadata = datatypes.JSON(raw)
		}
	}

	if err := s.db.WithContext(context.WithoutCancel(ctx)).Create(&row).Error; err != nil {
		log.Error("audit write failed", zap.Error(err))
	}
}

// List returns audit rows newest first, filtered by exact action and a
// case-insensitive substring of the metadata.
func (s *AuditService) List(ctx context.Context, f AuditFilter) (PageResult[models.AuditLog], error) {
	p := f.Page.Normalize()
	q := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		q = q.Where("LOWER(CAST(metadata AS TEXT)) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return PageResult[models.AuditLog]{}, Upstream("count audit logs", err)
	}
	var rows []models.AuditLog
	if err := q.Order("created_at DESC, id DESC").Limit(p.Limit).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return PageResult[models.AuditLog]{}, Upstream("list audit logs", err)
	}
	return newPageResult(rows, total, p), nil
}

// Recent returns the n newest rows, n clamped to [1, MaxRecentActivity].
// Zero selects the default.
func (s *AuditService) Recent(ctx context.Context, n int) ([]models.AuditLog, error) {
	switch {
	case n == 0:
		n = DefaultRecentActivity
	case n < 1:
		n = 1
	case n > MaxRecentActivity:
		n = MaxRecentActivity
	}
	rows := []models.AuditLog{}
	if err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(n).Find(&rows).Error; err != nil {
		return nil, Upstream("recent activity", err)
	}
	return rows, nil
}
