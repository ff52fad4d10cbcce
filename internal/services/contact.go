package services

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/sammiepius/homelink-backend/internal/logger"
	"github.com/sammiepius/homelink-backend/internal/models"
	"github.com/sammiepius/homelink-backend/validation"
)

type ContactInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

// ContactService stores contact form submissions.
type ContactService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewContactService(db *gorm.DB, log *zap.Logger) *ContactService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContactService{db: db, log: log}
}

func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*models.ContactMessage, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)

	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, 255, v)
	validation.Required("email", in.Email, v)
	validation.Email("email", in.Email, v)
	validation.Required("message", in.Message, v)
	validation.MaxLen("message", in.Message, 5000, v)
	validation.MaxLen("phone", in.Phone, 50, v)
	if !v.Empty() {
		return nil, Invalid(v)
	}

	msg := models.ContactMessage{Name: in.Name, Email: in.Email, Message: in.Message}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		msg.Phone = &phone
	}
	if err := s.db.WithContext(ctx).Create(&msg).Error; err != nil {
		return nil, Upstream("save contact message", err)
	}
	logger.WithContext(ctx, s.log).Info("contact message received",
		zap.Uint("message_id", msg.ID), zap.String("email", logger.MaskEmail(msg.Email)))
	return &msg, nil
}

// List returns messages newest first.
func (s *ContactService) List(ctx context.Context, page Page) (PageResult[models.ContactMessage], error) {
	p := page.Normalize()
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.ContactMessage{}).Count(&total).Error; err != nil {
		return PageResult[models.ContactMessage]{}, Upstream("count messages", err)
	}
	var rows []models.ContactMessage
	err := s.db.WithContext(ctx).Order("created_at DESC, id DESC").
		Limit(p.Limit).Offset(p.Offset()).Find(&rows).Error
	if err != nil {
		return PageResult[models.ContactMessage]{}, Upstream("list messages", err)
	}
	return newPageResult(rows, total, p), nil
}
