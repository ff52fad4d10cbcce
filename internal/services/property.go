package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sammiepius/homelink-backend/gate"
	"github.com/sammiepius/homelink-backend/internal/blob"
	"github.com/sammiepius/homelink-backend/internal/logger"
	"github.com/sammiepius/homelink-backend/internal/models"
	"github.com/sammiepius/homelink-backend/validation"
)

// PropertyInput carries listing fields. Nil fields are left unchanged on
// update; Images, when set, replaces the whole list.
type PropertyInput struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"`
	Location    *string   `json:"location"`
	Type        *string   `json:"type"`
	Bedrooms    *int      `json:"bedrooms"`
	Bathrooms   *int      `json:"bathrooms"`
	Images      *[]string `json:"images"`
}

// MarketplaceFilter narrows the public listing.
type MarketplaceFilter struct {
	Location string
	Type     string
	MinPrice *float64
	MaxPrice *float64
	Bedrooms *int
	Page
}

// AdminPropertyFilter narrows the admin listing by moderation state.
type AdminPropertyFilter struct {
	Status models.ModerationState
	Page
}

// PropertyService owns listings and their moderation.
type PropertyService struct {
	db    *gorm.DB
	gate  *gate.Gate[*models.User]
	blobs blob.Store
	audit *AuditService
	log   *zap.Logger
}

func NewPropertyService(db *gorm.DB, g *gate.Gate[*models.User], blobs blob.Store, audit *AuditService, log *zap.Logger) *PropertyService {
	if log == nil {
		log = zap.NewNop()
	}
	return &PropertyService{db: db, gate: g, blobs: blobs, audit: audit, log: log}
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// Create stores a new pending, inactive listing owned by landlord.
func (s *PropertyService) Create(ctx context.Context, landlord *models.User, in PropertyInput) (*models.Property, error) {
	if landlord == nil {
		return nil, ErrUnauthenticated
	}
	if landlord.Role != models.RoleLandlord {
		return nil, ErrForbidden
	}

	v := make(validation.Violations)
	validation.Required("title", trimmed(in.Title), v)
	validation.MaxLen("title", trimmed(in.Title), 255, v)
	validation.Required("location", trimmed(in.Location), v)
	validation.Required("type", trimmed(in.Type), v)
	if in.Price == nil {
		v["price"] = "required"
	} else {
		validation.PositiveFloat("price", *in.Price, v)
	}
	validation.NonNegativeInt("bedrooms", in.Bedrooms, v)
	validation.NonNegativeInt("bathrooms", in.Bathrooms, v)
	images := []string{}
	if in.Images != nil {
		images = *in.Images
		models.ValidateImages(images, v)
	}
	if !v.Empty() {
		return nil, Invalid(v)
	}

	p := models.Property{
		Title:       trimmed(in.Title),
		Description: trimmed(in.Description),
		Price:       *in.Price,
		Location:    trimmed(in.Location),
		Type:        trimmed(in.Type),
		Bedrooms:    in.Bedrooms,
		Bathrooms:   in.Bathrooms,
		Images:      datatypes.JSONSlice[string](images),
		LandlordID:  landlord.ID,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, Upstream("create property", err)
	}
	logger.WithContext(ctx, s.log).Info("property created", zap.Uint("property_id", p.ID), zap.Uint("landlord_id", landlord.ID))
	return &p, nil
}

// Load fetches a listing without relations.
func (s *PropertyService) Load(ctx context.Context, id uint) (*models.Property, error) {
	var p models.Property
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, Upstream("load property", err)
	}
	return &p, nil
}

// Get fetches any listing by id with its landlord, regardless of state.
func (s *PropertyService) Get(ctx context.Context, id uint) (*models.Property, error) {
	var p models.Property
	if err := s.db.WithContext(ctx).Preload("Landlord").First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, Upstream("load property", err)
	}
	return &p, nil
}

// ListMarketplace returns approved, active listings newest first.
func (s *PropertyService) ListMarketplace(ctx context.Context, f MarketplaceFilter) (PageResult[models.Property], error) {
	p := f.Page.Normalize()
	q := s.db.WithContext(ctx).Model(&models.Property{}).
		Where("approved = ? AND rejected = ? AND is_active = ?", true, false, true)
	if loc := strings.TrimSpace(f.Location); loc != "" {
		q = q.Where("LOWER(location) LIKE ?", "%"+strings.ToLower(loc)+"%")
	}
	if t := strings.TrimSpace(f.Type); t != "" {
		q = q.Where("LOWER(type) = ?", strings.ToLower(t))
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.Bedrooms != nil {
		q = q.Where("bedrooms >= ?", *f.Bedrooms)
	}

	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return PageResult[models.Property]{}, Upstream("count properties", err)
	}
	var rows []models.Property
	err := q.Preload("Landlord").Order("created_at DESC, id DESC").
		Limit(p.Limit).Offset(p.Offset()).Find(&rows).Error
	if err != nil {
		return PageResult[models.Property]{}, Upstream("list properties", err)
	}
	return newPageResult(rows, total, p), nil
}

// ListByLandlord returns every listing of one landlord, newest first.
func (s *PropertyService) ListByLandlord(ctx context.Context, landlordID uint) ([]models.Property, error) {
	rows := []models.Property{}
	err := s.db.WithContext(ctx).Where("landlord_id = ?", landlordID).
		Order("created_at DESC, id DESC").Find(&rows).Error
	if err != nil {
		return nil, Upstream("list landlord properties", err)
	}
	return rows, nil
}

// ListAll is the admin view over every listing.
func (s *PropertyService) ListAll(ctx context.Context, f AdminPropertyFilter) (PageResult[models.Property], error) {
	p := f.Page.Normalize()
	q := s.db.WithContext(ctx).Model(&models.Property{})
	switch f.Status {
	case "":
	case models.StatePending:
		q = q.Where("approved = ? AND rejected = ?", false, false)
	case models.StateApproved:
		q = q.Where("approved = ?", true)
	case models.StateRejected:
		q = q.Where("rejected = ?", true)
	default:
		return PageResult[models.Property]{}, InvalidField("status", "invalid_value")
	}

	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return PageResult[models.Property]{}, Upstream("count properties", err)
	}
	var rows []models.Property
	err := q.Preload("Landlord").Order("created_at DESC, id DESC").
		Limit(p.Limit).Offset(p.Offset()).Find(&rows).Error
	if err != nil {
		return PageResult[models.Property]{}, Upstream("list properties", err)
	}
	return newPageResult(rows, total, p), nil
}

// Update merges the supplied fields. Blobs dropped from the images list are
// deleted best-effort after the row is saved.
func (s *PropertyService) Update(ctx context.Context, actor *models.User, p *models.Property, in PropertyInput) (*models.Property, error) {
	if err := Authorize(ctx, s.gate, actor, gate.ActionUpdate, ResourceProperty, p); err != nil {
		return nil, err
	}

	v := make(validation.Violations)
	if in.Title != nil {
		validation.Required("title", trimmed(in.Title), v)
		validation.MaxLen("title", trimmed(in.Title), 255, v)
	}
	if in.Location != nil {
		validation.Required("location", trimmed(in.Location), v)
	}
	if in.Type != nil {
		validation.Required("type", trimmed(in.Type), v)
	}
	if in.Price != nil {
		validation.PositiveFloat("price", *in.Price, v)
	}
	validation.NonNegativeInt("bedrooms", in.Bedrooms, v)
	validation.NonNegativeInt("bathrooms", in.Bathrooms, v)
	if in.Images != nil {
		models.ValidateImages(*in.Images, v)
	}
	if !v.Empty() {
		return nil, Invalid(v)
	}

	updated := *p
	if in.Title != nil {
		updated.Title = trimmed(in.Title)
	}
	if in.Description != nil {
		updated.Description = trimmed(in.Description)
	}
	if in.Price != nil {
		updated.Price = *in.Price
	}
	if in.Location != nil {
		updated.Location = trimmed(in.Location)
	}
	if in.Type != nil {
		updated.Type = trimmed(in.Type)
	}
	if in.Bedrooms != nil {
		updated.Bedrooms = in.Bedrooms
	}
	if in.Bathrooms != nil {
		updated.Bathrooms = in.Bathrooms
	}
	var dropped []string
	if in.Images != nil {
		keep := make(map[string]bool, len(*in.Images))
		for _, img := range *in.Images {
			keep[img] = true
		}
		for _, img := range p.Images {
			if !keep[img] {
				dropped = append(dropped, img)
			}
		}
		updated.Images = datatypes.JSONSlice[string](append([]string{}, *in.Images...))
	}

	err := s.db.WithContext(ctx).Model(&models.Property{ID: p.ID}).
		Select("title", "description", "price", "location", "type", "bedrooms", "bathrooms", "images").
		Updates(&updated).Error
	if err != nil {
		return nil, Upstream("update property", err)
	}
	s.deleteBlobs(ctx, p.ID, dropped)
	return &updated, nil
}

// RemoveImage drops one image from the list and deletes its blob
// best-effort.
func (s *PropertyService) RemoveImage(ctx context.Context, actor *models.User, p *models.Property, url string) (*models.Property, error) {
	if err := Authorize(ctx, s.gate, actor, gate.ActionUpdate, ResourceProperty, p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(url) == "" {
		return nil, InvalidField("imageUrl", "required")
	}
	if !p.HasImage(url) {
		return nil, ErrImageNotFound
	}

	images := datatypes.JSONSlice[string](p.WithoutImage(url))
	if err := s.db.WithContext(ctx).Model(&models.Property{ID: p.ID}).Update("images", images).Error; err != nil {
		return nil, Upstream("remove image", err)
	}
	p.Images = images
	s.deleteBlobs(ctx, p.ID, []string{url})
	return p, nil
}

// ToggleActive flips visibility of an approved listing.
func (s *PropertyService) ToggleActive(ctx context.Context, actor *models.User, p *models.Property) (*models.Property, error) {
	return s.setActive(ctx, actor, p, !p.IsActive)
}

// SetActive sets visibility of an approved listing explicitly.
func (s *PropertyService) SetActive(ctx context.Context, actor *models.User, p *models.Property, active bool) (*models.Property, error) {
	return s.setActive(ctx, actor, p, active)
}

func (s *PropertyService) setActive(ctx context.Context, actor *models.User, p *models.Property, active bool) (*models.Property, error) {
	if err := Authorize(ctx, s.gate, actor, gate.ActionUpdate, ResourceProperty, p); err != nil {
		return nil, err
	}
	next := *p
	if err := next.SetActive(active); err != nil {
		return nil, transitionErr(err)
	}
	if err := s.saveFlags(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// Delete removes a listing for its owner or an admin. Image blobs are
// deleted best-effort first; favorites and the row go in one transaction.
func (s *PropertyService) Delete(ctx context.Context, actor *models.User, p *models.Property) error {
	if err := Authorize(ctx, s.gate, actor, gate.ActionDelete, ResourceProperty, p); err != nil {
		return err
	}
	s.deleteBlobs(ctx, p.ID, p.Images)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("property_id = ?", p.ID).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Property{}, p.ID).Error
	})
	if err != nil {
		return Upstream("delete property", err)
	}
	logger.WithContext(ctx, s.log).Info("property deleted", zap.Uint("property_id", p.ID), zap.Uint("actor_id", actor.ID))
	return nil
}

// Approve moderates a listing to approved and records the action.
func (s *PropertyService) Approve(ctx context.Context, admin *models.User, id uint, ip string) (*models.Property, error) {
	p, err := s.moderate(ctx, admin, id, func(p *models.Property) error { return p.Approve() })
	if err != nil {
		return nil, err
	}
	s.record(ctx, admin, models.ActionApproveProperty, p, ip, nil)
	return p, nil
}

// Reject moderates a listing to rejected, deactivating it, and records the
// action with the optional reason.
func (s *PropertyService) Reject(ctx context.Context, admin *models.User, id uint, reason, ip string) (*models.Property, error) {
	p, err := s.moderate(ctx, admin, id, func(p *models.Property) error { return p.Reject() })
	if err != nil {
		return nil, err
	}
	var extra map[string]any
	if reason = strings.TrimSpace(reason); reason != "" {
		extra = map[string]any{"reason": reason}
	}
	s.record(ctx, admin, models.ActionRejectProperty, p, ip, extra)
	return p, nil
}

// AdminDelete deletes any listing and records the action.
func (s *PropertyService) AdminDelete(ctx context.Context, admin *models.User, id uint, ip string) error {
	if !admin.IsAdmin() {
		return ErrForbidden
	}
	p, err := s.Load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Delete(ctx, admin, p); err != nil {
		return err
	}
	s.record(ctx, admin, models.ActionDeleteProperty, p, ip, nil)
	return nil
}

func (s *PropertyService) moderate(ctx context.Context, admin *models.User, id uint, transition func(*models.Property) error) (*models.Property, error) {
	if !admin.IsAdmin() {
		return nil, ErrForbidden
	}
	p, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(ctx, s.gate, admin, gate.ActionModerate, ResourceProperty, p); err != nil {
		return nil, err
	}
	if err := transition(p); err != nil {
		return nil, transitionErr(err)
	}
	if err := s.saveFlags(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PropertyService) saveFlags(ctx context.Context, p *models.Property) error {
	err := s.db.WithContext(ctx).Model(&models.Property{ID: p.ID}).
		Select("approved", "rejected", "is_active").
		Updates(map[string]any{"approved": p.Approved, "rejected": p.Rejected, "is_active": p.IsActive}).Error
	if err != nil {
		return Upstream("save moderation state", err)
	}
	return nil
}

func (s *PropertyService) record(ctx context.Context, admin *models.User, action string, p *models.Property, ip string, extra map[string]any) {
	if s.audit == nil {
		return
	}
	meta := map[string]any{"title": p.Title}
	for k, v := range extra {
		meta[k] = v
	}
	s.audit.Record(ctx, AuditEntry{
		ActorID:   &admin.ID,
		ActorRole: string(admin.Role),
		Action:    action,
		Entity:    models.EntityProperty,
		EntityID:  p.ID,
		Metadata:  meta,
		IP:        ip,
	})
}

func (s *PropertyService) deleteBlobs(ctx context.Context, propertyID uint, urls []string) {
	for _, u := range urls {
		if err := s.blobs.Delete(ctx, u); err != nil {
			logger.WithContext(ctx, s.log).Warn("delete property image",
				zap.Uint("property_id", propertyID), zap.String("url", u), zap.Error(err))
		}
	}
}
