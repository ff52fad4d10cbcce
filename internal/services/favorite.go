package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sammiepius/homelink-backend/internal/models"
)

// FavoriteService manages saved listings.
type FavoriteService struct {
	db *gorm.DB
}

func NewFavoriteService(db *gorm.DB) *FavoriteService {
	return &FavoriteService{db: db}
}

// Add saves propertyID for userID and returns the favorite with its
// property.
func (s *FavoriteService) Add(ctx context.Context, userID, propertyID uint) (*models.Favorite, error) {
	db := s.db.WithContext(ctx)

	var property models.Property
	if err := db.First(&property, propertyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, Upstream("load property", err)
	}

	exists, err := s.Status(ctx, userID, propertyID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAlreadyExists
	}

	fav := models.Favorite{UserID: userID, PropertyID: propertyID}
	if err := db.Create(&fav).Error; err != nil {
		// a concurrent add can pass the existence check
		if isDuplicate(err) {
			return nil, ErrAlreadyExists
		}
		return nil, Upstream("add favorite", err)
	}
	fav.Property = &property
	return &fav, nil
}

// Remove deletes the pair, or reports ErrFavoriteNotFound.
func (s *FavoriteService) Remove(ctx context.Context, userID, propertyID uint) error {
	res := s.db.WithContext(ctx).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Delete(&models.Favorite{})
	if res.Error != nil {
		return Upstream("remove favorite", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

// Status reports whether the pair exists.
func (s *FavoriteService) Status(ctx context.Context, userID, propertyID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ? AND property_id = ?", userID, propertyID).
		Count(&count).Error
	if err != nil {
		return false, Upstream("favorite status", err)
	}
	return count > 0, nil
}

// List returns the user's favorites with properties, newest first.
func (s *FavoriteService) List(ctx context.Context, userID uint) ([]models.Favorite, error) {
	favs := []models.Favorite{}
	err := s.db.WithContext(ctx).Preload("Property").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&favs).Error
	if err != nil {
		return nil, Upstream("list favorites", err)
	}
	return favs, nil
}
