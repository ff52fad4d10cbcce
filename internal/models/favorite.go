package models

import "time"

// Favorite links a user to a saved property. (UserID, PropertyID) is unique.
type Favorite struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_favorite_user_property" json:"userId"`
	PropertyID uint      `gorm:"not null;uniqueIndex:idx_favorite_user_property;index" json:"propertyId"`
	Property   *Property `gorm:"foreignKey:PropertyID" json:"property,omitempty"`
}
