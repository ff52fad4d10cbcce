package models

import (
	"time"
)

// User represents an account. Users are never hard-deleted.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password     string    `gorm:"size:255;not null" json:"-"` // Hashed, never exposed in JSON
	Role         Role      `gorm:"size:20;not null;index" json:"role"`
	Phone        *string   `gorm:"size:50" json:"phone,omitempty"`
	ProfilePhoto *string   `gorm:"size:1024" json:"profilePhoto,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// UserSummary is the public view of a user returned by auth endpoints.
type UserSummary struct {
	ID           uint    `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Role         Role    `json:"role"`
	Phone        *string `json:"phone,omitempty"`
	ProfilePhoto *string `json:"profilePhoto,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		Phone:        u.Phone,
		ProfilePhoto: u.ProfilePhoto,
	}
}
