package models

import "time"

// ContactMessage is a public contact form submission. Create-only.
type ContactMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;not null" json:"email"`
	Phone     *string   `gorm:"size:50" json:"phone,omitempty"`
	Message   string    `gorm:"type:text;not null" json:"message"`
}
