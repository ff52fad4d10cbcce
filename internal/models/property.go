package models

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"gorm.io/datatypes"

	"github.com/sammiepius/homelink-backend/validation"
)

// MaxPropertyImages bounds the images list of a single property.
const MaxPropertyImages = 10

// Moderation transition errors.
var (
	ErrAlreadyApproved = errors.New("property already approved")
	ErrAlreadyRejected = errors.New("property already rejected")
	ErrNotApproved     = errors.New("property is not approved")
	ErrRejected        = errors.New("property was rejected")
)

// ModerationState is derived from the approved and rejected flags.
type ModerationState string

const (
	StatePending  ModerationState = "pending"
	StateApproved ModerationState = "approved"
	StateRejected ModerationState = "rejected"
)

// Property is a listing owned by a landlord.
// IsActive implies Approved and not Rejected; the transition methods below
// are the only writers of the three flags.
type Property struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time                   `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
	Title       string                      `gorm:"size:255;not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	Price       float64                     `gorm:"type:decimal(12,2);not null" json:"price"`
	Location    string                      `gorm:"size:255;not null;index" json:"location"`
	Type        string                      `gorm:"size:100;not null;index" json:"type"`
	Bedrooms    *int                        `json:"bedrooms,omitempty"`
	Bathrooms   *int                        `json:"bathrooms,omitempty"`
	Images      datatypes.JSONSlice[string] `json:"images"`
	LandlordID  uint                        `gorm:"not null;index" json:"landlordId"`
	Landlord    *User                       `gorm:"foreignKey:LandlordID" json:"landlord,omitempty"`
	Approved    bool                        `gorm:"not null" json:"approved"`
	Rejected    bool                        `gorm:"not null" json:"rejected"`
	IsActive    bool                        `gorm:"not null;index" json:"isActive"`
}

// GetOwnerID implements the policy Ownable interface.
func (p *Property) GetOwnerID() uint {
	return p.LandlordID
}

func (p *Property) State() ModerationState {
	switch {
	case p.Rejected:
		return StateRejected
	case p.Approved:
		return StateApproved
	default:
		return StatePending
	}
}

// Approve moves a pending property to approved. Re-approving a rejected
// property is allowed and clears the rejection; isActive is left untouched.
func (p *Property) Approve() error {
	if p.Approved {
		return ErrAlreadyApproved
	}
	p.Approved = true
	p.Rejected = false
	return nil
}

// Reject forces the rejected state, deactivating the listing even when it
// was approved.
func (p *Property) Reject() error {
	if !p.Approved && p.Rejected {
		return ErrAlreadyRejected
	}
	p.Approved = false
	p.Rejected = true
	p.IsActive = false
	return nil
}

// SetActive sets the visibility flag. Only approved, non-rejected
// properties can change it.
func (p *Property) SetActive(active bool) error {
	if !p.Approved {
		return ErrNotApproved
	}
	if p.Rejected {
		return ErrRejected
	}
	p.IsActive = active
	return nil
}

func (p *Property) ToggleActive() error {
	return p.SetActive(!p.IsActive)
}

// HasImage reports whether u is in the images list.
func (p *Property) HasImage(u string) bool {
	for _, img := range p.Images {
		if img == u {
			return true
		}
	}
	return false
}

// WithoutImage returns the images list minus u, preserving order.
func (p *Property) WithoutImage(u string) []string {
	out := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		if img != u {
			out = append(out, img)
		}
	}
	return out
}

// ValidateImages checks an images list at the write boundary.
func ValidateImages(images []string, v validation.Violations) {
	if len(images) > MaxPropertyImages {
		v["images"] = fmt.Sprintf("at most %d images", MaxPropertyImages)
		return
	}
	seen := make(map[string]struct{}, len(images))
	for i, img := range images {
		field := fmt.Sprintf("images[%d]", i)
		u, err := url.Parse(img)
		if img == "" || err != nil || !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			v[field] = "invalid_url"
			continue
		}
		if _, dup := seen[img]; dup {
			v[field] = "duplicate"
			continue
		}
		seen[img] = struct{}{}
	}
}
