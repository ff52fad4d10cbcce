package models

import (
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActorSystem is recorded when an audit entry has no actor role.
const ActorSystem = "SYSTEM"

// Audit actions.
const (
	ActionApproveProperty = "APPROVE_PROPERTY"
	ActionRejectProperty  = "REJECT_PROPERTY"
	ActionDeleteProperty  = "DELETE_PROPERTY"
	ActionAdminLogin      = "ADMIN_LOGIN"
)

// Audit entities.
const (
	EntityProperty = "Property"
	EntityUser     = "User"
)

var ErrAuditImmutable = errors.New("audit log rows are immutable")

// AuditLog records an administrative action. Rows are append-only.
type AuditLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `gorm:"index" json:"createdAt"`
	ActorID   *uint          `gorm:"index" json:"actorId"`
	ActorRole string         `gorm:"size:20;not null" json:"actorRole"`
	Action    string         `gorm:"size:50;not null;index" json:"action"`
	Entity    string         `gorm:"size:50;not null" json:"entity"`
	EntityID  uint           `gorm:"index" json:"entityId"`
	Metadata  datatypes.JSON `json:"metadata,omitempty"`
	IPAddress *string        `gorm:"size:64" json:"ipAddress,omitempty"`
}

func (*AuditLog) BeforeUpdate(*gorm.DB) error { return ErrAuditImmutable }

func (*AuditLog) BeforeDelete(*gorm.DB) error { return ErrAuditImmutable }
