package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Notification stores the operator/visitor inbox. Rows are append-only; the
// only mutation ever applied is flipping IsRead.
type Notification struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	TypeCode    string         `gorm:"type:varchar(20);not null;index:idx_notifications_type" json:"type_code"`
	Viewer      string         `gorm:"type:varchar(10);not null;default:'operator';index" json:"viewer"`
	Title       string         `gorm:"type:varchar(200);not null" json:"title"`
	Description string         `gorm:"type:text;not null" json:"description"`
	EntityId    *uuid.UUID     `gorm:"type:uuid;index" json:"entity_id,omitempty"`
	Metadata    datatypes.JSON `gorm:"type:jsonb" json:"metadata,omitempty"`
	IsRead      bool           `gorm:"default:false;index:idx_notifications_unread" json:"is_read"`
	ReadAt      *time.Time     `json:"read_at,omitempty"`
	CreatedAt   time.Time      `gorm:"default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
