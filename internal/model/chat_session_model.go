package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatSession struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	// DeviceToken is the compare-and-create key: the unique index is what
	// turns concurrent session creation into a single conditional write.
	DeviceToken string `gorm:"type:varchar(100);not null;uniqueIndex:ux_chat_sessions_device_token"`

	// The partial unique index keeps "at most one session per email"
	// honest even when two devices race to create with the same email.
	Email string `gorm:"type:varchar(255);uniqueIndex:ux_chat_sessions_email,where:email <> ''"`
	DisplayName string `gorm:"type:varchar(100)"`

	Status    string `gorm:"type:varchar(10);not null;default:'bot'"`
	Escalated bool   `gorm:"not null;default:false"`
	Pinned    bool   `gorm:"not null;default:false"`

	LastMessagePreview string    `gorm:"type:text"`
	LastUpdatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
	CreatedAt          time.Time `gorm:"autoCreateTime"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}
