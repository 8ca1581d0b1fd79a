package model

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChatSessionId uuid.UUID `gorm:"type:uuid;not null;index"`
	Author        string    `gorm:"type:varchar(10);not null"`
	Text          string    `gorm:"type:text;not null"`

	// Seq and CreatedAt are both assigned by the database. Ordering is
	// (created_at, seq); client clocks never participate.
	Seq       int64     `gorm:"autoIncrement;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP;index"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
