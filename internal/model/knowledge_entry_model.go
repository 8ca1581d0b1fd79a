package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type KnowledgeEntry struct {
	Id        uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Question  string                      `gorm:"type:text;not null"`
	Answer    string                      `gorm:"type:text;not null"`
	Tags      datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	Position  int                         `gorm:"not null;default:0;index"`
	CreatedAt time.Time                   `gorm:"autoCreateTime"`
}

func (KnowledgeEntry) TableName() string {
	return "knowledge_entries"
}
