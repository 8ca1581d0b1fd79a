package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByChatSessionID struct {
	ChatSessionID uuid.UUID
}

func (s ByChatSessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_session_id = ?", s.ChatSessionID)
}

type ByDeviceToken struct {
	DeviceToken string
}

func (s ByDeviceToken) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("device_token = ?", s.DeviceToken)
}

type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

type PinnedOnly struct{}

func (s PinnedOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("pinned = ?", true)
}

// ConsoleOrder sorts the operator session list: pinned threads first, then
// most recent activity.
type ConsoleOrder struct{}

func (s ConsoleOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("pinned DESC").Order("last_updated_at DESC")
}

// MessageOrder is the canonical message ordering: store-assigned timestamp
// ascending, insertion order (seq) breaking ties.
type MessageOrder struct{}

func (s MessageOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC").Order("seq ASC")
}

type ByViewer struct {
	Viewer string
}

func (s ByViewer) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("viewer = ?", s.Viewer)
}

type UnreadOnly struct{}

func (s UnreadOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_read = ?", false)
}

type ByTypeCodes struct {
	Codes []string
}

func (s ByTypeCodes) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("type_code IN ?", s.Codes)
}
