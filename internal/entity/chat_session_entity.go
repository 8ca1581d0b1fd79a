package entity

import (
	"time"

	"github.com/google/uuid"
)

// VisitorIdentity carries everything the widget knows about the person
// typing. DeviceToken is generated once per browser and persisted locally;
// Email is a secondary correlation key so a visitor who cleared local state
// can resume their session.
type VisitorIdentity struct {
	DeviceToken string
	DisplayName string
	Email       string
}

type ChatSession struct {
	Id          uuid.UUID
	DeviceToken string
	Email       string
	DisplayName string
	Status      string

	// Escalated is append-only: it flips to true the moment the session
	// leaves bot status and is never reset, so a stale status read can
	// never re-enable auto-replies.
	Escalated bool

	Pinned             bool
	LastMessagePreview string
	LastUpdatedAt      time.Time
	CreatedAt          time.Time
}

// AutoReplyAllowed reports whether the bot may still answer in this session.
func (s *ChatSession) AutoReplyAllowed() bool {
	return s.Status == "bot" && !s.Escalated
}
