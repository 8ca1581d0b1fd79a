package entity

import (
	"time"

	"github.com/google/uuid"
)

// Notification is one inbound-event record shown on the operator console or
// the visitor widget. Records are never deleted; only IsRead flips.
type Notification struct {
	Id          uuid.UUID
	TypeCode    string
	Viewer      string
	Title       string
	Description string

	// EntityId points at the source of the event, e.g. the chat session
	// a message arrived in.
	EntityId *uuid.UUID

	Metadata  map[string]interface{}
	IsRead    bool
	ReadAt    *time.Time
	CreatedAt time.Time
}
