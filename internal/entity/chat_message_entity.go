package entity

import (
	"time"

	"github.com/google/uuid"
)

type ChatMessage struct {
	Id            uuid.UUID
	ChatSessionId uuid.UUID
	Author        string
	Text          string

	// Seq is assigned by the store on insert and breaks ordering ties
	// between messages that share a timestamp.
	Seq       int64
	CreatedAt time.Time
}

const previewLimit = 120

// PreviewOf truncates message text for the session list preview.
func PreviewOf(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLimit {
		return text
	}
	return string(runes[:previewLimit]) + "…"
}
