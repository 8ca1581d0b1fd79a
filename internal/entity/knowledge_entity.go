package entity

import "github.com/google/uuid"

// KnowledgeEntry is one question/answer/tags record used for automated
// matching. Entries are immutable for the lifetime of a loaded snapshot.
type KnowledgeEntry struct {
	Id       uuid.UUID
	Question string
	Answer   string
	Tags     []string
}
