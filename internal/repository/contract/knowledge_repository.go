package contract

import (
	"context"

	"support-chat-be/internal/entity"
)

type KnowledgeRepository interface {
	// FindAllOrdered returns every entry in its curated position order.
	// The scorer relies on this order for deterministic tie-breaking.
	FindAllOrdered(ctx context.Context) ([]*entity.KnowledgeEntry, error)
	Create(ctx context.Context, entry *entity.KnowledgeEntry, position int) error
}
