package contract

import (
	"context"
	"time"

	"support-chat-be/internal/entity"
	"support-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatSessionRepository interface {
	// CreateIfAbsent inserts the session unless one already exists for its
	// device token. It reports whether this call created the row; on a
	// conflict the existing session is loaded into the argument instead,
	// so the caller always ends up holding the winner.
	CreateIfAbsent(ctx context.Context, session *entity.ChatSession) (bool, error)

	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error)

	// MarkLive is the one-way handoff applied as a conditional update:
	// it only fires while the session is still in bot status. Reports
	// whether the row actually changed.
	MarkLive(ctx context.Context, id uuid.UUID) (bool, error)

	// Close transitions bot|live to closed. Closed stays closed.
	Close(ctx context.Context, id uuid.UUID) (bool, error)

	SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error

	// TouchActivity refreshes the list-ordering fields after a message
	// append.
	TouchActivity(ctx context.Context, id uuid.UUID, preview string, at time.Time) error
}
