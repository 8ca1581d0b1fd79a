package contract

import (
	"context"

	"support-chat-be/internal/entity"
	"support-chat-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChatMessageRepository interface {
	// Append inserts a message. Timestamp and sequence number are assigned
	// by the store, never taken from the caller.
	Append(ctx context.Context, message *entity.ChatMessage) error

	// AppendHumanReply inserts a human-authored message and forces the
	// session to live status in the same transaction, so a human message
	// is never visible alongside a session that still allows auto-replies.
	AppendHumanReply(ctx context.Context, sessionId uuid.UUID, message *entity.ChatMessage) error

	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
