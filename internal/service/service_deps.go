package service

import (
	"context"

	"github.com/google/uuid"

	"support-chat-be/pkg/events"
)

// EventPublisher is the durable event sink (NATS JetStream in production).
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// SessionPusher delivers realtime payloads to websocket clients attached to a
// session (and to the operator console). Satisfied by websocket.Hub.
type SessionPusher interface {
	SendToSession(sessionId uuid.UUID, payloadType string, payload interface{})
	BroadcastOperators(payloadType string, payload interface{})
}
