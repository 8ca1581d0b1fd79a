package events

import "github.com/google/uuid"

// In-process bus topics (watermill gochannel). These carry the low-latency
// signals inside one instance: the bot responder's inbox and the per-session
// message-stream change feed. Durable cross-process traffic goes over NATS.
const (
	TopicVisitorMessages = "chat.visitor.messages"
	TopicSessionEvents   = "chat.session.events"

	topicSessionPrefix = "chat.session.messages."
)

// SessionMessagesTopic is the change feed for one session's message list.
// Payloads are advisory; subscribers refetch and re-sort the full list.
func SessionMessagesTopic(sessionId uuid.UUID) string {
	return topicSessionPrefix + sessionId.String()
}

type VisitorMessagePayload struct {
	SessionId uuid.UUID `json:"session_id"`
	MessageId uuid.UUID `json:"message_id"`
	Seq       int64     `json:"seq"`
	Text      string    `json:"text"`
}

type SessionEventPayload struct {
	SessionId uuid.UUID `json:"session_id"`
	Status    string    `json:"status"`
}
