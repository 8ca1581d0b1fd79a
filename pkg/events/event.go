package events

import "time"

// Event type codes carried on the bus.
const (
	TypeChatMessageCreated  = "CHAT_MESSAGE_CREATED"
	TypeChatSessionLive     = "CHAT_SESSION_LIVE"
	TypeLeadQuoteSubmitted  = "LEAD_QUOTE_SUBMITTED"
	TypeLeadContactSubmitted = "LEAD_CONTACT_SUBMITTED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event.
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// New builds an event with the current time.
func New(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
}
