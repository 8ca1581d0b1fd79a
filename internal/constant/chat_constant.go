package constant

import "time"

const (
	// Session lifecycle. A session never returns to StatusBot once it has
	// left it; see the Escalated flag on the session entity.
	SessionStatusBot    = "bot"
	SessionStatusLive   = "live"
	SessionStatusClosed = "closed"

	// Message authors.
	MessageAuthorBot     = "bot"
	MessageAuthorVisitor = "visitor"
	MessageAuthorHuman   = "human"

	// Notification type codes. "chat" groups under the chat category,
	// the two lead codes group under "lead" for unread aggregation.
	NotificationTypeChat        = "chat"
	NotificationTypeLeadQuote   = "lead-quote"
	NotificationTypeLeadContact = "lead-contact"

	NotificationCategoryChat = "chat"
	NotificationCategoryLead = "lead"

	// Viewer classes for notification dedup. A viewer is never notified of
	// messages authored by its own class of actor.
	ViewerVisitor  = "visitor"
	ViewerOperator = "operator"

	// Scoring weights for the keyword matcher.
	ScoreTokenMatch = 2
	ScoreFullQuery  = 4

	// Typing pacing. Base delay plus a per-rune increment, capped so long
	// answers don't stall the conversation.
	TypingBaseDelay    = 900 * time.Millisecond
	TypingPerRuneDelay = 35 * time.Millisecond
	TypingMaxDelay     = 4 * time.Second

	EscalationMessage = "I couldn't find a good answer for that. Let me connect you with a member of our team."
)

// HandoffPhrases trigger an immediate handoff when contained in a visitor
// message, before any knowledge-base scoring.
var HandoffPhrases = []string{"human", "agent", "talk to"}
