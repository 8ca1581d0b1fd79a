package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"support-chat-be/internal/constant"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/pkg/events"
	"support-chat-be/pkg/kb"
	"support-chat-be/pkg/typing"
)

// KnowledgeSource yields the current knowledge-base snapshot.
type KnowledgeSource interface {
	Load(ctx context.Context) *kb.Snapshot
}

type IBotService interface {
	// Start subscribes the responder to the visitor-message and
	// session-event topics. It returns once the subscriptions are live.
	Start(ctx context.Context) error

	// HandleVisitorMessage scores one visitor message and either schedules
	// a delayed reply or escalates. Exposed for the synchronous path and
	// for tests; the bus consumer calls it for every visitor message.
	HandleVisitorMessage(ctx context.Context, sessionId uuid.UUID, text string) error

	// AskedEntries lists knowledge entries already used in a session, so
	// the widget can stop suggesting them.
	AskedEntries(sessionId uuid.UUID) []uuid.UUID

	Stop()
}

type BotServiceImpl struct {
	sessions  ISessionService
	messages  IMessageService
	knowledge KnowledgeSource
	scheduler *typing.Scheduler
	busSub    message.Subscriber
	logger    logger.ILogger

	mu    sync.Mutex
	asked map[uuid.UUID]map[uuid.UUID]bool
}

func NewBotService(
	sessions ISessionService,
	messages IMessageService,
	knowledge KnowledgeSource,
	scheduler *typing.Scheduler,
	busSub message.Subscriber,
	log logger.ILogger,
) *BotServiceImpl {
	return &BotServiceImpl{
		sessions:  sessions,
		messages:  messages,
		knowledge: knowledge,
		scheduler: scheduler,
		busSub:    busSub,
		logger:    log,
		asked:     make(map[uuid.UUID]map[uuid.UUID]bool),
	}
}

func (s *BotServiceImpl) Start(ctx context.Context) error {
	visitorMsgs, err := s.busSub.Subscribe(ctx, events.TopicVisitorMessages)
	if err != nil {
		return err
	}
	sessionEvents, err := s.busSub.Subscribe(ctx, events.TopicSessionEvents)
	if err != nil {
		return err
	}

	go s.consumeVisitorMessages(ctx, visitorMsgs)
	go s.consumeSessionEvents(ctx, sessionEvents)
	s.logger.Info("BOT", "responder started", nil)
	return nil
}

func (s *BotServiceImpl) Stop() {
	s.scheduler.Stop()
}

func (s *BotServiceImpl) consumeVisitorMessages(ctx context.Context, in <-chan *message.Message) {
	for msg := range in {
		var payload events.VisitorMessagePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			s.logger.Warn("BOT", "dropping malformed visitor message payload", map[string]interface{}{"error": err.Error()})
			msg.Ack()
			continue
		}
		if err := s.HandleVisitorMessage(ctx, payload.SessionId, payload.Text); err != nil {
			s.logger.Error("BOT", "failed to handle visitor message", map[string]interface{}{
				"session_id": payload.SessionId,
				"error":      err.Error(),
			})
		}
		msg.Ack()
	}
}

// consumeSessionEvents cancels any pending reply the moment a session leaves
// bot status, so a scheduled answer never lands after a handoff.
func (s *BotServiceImpl) consumeSessionEvents(ctx context.Context, in <-chan *message.Message) {
	for msg := range in {
		var payload events.SessionEventPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			msg.Ack()
			continue
		}
		if payload.Status != constant.SessionStatusBot {
			s.scheduler.Cancel(payload.SessionId)
		}
		msg.Ack()
	}
}

func (s *BotServiceImpl) HandleVisitorMessage(ctx context.Context, sessionId uuid.UUID, text string) error {
	allowed, err := s.sessions.IsAutoReplyAllowed(ctx, sessionId)
	if err != nil {
		return err
	}
	if !allowed {
		return nil
	}

	if containsHandoffPhrase(text) {
		// An explicit request for a human gets no bot reply at all; the
		// apology is reserved for answers the bot failed to find.
		s.logger.Info("BOT", "handoff phrase detected", map[string]interface{}{"session_id": sessionId})
		return s.sessions.Handoff(ctx, sessionId)
	}

	snapshot := s.knowledge.Load(ctx)
	match, score := kb.BestMatch(snapshot.Entries(), text)
	if match == nil || score <= 0 {
		return s.escalate(ctx, sessionId)
	}

	s.markAsked(sessionId, match.Id)
	answer := match.Answer
	s.scheduler.Schedule(sessionId, typing.Delay(len([]rune(answer))), func() {
		s.appendReply(sessionId, answer)
	})
	return nil
}

// appendReply runs when the typing delay elapses. The session state is
// re-read here; the check made at scheduling time is stale by now.
func (s *BotServiceImpl) appendReply(sessionId uuid.UUID, answer string) {
	ctx := context.Background()
	allowed, err := s.sessions.IsAutoReplyAllowed(ctx, sessionId)
	if err != nil {
		s.logger.Error("BOT", "failed to re-check session before reply", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return
	}
	if !allowed {
		s.logger.Info("BOT", "discarding pending reply, session no longer in bot status", map[string]interface{}{"session_id": sessionId})
		return
	}
	if _, err := s.messages.AppendBotReply(ctx, sessionId, answer); err != nil {
		s.logger.Error("BOT", "failed to append reply", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
}

// escalate posts the apology message and hands the session off. The bot goes
// silent from here on; no announcement of the handoff is made to the visitor
// beyond the escalation message itself.
func (s *BotServiceImpl) escalate(ctx context.Context, sessionId uuid.UUID) error {
	if _, err := s.messages.AppendBotReply(ctx, sessionId, constant.EscalationMessage); err != nil {
		return err
	}
	return s.sessions.Handoff(ctx, sessionId)
}

func (s *BotServiceImpl) markAsked(sessionId, entryId uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.asked[sessionId] == nil {
		s.asked[sessionId] = make(map[uuid.UUID]bool)
	}
	s.asked[sessionId][entryId] = true
}

func (s *BotServiceImpl) AskedEntries(sessionId uuid.UUID) []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uuid.UUID, 0, len(s.asked[sessionId]))
	for id := range s.asked[sessionId] {
		ids = append(ids, id)
	}
	return ids
}

func containsHandoffPhrase(text string) bool {
	lowered := strings.ToLower(text)
	for _, phrase := range constant.HandoffPhrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

var _ IBotService = (*BotServiceImpl)(nil)
