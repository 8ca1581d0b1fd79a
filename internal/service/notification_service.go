package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"support-chat-be/internal/constant"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/pkg/mailer"
	"support-chat-be/internal/pkg/serverutils"
	"support-chat-be/internal/repository/contract"
	"support-chat-be/internal/repository/specification"
	"support-chat-be/pkg/dedup"
	"support-chat-be/pkg/events"
	pkgnats "support-chat-be/pkg/nats"
)

// EventSubscriber attaches durable handlers to the event stream. Satisfied
// by the NATS subscriber; tests feed events to the handlers directly.
type EventSubscriber interface {
	Subscribe(subject string, durableName string, handler pkgnats.EventHandler) error
}

type UnreadCounts struct {
	Chat  int64 `json:"chat"`
	Lead  int64 `json:"lead"`
	Total int64 `json:"total"`
}

type INotificationService interface {
	Start() error

	// OnChatMessage records a notification for one stored message, keyed
	// by the dedup cursor of the receiving viewer. Safe to call more than
	// once for the same message.
	OnChatMessage(ctx context.Context, sessionId uuid.UUID, author string, text string, seq int64) error

	List(ctx context.Context, viewer string) ([]*entity.Notification, error)
	CountUnread(ctx context.Context, viewer string) (UnreadCounts, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkAllRead(ctx context.Context, viewer string) error
}

type NotificationServiceImpl struct {
	notifications contract.NotificationRepository
	sessions      contract.ChatSessionRepository
	eventsSub     EventSubscriber
	visitorCursors  dedup.CursorStore
	operatorCursors dedup.CursorStore
	pusher        SessionPusher
	mail          mailer.IEmailService
	leadAlertEmail string
	logger        logger.ILogger
}

func NewNotificationService(
	notifications contract.NotificationRepository,
	sessions contract.ChatSessionRepository,
	eventsSub EventSubscriber,
	visitorCursors dedup.CursorStore,
	operatorCursors dedup.CursorStore,
	pusher SessionPusher,
	mail mailer.IEmailService,
	leadAlertEmail string,
	log logger.ILogger,
) *NotificationServiceImpl {
	return &NotificationServiceImpl{
		notifications:   notifications,
		sessions:        sessions,
		eventsSub:       eventsSub,
		visitorCursors:  visitorCursors,
		operatorCursors: operatorCursors,
		pusher:          pusher,
		mail:            mail,
		leadAlertEmail:  leadAlertEmail,
		logger:          log,
	}
}

func (s *NotificationServiceImpl) Start() error {
	if s.eventsSub == nil {
		s.logger.Warn("NOTIFICATION", "no event subscriber configured, worker idle", nil)
		return nil
	}
	if err := s.eventsSub.Subscribe("events."+events.TypeChatMessageCreated, "notifier-chat", s.handleChatMessageEvent); err != nil {
		return err
	}
	if err := s.eventsSub.Subscribe("events."+events.TypeLeadQuoteSubmitted, "notifier-lead-quote", s.handleLeadEvent); err != nil {
		return err
	}
	if err := s.eventsSub.Subscribe("events."+events.TypeLeadContactSubmitted, "notifier-lead-contact", s.handleLeadEvent); err != nil {
		return err
	}
	s.logger.Info("NOTIFICATION", "worker subscribed to event stream", nil)
	return nil
}

func (s *NotificationServiceImpl) handleChatMessageEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	sessionId, err := uuid.Parse(stringField(payload, "session_id"))
	if err != nil {
		s.logger.Warn("NOTIFICATION", "chat event without valid session_id", map[string]interface{}{"error": err.Error()})
		return nil
	}
	seq := int64Field(payload, "seq")
	author := stringField(payload, "author")
	text := stringField(payload, "text")
	return s.OnChatMessage(ctx, sessionId, author, text, seq)
}

func (s *NotificationServiceImpl) OnChatMessage(ctx context.Context, sessionId uuid.UUID, author string, text string, seq int64) error {
	viewer, cursors := s.receiverOf(author)
	if viewer == "" {
		return nil
	}

	last, err := cursors.Last(ctx, sessionId, viewer)
	if err != nil {
		return err
	}
	if seq <= last {
		return nil
	}

	session, err := s.sessions.FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return err
	}
	title := "New message"
	if viewer == constant.ViewerOperator && session != nil && session.DisplayName != "" {
		title = fmt.Sprintf("New message from %s", session.DisplayName)
	}

	id := sessionId
	notification := &entity.Notification{
		Id:          uuid.New(),
		TypeCode:    constant.NotificationTypeChat,
		Viewer:      viewer,
		Title:       title,
		Description: entity.PreviewOf(text),
		EntityId:    &id,
		Metadata: map[string]interface{}{
			"author": author,
			"seq":    seq,
		},
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return err
	}

	// The cursor only moves after the record is durably stored. A crash
	// between the two re-runs this handler on redelivery.
	if err := cursors.Advance(ctx, sessionId, viewer, seq); err != nil {
		s.logger.Warn("NOTIFICATION", "failed to advance dedup cursor", map[string]interface{}{
			"session_id": sessionId,
			"viewer":     viewer,
			"error":      err.Error(),
		})
	}

	s.push(viewer, sessionId, notification)
	return nil
}

func (s *NotificationServiceImpl) handleLeadEvent(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	leadId, err := uuid.Parse(stringField(payload, "lead_id"))
	if err != nil {
		s.logger.Warn("NOTIFICATION", "lead event without valid lead_id", map[string]interface{}{"error": err.Error()})
		return nil
	}

	typeCode := constant.NotificationTypeLeadQuote
	kind := "quote"
	if event.EventType() == events.TypeLeadContactSubmitted {
		typeCode = constant.NotificationTypeLeadContact
		kind = "contact"
	}

	// Lead events carry no sequence number; dedup is a lookup on the
	// lead's id instead of a cursor.
	existing, err := s.notifications.FindAll(ctx,
		specification.Filter("entity_id", leadId),
		specification.ByTypeCodes{Codes: []string{typeCode}},
	)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	name := stringField(payload, "name")
	summary := stringField(payload, "summary")
	notification := &entity.Notification{
		Id:          uuid.New(),
		TypeCode:    typeCode,
		Viewer:      constant.ViewerOperator,
		Title:       fmt.Sprintf("New %s lead: %s", kind, name),
		Description: entity.PreviewOf(summary),
		EntityId:    &leadId,
		Metadata:    payload,
	}
	if err := s.notifications.Create(ctx, notification); err != nil {
		return err
	}

	if s.mail != nil && s.leadAlertEmail != "" {
		if err := s.mail.SendLeadAlert(s.leadAlertEmail, kind, name, summary); err != nil {
			s.logger.Warn("NOTIFICATION", "failed to send lead alert email", map[string]interface{}{"error": err.Error()})
		}
	}

	if s.pusher != nil {
		s.pusher.BroadcastOperators("notification", notification)
	}
	return nil
}

func (s *NotificationServiceImpl) List(ctx context.Context, viewer string) ([]*entity.Notification, error) {
	return s.notifications.FindAll(ctx,
		specification.ByViewer{Viewer: viewer},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
}

func (s *NotificationServiceImpl) CountUnread(ctx context.Context, viewer string) (UnreadCounts, error) {
	chat, err := s.notifications.CountUnread(ctx, viewer, []string{constant.NotificationTypeChat})
	if err != nil {
		return UnreadCounts{}, err
	}
	lead, err := s.notifications.CountUnread(ctx, viewer, []string{
		constant.NotificationTypeLeadQuote,
		constant.NotificationTypeLeadContact,
	})
	if err != nil {
		return UnreadCounts{}, err
	}
	return UnreadCounts{Chat: chat, Lead: lead, Total: chat + lead}, nil
}

func (s *NotificationServiceImpl) MarkRead(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return serverutils.BadRequestError("notification id is required")
	}
	return s.notifications.MarkAsRead(ctx, id)
}

func (s *NotificationServiceImpl) MarkAllRead(ctx context.Context, viewer string) error {
	return s.notifications.MarkAllAsRead(ctx, viewer)
}

// receiverOf maps a message author to the viewer class that should be
// notified. A viewer is never notified about its own class of author.
func (s *NotificationServiceImpl) receiverOf(author string) (string, dedup.CursorStore) {
	switch author {
	case constant.MessageAuthorVisitor:
		return constant.ViewerOperator, s.operatorCursors
	case constant.MessageAuthorBot, constant.MessageAuthorHuman:
		return constant.ViewerVisitor, s.visitorCursors
	default:
		return "", nil
	}
}

func (s *NotificationServiceImpl) push(viewer string, sessionId uuid.UUID, notification *entity.Notification) {
	if s.pusher == nil {
		return
	}
	if viewer == constant.ViewerOperator {
		s.pusher.BroadcastOperators("notification", notification)
		return
	}
	s.pusher.SendToSession(sessionId, "notification", notification)
}

func stringField(payload map[string]interface{}, key string) string {
	v, _ := payload[key].(string)
	return v
}

// int64Field tolerates the float64 that JSON decoding produces for numbers.
func int64Field(payload map[string]interface{}, key string) int64 {
	switch v := payload[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

var _ INotificationService = (*NotificationServiceImpl)(nil)
