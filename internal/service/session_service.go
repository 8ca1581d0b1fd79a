package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"support-chat-be/internal/constant"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/pkg/serverutils"
	"support-chat-be/internal/repository/contract"
	"support-chat-be/internal/repository/specification"
	"support-chat-be/pkg/events"
)

type SessionListFilter struct {
	PinnedOnly bool
	UnreadOnly bool
}

type ISessionService interface {
	// ResolveOrCreate returns the single session owned by the visitor's
	// device token, creating it when none exists. When the token is
	// unknown but the email already has a session, that session is
	// adopted instead of creating a duplicate thread.
	ResolveOrCreate(ctx context.Context, identity entity.VisitorIdentity) (*entity.ChatSession, error)

	GetSession(ctx context.Context, id uuid.UUID) (*entity.ChatSession, error)
	ListSessions(ctx context.Context, filter SessionListFilter) ([]*entity.ChatSession, error)

	// Handoff moves the session to live status. It is idempotent; calling
	// it on an already-live or closed session is a no-op.
	Handoff(ctx context.Context, id uuid.UUID) error

	CloseSession(ctx context.Context, id uuid.UUID) error
	SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error

	// IsAutoReplyAllowed re-reads the session row. Delayed bot replies
	// must call this immediately before appending, not rely on the state
	// observed when the reply was scheduled.
	IsAutoReplyAllowed(ctx context.Context, id uuid.UUID) (bool, error)
}

type SessionServiceImpl struct {
	sessions      contract.ChatSessionRepository
	notifications contract.NotificationRepository
	bus           message.Publisher
	eventsPub     EventPublisher
	pusher        SessionPusher
	logger        logger.ILogger
}

func NewSessionService(
	sessions contract.ChatSessionRepository,
	notifications contract.NotificationRepository,
	bus message.Publisher,
	eventsPub EventPublisher,
	pusher SessionPusher,
	log logger.ILogger,
) ISessionService {
	return &SessionServiceImpl{
		sessions:      sessions,
		notifications: notifications,
		bus:           bus,
		eventsPub:     eventsPub,
		pusher:        pusher,
		logger:        log,
	}
}

func (s *SessionServiceImpl) ResolveOrCreate(ctx context.Context, identity entity.VisitorIdentity) (*entity.ChatSession, error) {
	token := strings.TrimSpace(identity.DeviceToken)
	if token == "" {
		return nil, serverutils.BadRequestError("device token is required")
	}
	email := strings.ToLower(strings.TrimSpace(identity.Email))

	existing, err := s.sessions.FindOne(ctx, specification.ByDeviceToken{DeviceToken: token})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if email != "" {
		byEmail, err := s.sessions.FindOne(ctx, specification.ByEmail{Email: email})
		if err != nil {
			return nil, err
		}
		if byEmail != nil {
			s.logger.Info("SESSION", "adopted existing session for email match", map[string]interface{}{"session_id": byEmail.Id})
			return byEmail, nil
		}
	}

	now := time.Now()
	session := &entity.ChatSession{
		Id:            uuid.New(),
		DeviceToken:   token,
		Email:         email,
		DisplayName:   strings.TrimSpace(identity.DisplayName),
		Status:        constant.SessionStatusBot,
		LastUpdatedAt: now,
		CreatedAt:     now,
	}
	created, err := s.sessions.CreateIfAbsent(ctx, session)
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.Info("SESSION", "created session", map[string]interface{}{"session_id": session.Id})
	}
	return session, nil
}

func (s *SessionServiceImpl) GetSession(ctx context.Context, id uuid.UUID) (*entity.ChatSession, error) {
	session, err := s.sessions.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NotFoundError("session not found")
	}
	return session, nil
}

func (s *SessionServiceImpl) ListSessions(ctx context.Context, filter SessionListFilter) ([]*entity.ChatSession, error) {
	specs := []specification.Specification{specification.ConsoleOrder{}}
	if filter.PinnedOnly {
		specs = append(specs, specification.PinnedOnly{})
	}
	sessions, err := s.sessions.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if !filter.UnreadOnly {
		return sessions, nil
	}

	unread, err := s.notifications.FindAll(ctx,
		specification.ByViewer{Viewer: constant.ViewerOperator},
		specification.UnreadOnly{},
		specification.ByTypeCodes{Codes: []string{constant.NotificationTypeChat}},
	)
	if err != nil {
		return nil, err
	}
	unreadIds := make(map[uuid.UUID]bool, len(unread))
	for _, n := range unread {
		if n.EntityId != nil {
			unreadIds[*n.EntityId] = true
		}
	}
	filtered := make([]*entity.ChatSession, 0, len(sessions))
	for _, session := range sessions {
		if unreadIds[session.Id] {
			filtered = append(filtered, session)
		}
	}
	return filtered, nil
}

func (s *SessionServiceImpl) Handoff(ctx context.Context, id uuid.UUID) error {
	changed, err := s.sessions.MarkLive(ctx, id)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	s.logger.Info("SESSION", "session handed off to live", map[string]interface{}{"session_id": id})
	s.announceStatus(ctx, id, constant.SessionStatusLive)
	return nil
}

func (s *SessionServiceImpl) CloseSession(ctx context.Context, id uuid.UUID) error {
	changed, err := s.sessions.Close(ctx, id)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	s.logger.Info("SESSION", "session closed", map[string]interface{}{"session_id": id})
	s.announceStatus(ctx, id, constant.SessionStatusClosed)
	return nil
}

func (s *SessionServiceImpl) SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error {
	if _, err := s.GetSession(ctx, id); err != nil {
		return err
	}
	return s.sessions.SetPinned(ctx, id, pinned)
}

func (s *SessionServiceImpl) IsAutoReplyAllowed(ctx context.Context, id uuid.UUID) (bool, error) {
	session, err := s.sessions.FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return false, err
	}
	if session == nil {
		return false, nil
	}
	return session.AutoReplyAllowed(), nil
}

// announceStatus fans a status change out to every consumer: websocket
// clients on the session, the in-process bus (so pending bot replies get
// cancelled), and the durable event stream.
func (s *SessionServiceImpl) announceStatus(ctx context.Context, id uuid.UUID, status string) {
	if s.pusher != nil {
		s.pusher.SendToSession(id, "session_status", map[string]interface{}{
			"session_id": id,
			"status":     status,
		})
	}
	if s.bus != nil {
		payload, _ := json.Marshal(events.SessionEventPayload{SessionId: id, Status: status})
		if err := s.bus.Publish(events.TopicSessionEvents, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
			s.logger.Warn("SESSION", "failed to publish session event", map[string]interface{}{"error": err.Error()})
		}
	}
	if s.eventsPub != nil && status == constant.SessionStatusLive {
		event := events.New(events.TypeChatSessionLive, map[string]interface{}{
			"session_id": id.String(),
		})
		if err := s.eventsPub.Publish(ctx, event); err != nil {
			s.logger.Warn("SESSION", "failed to publish live event", map[string]interface{}{"error": err.Error()})
		}
	}
}
