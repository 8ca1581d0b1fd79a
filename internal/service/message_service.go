package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
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

// MessageSubscription is a live view over one session's message list. Every
// value on C is the full, re-sorted list; consumers replace their state
// rather than appending, so duplicate deliveries are harmless.
type MessageSubscription struct {
	C <-chan []*entity.ChatMessage

	cancel context.CancelFunc
	once   sync.Once
}

// Cancel stops the subscription. Safe to call more than once.
func (s *MessageSubscription) Cancel() {
	s.once.Do(s.cancel)
}

type IMessageService interface {
	SendVisitorMessage(ctx context.Context, sessionId uuid.UUID, text string) (*entity.ChatMessage, error)
	AppendBotReply(ctx context.Context, sessionId uuid.UUID, text string) (*entity.ChatMessage, error)
	SendOperatorReply(ctx context.Context, sessionId uuid.UUID, text string) (*entity.ChatMessage, error)
	List(ctx context.Context, sessionId uuid.UUID) ([]*entity.ChatMessage, error)
	Subscribe(ctx context.Context, sessionId uuid.UUID) (*MessageSubscription, error)
}

type MessageServiceImpl struct {
	messages contract.ChatMessageRepository
	sessions contract.ChatSessionRepository
	bus      message.Publisher
	busSub   message.Subscriber
	eventsPub EventPublisher
	pusher    SessionPusher
	logger    logger.ILogger
}

func NewMessageService(
	messages contract.ChatMessageRepository,
	sessions contract.ChatSessionRepository,
	bus message.Publisher,
	busSub message.Subscriber,
	eventsPub EventPublisher,
	pusher SessionPusher,
	log logger.ILogger,
) IMessageService {
	return &MessageServiceImpl{
		messages:  messages,
		sessions:  sessions,
		bus:       bus,
		busSub:    busSub,
		eventsPub: eventsPub,
		pusher:    pusher,
		logger:    log,
	}
}

func (s *MessageServiceImpl) SendVisitorMessage(ctx context.Context, sessionId uuid.UUID, text string) (*entity.ChatMessage, error) {
	return s.append(ctx, sessionId, constant.MessageAuthorVisitor, text)
}

func (s *MessageServiceImpl) AppendBotReply(ctx context.Context, sessionId uuid.UUID, text string) (*entity.ChatMessage, error) {
	return s.append(ctx, sessionId, constant.MessageAuthorBot, text)
}

func (s *MessageServiceImpl) SendOperatorReply(ctx context.Context, sessionId uuid.UUID, text string) (*entity.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, serverutils.BadRequestError("message text is required")
	}
	session, err := s.loadSession(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if session.Status == constant.SessionStatusClosed {
		return nil, serverutils.BadRequestError("session is closed")
	}

	msg := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sessionId,
		Author:        constant.MessageAuthorHuman,
		Text:          text,
	}
	if err := s.messages.AppendHumanReply(ctx, sessionId, msg); err != nil {
		return nil, err
	}
	s.afterAppend(ctx, msg)
	if s.pusher != nil {
		s.pusher.SendToSession(sessionId, "session_status", map[string]interface{}{
			"session_id": sessionId,
			"status":     constant.SessionStatusLive,
		})
	}
	return msg, nil
}

func (s *MessageServiceImpl) List(ctx context.Context, sessionId uuid.UUID) ([]*entity.ChatMessage, error) {
	msgs, err := s.messages.FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.MessageOrder{},
	)
	if err != nil {
		return nil, err
	}
	SortMessages(msgs)
	return msgs, nil
}

// Subscribe opens a change feed for one session. The initial list is
// delivered immediately, then the full list is refetched on every append.
func (s *MessageServiceImpl) Subscribe(ctx context.Context, sessionId uuid.UUID) (*MessageSubscription, error) {
	if _, err := s.loadSession(ctx, sessionId); err != nil {
		return nil, err
	}

	subCtx, cancel := context.WithCancel(ctx)
	in, err := s.busSub.Subscribe(subCtx, events.SessionMessagesTopic(sessionId))
	if err != nil {
		cancel()
		return nil, err
	}

	out := make(chan []*entity.ChatMessage, 8)
	go func() {
		defer close(out)
		s.deliver(subCtx, sessionId, out)
		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				msg.Ack()
				s.deliver(subCtx, sessionId, out)
			}
		}
	}()

	return &MessageSubscription{C: out, cancel: cancel}, nil
}

func (s *MessageServiceImpl) deliver(ctx context.Context, sessionId uuid.UUID, out chan []*entity.ChatMessage) {
	msgs, err := s.List(ctx, sessionId)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("MESSAGE", "failed to refetch messages for subscription", map[string]interface{}{
				"session_id": sessionId,
				"error":      err.Error(),
			})
		}
		return
	}
	for {
		select {
		case out <- msgs:
			return
		default:
		}
		// Slow consumer. Evict the oldest pending list rather than drop
		// the newest one; every delivery carries the full list, so only
		// the latest matters.
		select {
		case <-out:
		default:
		}
	}
}

func (s *MessageServiceImpl) append(ctx context.Context, sessionId uuid.UUID, author, text string) (*entity.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, serverutils.BadRequestError("message text is required")
	}
	session, err := s.loadSession(ctx, sessionId)
	if err != nil {
		return nil, err
	}
	if session.Status == constant.SessionStatusClosed {
		return nil, serverutils.BadRequestError("session is closed")
	}

	msg := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: sessionId,
		Author:        author,
		Text:          text,
	}
	if err := s.messages.Append(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.sessions.TouchActivity(ctx, sessionId, entity.PreviewOf(text), time.Now()); err != nil {
		s.logger.Warn("MESSAGE", "failed to touch session activity", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
	}
	s.afterAppend(ctx, msg)
	return msg, nil
}

func (s *MessageServiceImpl) loadSession(ctx context.Context, sessionId uuid.UUID) (*entity.ChatSession, error) {
	session, err := s.sessions.FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, serverutils.NotFoundError("session not found")
	}
	return session, nil
}

// afterAppend fans a stored message out: the session change feed, the bot
// responder's inbox (visitor messages only), websocket clients, and the
// durable event stream for the notification worker.
func (s *MessageServiceImpl) afterAppend(ctx context.Context, msg *entity.ChatMessage) {
	payload, _ := json.Marshal(events.VisitorMessagePayload{
		SessionId: msg.ChatSessionId,
		MessageId: msg.Id,
		Seq:       msg.Seq,
		Text:      msg.Text,
	})

	if s.bus != nil {
		topic := events.SessionMessagesTopic(msg.ChatSessionId)
		if err := s.bus.Publish(topic, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
			s.logger.Warn("MESSAGE", "failed to publish to session feed", map[string]interface{}{"error": err.Error()})
		}
		if msg.Author == constant.MessageAuthorVisitor {
			if err := s.bus.Publish(events.TopicVisitorMessages, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
				s.logger.Warn("MESSAGE", "failed to publish visitor message", map[string]interface{}{"error": err.Error()})
			}
		}
	}

	if s.pusher != nil {
		if msgs, err := s.List(ctx, msg.ChatSessionId); err == nil {
			s.pusher.SendToSession(msg.ChatSessionId, "messages", msgs)
		}
	}

	if s.eventsPub != nil {
		event := events.New(events.TypeChatMessageCreated, map[string]interface{}{
			"session_id": msg.ChatSessionId.String(),
			"message_id": msg.Id.String(),
			"author":     msg.Author,
			"text":       msg.Text,
			"seq":        msg.Seq,
		})
		if err := s.eventsPub.Publish(ctx, event); err != nil {
			s.logger.Warn("MESSAGE", "failed to publish message event", map[string]interface{}{"error": err.Error()})
		}
	}
}

// SortMessages orders messages by store-assigned timestamp, sequence number
// breaking ties. The repository already orders its reads; this keeps the
// ordering stable after merges from concurrent feeds.
func SortMessages(msgs []*entity.ChatMessage) {
	sort.SliceStable(msgs, func(i, j int) bool {
		if msgs[i].CreatedAt.Equal(msgs[j].CreatedAt) {
			return msgs[i].Seq < msgs[j].Seq
		}
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
}
