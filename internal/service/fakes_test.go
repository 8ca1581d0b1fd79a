package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"support-chat-be/internal/constant"
	"support-chat-be/internal/entity"
	"support-chat-be/internal/repository/specification"
	"support-chat-be/pkg/events"
	"support-chat-be/pkg/kb"
)

func newUUID() uuid.UUID { return uuid.New() }

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// fakeSessionRepo keeps sessions in memory and interprets the small set of
// specifications the services actually use.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.ChatSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*entity.ChatSession)}
}

func (r *fakeSessionRepo) CreateIfAbsent(ctx context.Context, session *entity.ChatSession) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.DeviceToken == session.DeviceToken || (session.Email != "" && s.Email == session.Email) {
			*session = *s
			return false, nil
		}
	}
	cp := *session
	r.sessions[session.Id] = &cp
	return true, nil
}

func (r *fakeSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if matchSession(s, specs) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeSessionRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ChatSession
	for _, s := range r.sessions {
		if matchSession(s, specs) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func matchSession(s *entity.ChatSession, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch v := spec.(type) {
		case specification.ByID:
			if s.Id != v.ID {
				return false
			}
		case specification.ByDeviceToken:
			if s.DeviceToken != v.DeviceToken {
				return false
			}
		case specification.ByEmail:
			if s.Email != v.Email {
				return false
			}
		case specification.PinnedOnly:
			if !s.Pinned {
				return false
			}
		}
	}
	return true
}

func (r *fakeSessionRepo) MarkLive(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.Status != constant.SessionStatusBot {
		return false, nil
	}
	s.Status = constant.SessionStatusLive
	s.Escalated = true
	s.LastUpdatedAt = time.Now()
	return true, nil
}

func (r *fakeSessionRepo) Close(ctx context.Context, id uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || s.Status == constant.SessionStatusClosed {
		return false, nil
	}
	s.Status = constant.SessionStatusClosed
	s.Escalated = true
	return true, nil
}

func (r *fakeSessionRepo) SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.Pinned = pinned
	}
	return nil
}

func (r *fakeSessionRepo) TouchActivity(ctx context.Context, id uuid.UUID, preview string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.LastMessagePreview = preview
		s.LastUpdatedAt = at
	}
	return nil
}

func (r *fakeSessionRepo) get(id uuid.UUID) *entity.ChatSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		cp := *s
		return &cp
	}
	return nil
}

func (r *fakeSessionRepo) put(s *entity.ChatSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	r.sessions[s.Id] = &cp
}

// fakeMessageRepo assigns seq and timestamps the way the database would.
type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*entity.ChatMessage
	nextSeq  int64
	sessions *fakeSessionRepo
}

func newFakeMessageRepo(sessions *fakeSessionRepo) *fakeMessageRepo {
	return &fakeMessageRepo{sessions: sessions}
}

func (r *fakeMessageRepo) Append(ctx context.Context, message *entity.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextSeq++
	message.Seq = r.nextSeq
	message.CreatedAt = time.Now()
	cp := *message
	r.messages = append(r.messages, &cp)
	return nil
}

func (r *fakeMessageRepo) AppendHumanReply(ctx context.Context, sessionId uuid.UUID, message *entity.ChatMessage) error {
	message.Author = constant.MessageAuthorHuman
	if err := r.Append(ctx, message); err != nil {
		return err
	}
	r.sessions.MarkLive(ctx, sessionId)
	r.sessions.TouchActivity(ctx, sessionId, entity.PreviewOf(message.Text), time.Now())
	return nil
}

func (r *fakeMessageRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ChatMessage
	for _, m := range r.messages {
		if matchMessage(m, specs) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	msgs, _ := r.FindAll(ctx, specs...)
	return int64(len(msgs)), nil
}

func matchMessage(m *entity.ChatMessage, specs []specification.Specification) bool {
	for _, spec := range specs {
		if v, ok := spec.(specification.ByChatSessionID); ok && m.ChatSessionId != v.ChatSessionID {
			return false
		}
	}
	return true
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []*entity.Notification
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, notification *entity.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	notification.CreatedAt = time.Now()
	cp := *notification
	r.notifications = append(r.notifications, &cp)
	return nil
}

func (r *fakeNotificationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Notification
	for _, n := range r.notifications {
		if matchNotification(n, specs) {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func matchNotification(n *entity.Notification, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch v := spec.(type) {
		case specification.ByViewer:
			if n.Viewer != v.Viewer {
				return false
			}
		case specification.UnreadOnly:
			if n.IsRead {
				return false
			}
		case specification.ByTypeCodes:
			found := false
			for _, code := range v.Codes {
				if n.TypeCode == code {
					found = true
				}
			}
			if !found {
				return false
			}
		case specification.FilterBy:
			if v.Field == "entity_id" {
				id, ok := v.Value.(uuid.UUID)
				if !ok || n.EntityId == nil || *n.EntityId != id {
					return false
				}
			}
		}
	}
	return true
}

func (r *fakeNotificationRepo) CountUnread(ctx context.Context, viewer string, typeCodes []string) (int64, error) {
	specs := []specification.Specification{
		specification.ByViewer{Viewer: viewer},
		specification.UnreadOnly{},
	}
	if len(typeCodes) > 0 {
		specs = append(specs, specification.ByTypeCodes{Codes: typeCodes})
	}
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakeNotificationRepo) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, n := range r.notifications {
		if n.Id == id && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
		}
	}
	return nil
}

func (r *fakeNotificationRepo) MarkAllAsRead(ctx context.Context, viewer string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for _, n := range r.notifications {
		if n.Viewer == viewer && !n.IsRead {
			n.IsRead = true
			n.ReadAt = &now
		}
	}
	return nil
}

// capturePusher records everything sent to websocket clients.
type capturePusher struct {
	mu        sync.Mutex
	toSession []string
	broadcast []string
}

func (p *capturePusher) SendToSession(sessionId uuid.UUID, payloadType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.toSession = append(p.toSession, payloadType)
}

func (p *capturePusher) BroadcastOperators(payloadType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.broadcast = append(p.broadcast, payloadType)
}

type captureEvents struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *captureEvents) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *captureEvents) byType(eventType string) []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []events.Event
	for _, e := range p.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// staticKnowledge serves a fixed snapshot without touching a repository.
type staticKnowledge struct {
	entries []*entity.KnowledgeEntry
}

func (s *staticKnowledge) Load(ctx context.Context) *kb.Snapshot {
	return kb.NewSnapshot(s.entries)
}
