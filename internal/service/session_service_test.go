package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"support-chat-be/internal/constant"
	"support-chat-be/internal/entity"
)

func newSessionServiceForTest() (ISessionService, *fakeSessionRepo, *captureEvents) {
	sessions := newFakeSessionRepo()
	notifications := newFakeNotificationRepo()
	eventsPub := &captureEvents{}
	svc := NewSessionService(sessions, notifications, nil, eventsPub, &capturePusher{}, nopLogger{})
	return svc, sessions, eventsPub
}

func TestResolveOrCreateCreatesBotSession(t *testing.T) {
	svc, _, _ := newSessionServiceForTest()

	session, err := svc.ResolveOrCreate(context.Background(), entity.VisitorIdentity{
		DeviceToken: "device-token-1",
		DisplayName: "Ada",
		Email:       "Ada@Example.com",
	})
	assert.NoError(t, err)
	assert.Equal(t, constant.SessionStatusBot, session.Status)
	assert.False(t, session.Escalated)
	assert.Equal(t, "ada@example.com", session.Email)
}

func TestResolveOrCreateIsStablePerDeviceToken(t *testing.T) {
	svc, _, _ := newSessionServiceForTest()
	ctx := context.Background()

	first, err := svc.ResolveOrCreate(ctx, entity.VisitorIdentity{DeviceToken: "device-token-1"})
	assert.NoError(t, err)

	second, err := svc.ResolveOrCreate(ctx, entity.VisitorIdentity{DeviceToken: "device-token-1"})
	assert.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)
}

func TestResolveOrCreateAdoptsSessionByEmail(t *testing.T) {
	svc, _, _ := newSessionServiceForTest()
	ctx := context.Background()

	original, err := svc.ResolveOrCreate(ctx, entity.VisitorIdentity{
		DeviceToken: "old-device-token",
		Email:       "ada@example.com",
	})
	assert.NoError(t, err)

	// Same visitor, cleared local storage: new token, same email.
	adopted, err := svc.ResolveOrCreate(ctx, entity.VisitorIdentity{
		DeviceToken: "new-device-token",
		Email:       "ada@example.com",
	})
	assert.NoError(t, err)
	assert.Equal(t, original.Id, adopted.Id)
	assert.Equal(t, "old-device-token", adopted.DeviceToken)
}

func TestResolveOrCreateRequiresDeviceToken(t *testing.T) {
	svc, _, _ := newSessionServiceForTest()

	_, err := svc.ResolveOrCreate(context.Background(), entity.VisitorIdentity{DeviceToken: "   "})
	assert.Error(t, err)
}

func TestHandoffIsOneWayAndIdempotent(t *testing.T) {
	svc, repo, eventsPub := newSessionServiceForTest()
	ctx := context.Background()

	session, _ := svc.ResolveOrCreate(ctx, entity.VisitorIdentity{DeviceToken: "device-token-1"})

	assert.NoError(t, svc.Handoff(ctx, session.Id))
	got := repo.get(session.Id)
	assert.Equal(t, constant.SessionStatusLive, got.Status)
	assert.True(t, got.Escalated)

	// Second handoff changes nothing and publishes nothing new.
	assert.NoError(t, svc.Handoff(ctx, session.Id))
	assert.Len(t, eventsPub.byType("CHAT_SESSION_LIVE"), 1)
}

func TestHandoffNeverReopensClosedSession(t *testing.T) {
	svc, repo, _ := newSessionServiceForTest()
	ctx := context.Background()

	session, _ := svc.ResolveOrCreate(ctx, entity.VisitorIdentity{DeviceToken: "device-token-1"})
	assert.NoError(t, svc.CloseSession(ctx, session.Id))
	assert.NoError(t, svc.Handoff(ctx, session.Id))

	got := repo.get(session.Id)
	assert.Equal(t, constant.SessionStatusClosed, got.Status)
}

func TestIsAutoReplyAllowed(t *testing.T) {
	svc, repo, _ := newSessionServiceForTest()
	ctx := context.Background()

	session, _ := svc.ResolveOrCreate(ctx, entity.VisitorIdentity{DeviceToken: "device-token-1"})

	allowed, err := svc.IsAutoReplyAllowed(ctx, session.Id)
	assert.NoError(t, err)
	assert.True(t, allowed)

	svc.Handoff(ctx, session.Id)
	allowed, err = svc.IsAutoReplyAllowed(ctx, session.Id)
	assert.NoError(t, err)
	assert.False(t, allowed)

	// A stale bot status can never re-enable auto-replies while the
	// escalated flag is set.
	stale := repo.get(session.Id)
	stale.Status = constant.SessionStatusBot
	repo.put(stale)
	allowed, _ = svc.IsAutoReplyAllowed(ctx, session.Id)
	assert.False(t, allowed)
}

func TestListSessionsFilters(t *testing.T) {
	svc, repo, _ := newSessionServiceForTest()
	ctx := context.Background()

	a, _ := svc.ResolveOrCreate(ctx, entity.VisitorIdentity{DeviceToken: "token-a"})
	b, _ := svc.ResolveOrCreate(ctx, entity.VisitorIdentity{DeviceToken: "token-b"})
	assert.NoError(t, svc.SetPinned(ctx, a.Id, true))

	all, err := svc.ListSessions(ctx, SessionListFilter{})
	assert.NoError(t, err)
	assert.Len(t, all, 2)

	pinned, err := svc.ListSessions(ctx, SessionListFilter{PinnedOnly: true})
	assert.NoError(t, err)
	assert.Len(t, pinned, 1)
	assert.Equal(t, a.Id, pinned[0].Id)
	assert.True(t, repo.get(b.Id) != nil)
}
