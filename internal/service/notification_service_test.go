package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"support-chat-be/internal/constant"
	"support-chat-be/internal/entity"
	"support-chat-be/pkg/dedup"
	"support-chat-be/pkg/events"
)

type notifFixture struct {
	svc           *NotificationServiceImpl
	notifications *fakeNotificationRepo
	sessions      *fakeSessionRepo
	pusher        *capturePusher
}

func newNotifFixture(t *testing.T) *notifFixture {
	t.Helper()
	notifications := newFakeNotificationRepo()
	sessions := newFakeSessionRepo()
	pusher := &capturePusher{}
	svc := NewNotificationService(
		notifications,
		sessions,
		nil,
		dedup.NewMemoryStore(),
		dedup.NewMemoryStore(),
		pusher,
		nil,
		"",
		nopLogger{},
	)
	return &notifFixture{svc: svc, notifications: notifications, sessions: sessions, pusher: pusher}
}

func TestVisitorMessageNotifiesOperator(t *testing.T) {
	f := newNotifFixture(t)
	ctx := context.Background()
	session := seedSession(f.sessions, constant.SessionStatusBot)

	err := f.svc.OnChatMessage(ctx, session.Id, constant.MessageAuthorVisitor, "hello there", 1)
	assert.NoError(t, err)

	operator, _ := f.svc.List(ctx, constant.ViewerOperator)
	assert.Len(t, operator, 1)
	assert.Equal(t, constant.NotificationTypeChat, operator[0].TypeCode)

	visitor, _ := f.svc.List(ctx, constant.ViewerVisitor)
	assert.Empty(t, visitor)
}

func TestBotAndHumanMessagesNotifyVisitor(t *testing.T) {
	f := newNotifFixture(t)
	ctx := context.Background()
	session := seedSession(f.sessions, constant.SessionStatusBot)

	assert.NoError(t, f.svc.OnChatMessage(ctx, session.Id, constant.MessageAuthorBot, "an answer", 1))
	assert.NoError(t, f.svc.OnChatMessage(ctx, session.Id, constant.MessageAuthorHuman, "a human answer", 2))

	visitor, _ := f.svc.List(ctx, constant.ViewerVisitor)
	assert.Len(t, visitor, 2)

	operator, _ := f.svc.List(ctx, constant.ViewerOperator)
	assert.Empty(t, operator)
}

func TestDuplicateDeliveryCreatesOneNotification(t *testing.T) {
	f := newNotifFixture(t)
	ctx := context.Background()
	session := seedSession(f.sessions, constant.SessionStatusBot)

	for i := 0; i < 3; i++ {
		assert.NoError(t, f.svc.OnChatMessage(ctx, session.Id, constant.MessageAuthorVisitor, "hello", 7))
	}

	operator, _ := f.svc.List(ctx, constant.ViewerOperator)
	assert.Len(t, operator, 1)
}

func TestOlderSeqNeverReopensDedupWindow(t *testing.T) {
	f := newNotifFixture(t)
	ctx := context.Background()
	session := seedSession(f.sessions, constant.SessionStatusBot)

	assert.NoError(t, f.svc.OnChatMessage(ctx, session.Id, constant.MessageAuthorVisitor, "newer", 5))
	assert.NoError(t, f.svc.OnChatMessage(ctx, session.Id, constant.MessageAuthorVisitor, "late retry", 3))

	operator, _ := f.svc.List(ctx, constant.ViewerOperator)
	assert.Len(t, operator, 1)
	assert.Equal(t, "newer", operator[0].Description)
}

func TestUnreadCountsGroupChatAndLead(t *testing.T) {
	f := newNotifFixture(t)
	ctx := context.Background()
	session := seedSession(f.sessions, constant.SessionStatusBot)

	assert.NoError(t, f.svc.OnChatMessage(ctx, session.Id, constant.MessageAuthorVisitor, "hello", 1))

	leadId := uuid.New()
	event := events.New(events.TypeLeadQuoteSubmitted, map[string]interface{}{
		"lead_id": leadId.String(),
		"name":    "Ada",
		"summary": "Needs a quote",
	})
	assert.NoError(t, f.svc.handleLeadEvent(ctx, event))

	counts, err := f.svc.CountUnread(ctx, constant.ViewerOperator)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), counts.Chat)
	assert.Equal(t, int64(1), counts.Lead)
	assert.Equal(t, int64(2), counts.Total)
}

func TestLeadEventsDedupByLeadId(t *testing.T) {
	f := newNotifFixture(t)
	ctx := context.Background()

	leadId := uuid.New()
	event := events.New(events.TypeLeadContactSubmitted, map[string]interface{}{
		"lead_id": leadId.String(),
		"name":    "Ada",
		"summary": "Hello",
	})
	assert.NoError(t, f.svc.handleLeadEvent(ctx, event))
	assert.NoError(t, f.svc.handleLeadEvent(ctx, event))

	operator, _ := f.svc.List(ctx, constant.ViewerOperator)
	assert.Len(t, operator, 1)
	assert.Equal(t, constant.NotificationTypeLeadContact, operator[0].TypeCode)
}

func TestMarkAllThenOneNewLeavesExactlyOneUnread(t *testing.T) {
	f := newNotifFixture(t)
	ctx := context.Background()
	session := seedSession(f.sessions, constant.SessionStatusBot)

	assert.NoError(t, f.svc.OnChatMessage(ctx, session.Id, constant.MessageAuthorVisitor, "one", 1))
	assert.NoError(t, f.svc.OnChatMessage(ctx, session.Id, constant.MessageAuthorVisitor, "two", 2))

	assert.NoError(t, f.svc.MarkAllRead(ctx, constant.ViewerOperator))
	counts, _ := f.svc.CountUnread(ctx, constant.ViewerOperator)
	assert.Equal(t, int64(0), counts.Total)

	assert.NoError(t, f.svc.OnChatMessage(ctx, session.Id, constant.MessageAuthorVisitor, "three", 3))
	counts, _ = f.svc.CountUnread(ctx, constant.ViewerOperator)
	assert.Equal(t, int64(1), counts.Total)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	f := newNotifFixture(t)
	ctx := context.Background()
	session := seedSession(f.sessions, constant.SessionStatusBot)

	assert.NoError(t, f.svc.OnChatMessage(ctx, session.Id, constant.MessageAuthorVisitor, "hello", 1))
	operator, _ := f.svc.List(ctx, constant.ViewerOperator)
	id := operator[0].Id

	assert.NoError(t, f.svc.MarkRead(ctx, id))
	assert.NoError(t, f.svc.MarkRead(ctx, id))

	counts, _ := f.svc.CountUnread(ctx, constant.ViewerOperator)
	assert.Equal(t, int64(0), counts.Total)
}

func TestRecordsAreAppendOnly(t *testing.T) {
	f := newNotifFixture(t)
	ctx := context.Background()
	session := seedSession(f.sessions, constant.SessionStatusBot)

	assert.NoError(t, f.svc.OnChatMessage(ctx, session.Id, constant.MessageAuthorVisitor, "hello", 1))
	operator, _ := f.svc.List(ctx, constant.ViewerOperator)
	assert.NoError(t, f.svc.MarkRead(ctx, operator[0].Id))

	// Marking read flips the flag but never deletes the record.
	after, _ := f.svc.List(ctx, constant.ViewerOperator)
	assert.Len(t, after, 1)
	assert.True(t, after[0].IsRead)
	assert.NotNil(t, after[0].ReadAt)
}

func TestChatMessageEventParsing(t *testing.T) {
	f := newNotifFixture(t)
	ctx := context.Background()
	session := seedSession(f.sessions, constant.SessionStatusBot)

	// JSON round trips numbers as float64; the handler must cope.
	event := events.New(events.TypeChatMessageCreated, map[string]interface{}{
		"session_id": session.Id.String(),
		"author":     constant.MessageAuthorVisitor,
		"text":       "hello",
		"seq":        float64(4),
	})
	assert.NoError(t, f.svc.handleChatMessageEvent(ctx, event))

	operator, _ := f.svc.List(ctx, constant.ViewerOperator)
	assert.Len(t, operator, 1)
}

func TestUnknownAuthorIsIgnored(t *testing.T) {
	f := newNotifFixture(t)
	ctx := context.Background()
	session := seedSession(f.sessions, constant.SessionStatusBot)

	assert.NoError(t, f.svc.OnChatMessage(ctx, session.Id, "system", "noise", 1))

	var total []*entity.Notification
	for _, viewer := range []string{constant.ViewerOperator, constant.ViewerVisitor} {
		list, _ := f.svc.List(ctx, viewer)
		total = append(total, list...)
	}
	assert.Empty(t, total)
}
