package service

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"

	"support-chat-be/internal/constant"
	"support-chat-be/internal/entity"
)

func newMessageServiceForTest(t *testing.T) (IMessageService, *fakeSessionRepo, *fakeMessageRepo, *captureEvents) {
	t.Helper()
	sessions := newFakeSessionRepo()
	messages := newFakeMessageRepo(sessions)
	bus := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	t.Cleanup(func() { bus.Close() })
	eventsPub := &captureEvents{}
	svc := NewMessageService(messages, sessions, bus, bus, eventsPub, &capturePusher{}, nopLogger{})
	return svc, sessions, messages, eventsPub
}

func seedSession(repo *fakeSessionRepo, status string) *entity.ChatSession {
	session := &entity.ChatSession{
		Id:          newUUID(),
		DeviceToken: "device-" + newUUID().String(),
		Status:      status,
		CreatedAt:   time.Now(),
	}
	repo.put(session)
	return session
}

func TestSendVisitorMessageAssignsStoreOrdering(t *testing.T) {
	svc, sessions, _, eventsPub := newMessageServiceForTest(t)
	ctx := context.Background()
	session := seedSession(sessions, constant.SessionStatusBot)

	msg, err := svc.SendVisitorMessage(ctx, session.Id, "hello")
	assert.NoError(t, err)
	assert.Equal(t, constant.MessageAuthorVisitor, msg.Author)
	assert.NotZero(t, msg.Seq)
	assert.False(t, msg.CreatedAt.IsZero())

	assert.Len(t, eventsPub.byType("CHAT_MESSAGE_CREATED"), 1)

	// Appending refreshes the session list ordering fields.
	got := sessions.get(session.Id)
	assert.Equal(t, "hello", got.LastMessagePreview)
}

func TestSendMessageRejectsUnknownSession(t *testing.T) {
	svc, _, _, _ := newMessageServiceForTest(t)

	_, err := svc.SendVisitorMessage(context.Background(), newUUID(), "hello")
	assert.Error(t, err)
}

func TestSendMessageRejectsClosedSession(t *testing.T) {
	svc, sessions, _, _ := newMessageServiceForTest(t)
	session := seedSession(sessions, constant.SessionStatusClosed)

	_, err := svc.SendVisitorMessage(context.Background(), session.Id, "hello")
	assert.Error(t, err)
}

func TestSendMessageRejectsEmptyText(t *testing.T) {
	svc, sessions, _, _ := newMessageServiceForTest(t)
	session := seedSession(sessions, constant.SessionStatusBot)

	_, err := svc.SendVisitorMessage(context.Background(), session.Id, "   ")
	assert.Error(t, err)
}

func TestSendOperatorReplyForcesLiveStatus(t *testing.T) {
	svc, sessions, _, _ := newMessageServiceForTest(t)
	ctx := context.Background()
	session := seedSession(sessions, constant.SessionStatusBot)

	msg, err := svc.SendOperatorReply(ctx, session.Id, "an operator here")
	assert.NoError(t, err)
	assert.Equal(t, constant.MessageAuthorHuman, msg.Author)

	got := sessions.get(session.Id)
	assert.Equal(t, constant.SessionStatusLive, got.Status)
	assert.True(t, got.Escalated)
}

func TestSendOperatorReplyRejectsClosedSession(t *testing.T) {
	svc, sessions, _, _ := newMessageServiceForTest(t)
	ctx := context.Background()
	session := seedSession(sessions, constant.SessionStatusClosed)

	_, err := svc.SendOperatorReply(ctx, session.Id, "anyone there?")
	assert.Error(t, err)

	// Closed is terminal; nothing may be stored and the status must hold.
	got := sessions.get(session.Id)
	assert.Equal(t, constant.SessionStatusClosed, got.Status)
	stored, listErr := svc.List(ctx, session.Id)
	assert.NoError(t, listErr)
	assert.Empty(t, stored)
}

func TestListReturnsMessagesInStoreOrder(t *testing.T) {
	svc, sessions, _, _ := newMessageServiceForTest(t)
	ctx := context.Background()
	session := seedSession(sessions, constant.SessionStatusBot)

	for _, text := range []string{"first", "second", "third"} {
		_, err := svc.SendVisitorMessage(ctx, session.Id, text)
		assert.NoError(t, err)
	}

	msgs, err := svc.List(ctx, session.Id)
	assert.NoError(t, err)
	assert.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].Text)
	assert.Equal(t, "third", msgs[2].Text)
	assert.True(t, msgs[0].Seq < msgs[1].Seq && msgs[1].Seq < msgs[2].Seq)
}

func TestSortMessagesBreaksTimestampTiesBySeq(t *testing.T) {
	at := time.Now()
	msgs := []*entity.ChatMessage{
		{Text: "b", Seq: 2, CreatedAt: at},
		{Text: "a", Seq: 1, CreatedAt: at},
		{Text: "c", Seq: 3, CreatedAt: at.Add(time.Second)},
	}
	SortMessages(msgs)
	assert.Equal(t, "a", msgs[0].Text)
	assert.Equal(t, "b", msgs[1].Text)
	assert.Equal(t, "c", msgs[2].Text)
}

func TestSubscribeDeliversFullListOnEveryAppend(t *testing.T) {
	svc, sessions, _, _ := newMessageServiceForTest(t)
	ctx := context.Background()
	session := seedSession(sessions, constant.SessionStatusBot)

	_, err := svc.SendVisitorMessage(ctx, session.Id, "before subscribe")
	assert.NoError(t, err)

	sub, err := svc.Subscribe(ctx, session.Id)
	assert.NoError(t, err)
	defer sub.Cancel()

	// Initial state arrives without any new append.
	initial := receiveList(t, sub)
	assert.Len(t, initial, 1)

	_, err = svc.SendVisitorMessage(ctx, session.Id, "after subscribe")
	assert.NoError(t, err)

	// Wait for a delivery containing both messages; the feed always
	// carries the full list, so later deliveries supersede earlier ones.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case msgs, ok := <-sub.C:
			assert.True(t, ok)
			if len(msgs) == 2 {
				assert.Equal(t, "before subscribe", msgs[0].Text)
				assert.Equal(t, "after subscribe", msgs[1].Text)
				return
			}
		case <-deadline:
			t.Fatal("never received the updated message list")
		}
	}
}

func TestDeliverCoalescesForSlowSubscriber(t *testing.T) {
	svc, sessions, _, _ := newMessageServiceForTest(t)
	ctx := context.Background()
	session := seedSession(sessions, constant.SessionStatusBot)
	impl := svc.(*MessageServiceImpl)

	_, err := svc.SendVisitorMessage(ctx, session.Id, "first")
	assert.NoError(t, err)

	// A full buffer stands in for a subscriber that never drains.
	out := make(chan []*entity.ChatMessage, 1)
	impl.deliver(ctx, session.Id, out)

	_, err = svc.SendVisitorMessage(ctx, session.Id, "second")
	assert.NoError(t, err)
	impl.deliver(ctx, session.Id, out)

	// The stale one-message list is evicted, never the newest delivery.
	msgs := <-out
	assert.Len(t, msgs, 2)
	assert.Equal(t, "second", msgs[1].Text)

	select {
	case <-out:
		t.Fatal("expected exactly one pending delivery after coalescing")
	default:
	}
}

func TestSubscribeCancelIsIdempotent(t *testing.T) {
	svc, sessions, _, _ := newMessageServiceForTest(t)
	session := seedSession(sessions, constant.SessionStatusBot)

	sub, err := svc.Subscribe(context.Background(), session.Id)
	assert.NoError(t, err)

	sub.Cancel()
	sub.Cancel()
}

func TestSubscribeRejectsUnknownSession(t *testing.T) {
	svc, _, _, _ := newMessageServiceForTest(t)

	_, err := svc.Subscribe(context.Background(), newUUID())
	assert.Error(t, err)
}

func receiveList(t *testing.T, sub *MessageSubscription) []*entity.ChatMessage {
	t.Helper()
	select {
	case msgs := <-sub.C:
		return msgs
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message list")
		return nil
	}
}
