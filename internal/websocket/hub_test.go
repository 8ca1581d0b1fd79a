package websocket

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

func newTestHub() *Hub {
	return NewHub(nil, nopLogger{})
}

func addOperator(h *Hub) *Client {
	client := &Client{Hub: h, Operator: true, Send: make(chan []byte, 4)}
	h.mu.Lock()
	h.operators = append(h.operators, client)
	h.mu.Unlock()
	return client
}

func clusterPayload(t *testing.T, origin, target string, body string) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]interface{}{
		"origin":         origin,
		"target_session": target,
		"message":        json.RawMessage([]byte(body)),
	})
	assert.NoError(t, err)
	return raw
}

func TestClusterMessageFromOtherInstanceIsDelivered(t *testing.T) {
	h := newTestHub()
	op := addOperator(h)

	h.handleClusterMessage(clusterPayload(t, uuid.NewString(), "*", `{"type":"notification"}`))

	select {
	case data := <-op.Send:
		assert.JSONEq(t, `{"type":"notification"}`, string(data))
	default:
		t.Fatal("expected operator delivery for a foreign cluster message")
	}
}

func TestClusterMessageFromSameInstanceIsIgnored(t *testing.T) {
	h := newTestHub()
	op := addOperator(h)

	// Local fanout already ran on the publishing instance, so its own
	// message coming back off the channel must not be delivered again.
	h.handleClusterMessage(clusterPayload(t, h.instanceId, "*", `{"type":"notification"}`))

	select {
	case <-op.Send:
		t.Fatal("self-originated cluster message delivered twice")
	default:
	}
}

func TestClusterMessageRoutesToSessionRoom(t *testing.T) {
	h := newTestHub()
	sessionId := uuid.New()
	visitor := &Client{Hub: h, SessionId: sessionId, Send: make(chan []byte, 4)}
	other := &Client{Hub: h, SessionId: uuid.New(), Send: make(chan []byte, 4)}
	h.mu.Lock()
	h.rooms[sessionId] = append(h.rooms[sessionId], visitor)
	h.rooms[other.SessionId] = append(h.rooms[other.SessionId], other)
	h.mu.Unlock()

	h.handleClusterMessage(clusterPayload(t, uuid.NewString(), sessionId.String(), `{"type":"messages"}`))

	select {
	case data := <-visitor.Send:
		assert.JSONEq(t, `{"type":"messages"}`, string(data))
	default:
		t.Fatal("expected delivery to the session room")
	}
	select {
	case <-other.Send:
		t.Fatal("message leaked into an unrelated session room")
	default:
	}
}
