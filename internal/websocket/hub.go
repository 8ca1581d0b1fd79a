package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"support-chat-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const clusterChannel = "chat_cluster_events"

// Hub fans out chat updates to connected clients. Visitor widgets join the
// room of their session; operator consoles join every room at once. Redis
// pub/sub carries payloads to hubs on other instances.
type Hub struct {
	// rooms: session id -> visitor clients subscribed to that session.
	rooms map[uuid.UUID][]*Client

	// operators receive every session's updates plus notifications.
	operators []*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	rdb *redis.Client

	// instanceId stamps outgoing cluster payloads so this hub can ignore
	// its own messages coming back off the Redis channel.
	instanceId string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		rooms:      make(map[uuid.UUID][]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rdb:        rdb,
		instanceId: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if client.Operator {
				h.operators = append(h.operators, client)
			} else {
				h.rooms[client.SessionId] = append(h.rooms[client.SessionId], client)
			}
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": client.SessionId, "operator": client.Operator})

		case client := <-h.unregister:
			h.mu.Lock()
			h.removeLocked(client)
			h.mu.Unlock()
		}
	}
}

func (h *Hub) removeLocked(client *Client) {
	if client.Operator {
		for i, c := range h.operators {
			if c == client {
				h.operators = append(h.operators[:i], h.operators[i+1:]...)
				close(client.Send)
				return
			}
		}
		return
	}

	clients, ok := h.rooms[client.SessionId]
	if !ok {
		return
	}
	for i, c := range clients {
		if c == client {
			h.rooms[client.SessionId] = append(clients[:i], clients[i+1:]...)
			close(client.Send)
			break
		}
	}
	if len(h.rooms[client.SessionId]) == 0 {
		delete(h.rooms, client.SessionId)
		h.logger.Info("Hub", "Session room emptied", map[string]interface{}{"session_id": client.SessionId})
	}
}

// SendToSession pushes a payload to the session's visitor clients plus every
// operator console, locally and via Redis to other instances.
func (h *Hub) SendToSession(sessionId uuid.UUID, payloadType string, payload interface{}) {
	data, err := json.Marshal(map[string]interface{}{
		"type":       payloadType,
		"session_id": sessionId,
		"data":       payload,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal payload", map[string]interface{}{"error": err.Error()})
		return
	}

	h.deliverLocal(sessionId, data)
	h.publishCluster(sessionId.String(), data)
}

// BroadcastOperators pushes a payload to operator consoles only. Used for
// notification records, which visitors never see.
func (h *Hub) BroadcastOperators(payloadType string, payload interface{}) {
	data, err := json.Marshal(map[string]interface{}{
		"type": payloadType,
		"data": payload,
	})
	if err != nil {
		h.logger.Error("Hub", "Failed to marshal payload", map[string]interface{}{"error": err.Error()})
		return
	}

	h.mu.RLock()
	ops := append([]*Client(nil), h.operators...)
	h.mu.RUnlock()
	for _, client := range ops {
		h.trySend(client, data)
	}

	h.publishCluster("*", data)
}

func (h *Hub) deliverLocal(sessionId uuid.UUID, data []byte) {
	h.mu.RLock()
	clients := append([]*Client(nil), h.rooms[sessionId]...)
	ops := append([]*Client(nil), h.operators...)
	h.mu.RUnlock()

	for _, client := range clients {
		h.trySend(client, data)
	}
	for _, client := range ops {
		h.trySend(client, data)
	}
}

func (h *Hub) trySend(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{"session_id": client.SessionId})
		h.unregister <- client
	}
}

func (h *Hub) publishCluster(target string, data []byte) {
	if h.rdb == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"origin":         h.instanceId,
		"target_session": target,
		"message":        json.RawMessage(data),
	})
	h.rdb.Publish(context.Background(), clusterChannel, payload)
}

// subscribeToRedis relays payloads published by other instances into the
// local rooms. Each instance filters to the sessions it actually hosts.
func (h *Hub) subscribeToRedis() {
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, clusterChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		h.handleClusterMessage([]byte(msg.Payload))
	}
}

func (h *Hub) handleClusterMessage(raw []byte) {
	var payload struct {
		Origin        string          `json:"origin"`
		TargetSession string          `json:"target_session"`
		Message       json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Printf("Redis msg parse error: %v", err)
		return
	}

	// Local delivery already happened on the publishing instance.
	if payload.Origin == h.instanceId {
		return
	}

	if payload.TargetSession == "*" {
		h.mu.RLock()
		ops := append([]*Client(nil), h.operators...)
		h.mu.RUnlock()
		for _, client := range ops {
			h.trySend(client, payload.Message)
		}
		return
	}

	sid, err := uuid.Parse(payload.TargetSession)
	if err != nil {
		return
	}
	h.deliverLocal(sid, payload.Message)
}
