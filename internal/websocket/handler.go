package websocket

import (
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// ServeVisitor attaches a visitor widget connection to its session room.
func ServeVisitor(hub *Hub, c *websocket.Conn, sessionId uuid.UUID) {
	client := &Client{Hub: hub, Conn: c, SessionId: sessionId, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump() // blocks until the connection drops
}

// ServeOperator attaches an operator console connection; it receives every
// session's updates and all notifications.
func ServeOperator(hub *Hub, c *websocket.Conn) {
	client := &Client{Hub: hub, Conn: c, Operator: true, Send: make(chan []byte, 256)}
	client.Hub.register <- client

	go client.writePump()
	client.readPump()
}
