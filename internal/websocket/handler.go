package websocket

import (
	"encoding/json"

	"github.com/gofiber/websocket/v2"
)

// Inbound is a client-to-server frame.
type Inbound struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	ID   int    `json:"id,omitempty"`
}

const (
	InboundChat        = "chat"
	InboundMarkRead    = "mark_read"
	InboundMarkAllRead = "mark_all_read"
)

// ServeWs handles websocket requests from the peer. It returns only after both
// pumps are done with c, since the connection is pooled and reused once the
// handler returns.
func ServeWs(hub *Hub, c *websocket.Conn, sessionID string) {
	client := newClient(hub, c, sessionID)
	if !hub.Register(client) {
		hub.logger.Warn("WebSocket", "Hub stopped, refusing connection", map[string]interface{}{"session_id": sessionID})
		return
	}

	go client.writePump()
	client.readPump()
	<-client.done
}

// DecodeInbound parses a client frame. Unknown fields are ignored.
func DecodeInbound(message []byte) (Inbound, error) {
	var in Inbound
	err := json.Unmarshal(message, &in)
	return in, err
}
