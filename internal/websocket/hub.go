package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"smartcity-be/internal/model"
	"smartcity-be/internal/pkg/logger"
	"smartcity-be/pkg/events"
)

// Frame is the envelope of every server-to-client message.
type Frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

const (
	FrameTurn        = "turn"
	FrameUnreadCount = "unread_count"
)

// InboundHandler receives every frame a console sends.
type InboundHandler func(client *Client, message []byte)

type Hub struct {
	// Registered clients: chat session ID -> clients (one per open tab)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	// closed once Run has returned; nothing reads register/unregister after
	done chan struct{}

	// guards clients and every Client.closed flag
	mu sync.RWMutex

	// OnInbound handles client frames; OnSessionEmpty fires when the last
	// client of a session disconnects. Both are set before Run.
	OnInbound      InboundHandler
	OnSessionEmpty func(sessionID string)

	logger logger.ILogger
}

func NewHub(log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client, 16),
		done:       make(chan struct{}),
		clients:    make(map[string][]*Client),
		logger:     log,
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			if h.remove(client) && h.OnSessionEmpty != nil {
				h.OnSessionEmpty(client.SessionID)
			}
		}
	}
}

// Register hands a client to Run. It reports false once the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister asks Run to drop a client. After the hub has stopped it returns
// at once; every client was already closed on the way out.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// remove reports whether the session has no clients left.
func (h *Hub) remove(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client.closed {
		return false
	}
	clients, ok := h.clients[client.SessionID]
	if !ok {
		return false
	}
	for i, c := range clients {
		if c == client {
			h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
			client.closed = true
			close(client.Send)
			break
		}
	}
	if len(h.clients[client.SessionID]) == 0 {
		delete(h.clients, client.SessionID)
		h.logger.Info("Hub", "Session has no clients left", map[string]interface{}{"session_id": client.SessionID})
		return true
	}
	return false
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, clients := range h.clients {
		for _, c := range clients {
			if !c.closed {
				c.closed = true
				close(c.Send)
			}
		}
		delete(h.clients, id)
	}
}

// ClientCount returns the number of open connections for a session.
func (h *Hub) ClientCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, cs := range h.clients {
		n += len(cs)
	}
	return n
}

// SendTurn implements service.TurnDelivery.
func (h *Hub) SendTurn(sessionID string, turn model.ConversationTurn) {
	data, err := json.Marshal(Frame{Type: FrameTurn, Data: turn})
	if err != nil {
		h.logger.Error("Hub", "Failed to encode turn", map[string]interface{}{"error": err.Error()})
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients[sessionID] {
		h.enqueueLocked(client, data)
	}
}

// BroadcastUnreadCount pushes the new badge number to every console.
func (h *Hub) BroadcastUnreadCount(count int) {
	data, err := json.Marshal(Frame{Type: FrameUnreadCount, Data: map[string]int{"count": count}})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, clients := range h.clients {
		for _, client := range clients {
			h.enqueueLocked(client, data)
		}
	}
}

// HandleEvent is subscribed to the event bus and turns alert events into
// unread-count frames.
func (h *Hub) HandleEvent(ctx context.Context, event events.Event) error {
	switch event.EventType() {
	case events.AlertRead, events.AlertsAllRead:
		count, ok := asInt(event.Payload()["unread_count"])
		if !ok {
			h.logger.Warn("Hub", "Alert event without unread_count", map[string]interface{}{"type": event.EventType()})
			return nil
		}
		h.BroadcastUnreadCount(count)
	}
	return nil
}

// enqueueLocked never blocks. h.mu must be held for reading, which keeps Send
// open for the duration. A client whose buffer is full is dropped; its pumps
// notice the closed channel and hang up.
func (h *Hub) enqueueLocked(client *Client, data []byte) {
	if client.closed {
		return
	}

	select {
	case client.Send <- data:
	default:
		h.logger.Warn("Hub", "Client Send buffer full, dropping client", map[string]interface{}{"session_id": client.SessionID})
		select {
		case h.unregister <- client:
		default:
		}
	}
}

func asInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
