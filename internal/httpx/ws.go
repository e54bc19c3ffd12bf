package httpx

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsIdlePingInterval = 30 * time.Second
	wsSendBuffer       = 16
)

type wsMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hub fans match updates out to every websocket subscribed to the match.
type Hub struct {
	mu      sync.Mutex
	clients map[*Client]struct{}
	closed  bool
}

type Client struct {
	hub  *Hub
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]struct{})}
}

// Register adds c unless the hub was already closed.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *Hub) Broadcast(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.mu.Lock()
	for client := range h.clients {
		client.trySend(data)
	}
	h.mu.Unlock()
}

// Close disconnects every client; later registrations are refused.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (c *Client) sendJSON(msg wsMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	if _, ok := c.hub.clients[c]; ok {
		c.trySend(data)
	}
}

// trySend drops the message when the client is not keeping up. Callers hold
// the hub lock.
func (c *Client) trySend(data []byte) {
	select {
	case c.send <- data:
	default:
	}
}

func writeWSWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	pingPayload := mustMarshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, pingPayload); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookup(w, r)
	if !ok {
		return
	}
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.log.WithError(err).Debug("websocket upgrade failed")
		return
	}
	conn.SetReadLimit(maxJSONBodyBytes)
	client := &Client{hub: m.hub, send: make(chan []byte, wsSendBuffer)}

	// Registering under the match lock keeps the snapshot ahead of any update.
	m.mu.Lock()
	registered := m.hub.Register(client)
	if registered {
		client.sendJSON(wsMessage{Type: "state", Payload: mustMarshal(map[string]any{"state": m.game.State()})})
	}
	m.mu.Unlock()
	if !registered {
		_ = conn.Close()
		return
	}
	m.log.WithField("subscribers", m.hub.Len()).Debug("websocket connected")

	go func() {
		defer conn.Close()
		if err := writeWSWithHeartbeat(conn, client.send); err != nil {
			m.log.WithError(err).Debug("websocket write failed")
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			m.hub.Unregister(client)
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			client.sendJSON(wsMessage{Type: "error", Payload: mustMarshal(errorPayload{Error: "invalid message", Status: http.StatusBadRequest})})
			continue
		}
		switch msg.Type {
		case "ping", "pong":
			continue
		case "state":
			m.mu.Lock()
			state := m.game.State()
			m.mu.Unlock()
			client.sendJSON(wsMessage{Type: "state", Payload: mustMarshal(map[string]any{"state": state})})
			continue
		}
		if _, err := m.execute(msg.Type, msg.Payload); err != nil {
			client.sendJSON(wsMessage{Type: "error", Payload: mustMarshal(errorPayload{
				Error:   err.Error(),
				Command: msg.Type,
				Status:  statusFor(err),
			})})
		}
	}
}
