// Package realtime connects the two websocket legs of the service: the
// consumer that ingests lifecycle events from the provider feed, and the
// hub that pushes the reconciled meeting list out to browser clients.
package realtime

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/Amazing-Persona-101/videome/internal/models"
)

// Heartbeat settings, in seconds.
const (
	PingInterval = 30
	PongWait     = 60
)

// Browser-facing event names.
const (
	EventMeetingsUpdated = "meetings.updated"
	EventFeedReady       = "feed.ready"
)

// WSMessage is the websocket message envelope shared with the UI.
type WSMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Hub maintains the set of connected browser clients. There is a single
// lobby: every client sees the same meeting list.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{clients: make(map[string]*Client), logger: logger}
}

// Register adds a client to the lobby.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("client joined lobby", zap.String("client_id", c.ID), zap.Int("clients", n))
}

// Unregister removes a client from the lobby.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("client left lobby", zap.String("client_id", c.ID), zap.Int("clients", n))
}

// ClientCount returns the number of connected browsers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastViews pushes the full meeting list to every client.
func (h *Hub) BroadcastViews(views []models.MeetingView) {
	h.broadcast(EventMeetingsUpdated, views)
}

// BroadcastReady tells clients whether the upstream feed is connected.
func (h *Hub) BroadcastReady(ready bool) {
	h.broadcast(EventFeedReady, map[string]bool{"ready": ready})
}

func (h *Hub) broadcast(event string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	msg := WSMessage{Event: event, Data: data}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}
