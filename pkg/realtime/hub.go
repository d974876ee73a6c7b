package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"hirfa/pkg/logger"
)

// Hub tracks the open websocket clients of this replica, grouped by user.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	log     *logger.Logger
	closing bool
}

func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		rooms: make(map[string]map[*Client]struct{}),
		log:   log,
	}
}

func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closing {
		return false
	}
	room, ok := h.rooms[c.UserID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[c.UserID] = room
	}
	room[c] = struct{}{}
	h.log.Debug("Websocket client registered", "client_id", c.ID, "user_id", c.UserID, "connections", len(room))
	return true
}

func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	room, ok := h.rooms[c.UserID]
	if !ok {
		return
	}
	if _, ok := room[c]; !ok {
		return
	}
	delete(room, c)
	close(c.send)
	if len(room) == 0 {
		delete(h.rooms, c.UserID)
	}
	h.log.Debug("Websocket client unregistered", "client_id", c.ID, "user_id", c.UserID)
}

// Publish delivers to this replica's clients only. A client whose buffer
// is full is dropped rather than blocking the publisher.
func (h *Hub) Publish(_ context.Context, userID, msgType string, payload any) error {
	data, err := json.Marshal(Message{Type: msgType, Payload: payload, Timestamp: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal realtime message: %w", err)
	}
	h.deliver(userID, data)
	return nil
}

func (h *Hub) deliver(userID string, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.rooms[userID] {
		select {
		case c.send <- data:
		default:
			h.log.Warn("Websocket client too slow, disconnecting", "client_id", c.ID, "user_id", userID)
			h.removeLocked(c)
		}
	}
}

func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[userID])
}

// Close disconnects every client and refuses new registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closing = true
	for _, room := range h.rooms {
		for c := range room {
			h.removeLocked(c)
		}
	}
}
