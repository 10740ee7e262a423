// Package ws pushes todo change events to connected clients. Each user
// may hold several connections (tabs, devices); events fan out to all of
// that user's connections and nobody else's.
package ws

import (
	"encoding/json"
	"sync"

	"todo_webapp/internal/domain"
	"todo_webapp/internal/logger"
)

// Event is the wire format for a pushed change.
type Event struct {
	Type string       `json:"type"`
	Data *domain.Todo `json:"data"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]map[*Client]struct{})}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

// TodoChanged implements service.TodoNotifier. Slow clients are skipped
// rather than blocking the write path.
func (h *Hub) TodoChanged(ownerID int64, event string, todo *domain.Todo) {
	msg, err := json.Marshal(Event{Type: event, Data: todo})
	if err != nil {
		logger.Error("ws event marshal failed", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[ownerID] {
		select {
		case c.send <- msg:
		default:
			logger.Warn("ws client send buffer full, dropping event", "user_id", ownerID)
		}
	}
}
