package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/fathima-sithara/chatroom-service/internal/events"
	"github.com/fathima-sithara/chatroom-service/internal/metrics"
	"go.uber.org/zap"
)

// Hub pushes stored messages to connected clients that may see them.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	buffer  int
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewHub(buffer int, m *metrics.Metrics, log *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = 256
	}
	return &Hub{
		clients: make(map[string]*Client),
		buffer:  buffer,
		metrics: m,
		log:     log,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	h.metrics.ConnectionOpened()
	h.log.Debug("ws client registered", zap.String("conn_id", c.ID), zap.String("user", c.Name))
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c.ID]
	if ok {
		delete(h.clients, c.ID)
		close(c.send)
	}
	h.mu.Unlock()
	if ok {
		h.metrics.ConnectionClosed()
		h.log.Debug("ws client unregistered", zap.String("conn_id", c.ID), zap.String("user", c.Name))
	}
}

// Publish implements events.Publisher.
func (h *Hub) Publish(_ context.Context, evt events.Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	var slow []*Client
	h.mu.RLock()
	for _, c := range h.clients {
		if !evt.Message.VisibleTo(c.Name) {
			continue
		}
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Warn("dropping slow ws client", zap.String("conn_id", c.ID), zap.String("user", c.Name))
		h.unregister(c)
	}
	return nil
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Close() error {
	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]*Client)
	h.mu.Unlock()

	for _, c := range clients {
		close(c.send)
		h.metrics.ConnectionClosed()
	}
	return nil
}
