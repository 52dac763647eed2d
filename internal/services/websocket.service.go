package services

import (
	"context"
	"sync"
	"time"

	"resmon/internal/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocketMessage represents a message sent over WebSocket
type WebSocketMessage struct {
	Type      string    `json:"type"` // "snapshot" or "error"
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// ClientConnection represents a connected WebSocket client
type ClientConnection struct {
	ID   string
	Conn *websocket.Conn
	Send chan WebSocketMessage
}

// SnapshotHub keeps the latest published snapshot and fans it out to
// connected WebSocket clients
type SnapshotHub struct {
	clients    map[string]*ClientConnection
	broadcast  chan WebSocketMessage
	register   chan *ClientConnection
	unregister chan string
	done       chan struct{}
	logger     *zap.Logger

	mu        sync.RWMutex
	latest    models.MetricsSnapshot
	hasLatest bool
}

// NewSnapshotHub creates a hub; call Run to start dispatching
func NewSnapshotHub(logger *zap.Logger) *SnapshotHub {
	return &SnapshotHub{
		clients:    make(map[string]*ClientConnection),
		broadcast:  make(chan WebSocketMessage, 16),
		register:   make(chan *ClientConnection),
		unregister: make(chan string),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run manages the hub's event loop until ctx is cancelled
func (h *SnapshotHub) Run(ctx context.Context) error {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for id, client := range h.clients {
				close(client.Send)
				delete(h.clients, id)
			}
			return nil

		case client := <-h.register:
			h.clients[client.ID] = client
			h.logger.Info("websocket client connected",
				zap.String("client", client.ID),
				zap.Int("clients", len(h.clients)),
			)

			if snapshot, ok := h.Latest(); ok {
				h.offer(client, snapshotMessage(snapshot))
			}

		case clientID := <-h.unregister:
			if client, exists := h.clients[clientID]; exists {
				delete(h.clients, clientID)
				close(client.Send)
			}
			h.logger.Info("websocket client disconnected",
				zap.String("client", clientID),
				zap.Int("clients", len(h.clients)),
			)

		case msg := <-h.broadcast:
			for _, client := range h.clients {
				h.offer(client, msg)
			}
		}
	}
}

// offer drops the message if the client's send buffer is full
func (h *SnapshotHub) offer(client *ClientConnection, msg WebSocketMessage) {
	select {
	case client.Send <- msg:
	default:
		h.logger.Debug("websocket client lagging, message dropped", zap.String("client", client.ID))
	}
}

// Publish records the snapshot as the latest and queues it for clients
func (h *SnapshotHub) Publish(snapshot models.MetricsSnapshot) {
	h.mu.Lock()
	h.latest = snapshot
	h.hasLatest = true
	h.mu.Unlock()

	select {
	case h.broadcast <- snapshotMessage(snapshot):
	default:
		// Channel full, clients will catch up on the next tick
	}
}

// Latest returns the most recently published snapshot
func (h *SnapshotHub) Latest() (models.MetricsSnapshot, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest, h.hasLatest
}

// Register adds a new client to the hub. It reports false once the hub has stopped.
func (h *SnapshotHub) Register(client *ClientConnection) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub
func (h *SnapshotHub) Unregister(clientID string) {
	select {
	case h.unregister <- clientID:
	case <-h.done:
	}
}

func snapshotMessage(snapshot models.MetricsSnapshot) WebSocketMessage {
	return WebSocketMessage{
		Type:      "snapshot",
		Timestamp: snapshot.Timestamp,
		Data:      snapshot,
	}
}
