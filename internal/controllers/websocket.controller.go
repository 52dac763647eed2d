package controllers

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"resmon/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// read-only stream, any origin may subscribe
		return true
	},
}

var clientSeq atomic.Uint64

// StreamController streams every published snapshot over WebSocket
type StreamController struct {
	hub    *services.SnapshotHub
	logger *zap.Logger
}

func NewStreamController(hub *services.SnapshotHub, logger *zap.Logger) *StreamController {
	return &StreamController{hub: hub, logger: logger}
}

// HandleWebSocket handles incoming WebSocket connections
func (sc *StreamController) HandleWebSocket(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		sc.logger.Warn("websocket upgrade failed", zap.String("ip", c.ClientIP()), zap.Error(err))
		return
	}

	client := &services.ClientConnection{
		ID:   c.ClientIP() + "-" + strconv.FormatUint(clientSeq.Add(1), 10),
		Conn: ws,
		Send: make(chan services.WebSocketMessage, 16),
	}

	if !sc.hub.Register(client) {
		ws.Close()
		return
	}

	go sc.readPump(client)
	go sc.writePump(client)
}

// readPump reads messages from the WebSocket client
func (sc *StreamController) readPump(client *services.ClientConnection) {
	defer func() {
		sc.hub.Unregister(client.ID)
		client.Conn.Close()
	}()

	for {
		var msg services.WebSocketMessage
		if err := client.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				sc.logger.Debug("websocket read error", zap.String("client", client.ID), zap.Error(err))
			}
			return
		}

		// the stream is one-way; protocol-level pings are answered by gorilla
		if msg.Type == "unsubscribe" {
			return
		}
		sc.logger.Debug("ignoring websocket message", zap.String("type", msg.Type))
	}
}

// writePump writes messages to the WebSocket client
func (sc *StreamController) writePump(client *services.ClientConnection) {
	defer client.Conn.Close()

	for msg := range client.Send {
		_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.Conn.WriteJSON(msg); err != nil {
			sc.logger.Debug("websocket write error", zap.String("client", client.ID), zap.Error(err))
			return
		}
	}

	_ = client.Conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait),
	)
}
