package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/jhlj/backend/pkg/logger"
)

// writeTimeout bounds a single broadcast write per client.
const writeTimeout = 5 * time.Second

// Hub fans index refresh events out to connected WebSocket clients
// ⭐ SSOT: WebSocket 브로드캐스트는 이 허브에서만
type Hub struct {
	upgrader websocket.Upgrader
	logger   *logger.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewHub creates a new broadcast hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 대시보드는 다른 오리진에서 서빙된다
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  log.WithField("module", "ws"),
		clients: make(map[*websocket.Conn]bool),
	}
}

// ServeWS upgrades the request and registers the connection until the
// peer goes away
// GET /ws
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.WithField("clients", count).Debug("WebSocket client connected")

	// The read loop discards inbound frames; it only exists to notice
	// the disconnect.
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends one JSON event to every connected client
func (h *Hub) Broadcast(event string) {
	msg, err := json.Marshal(map[string]string{"event": event})
	if err != nil {
		return
	}

	h.mu.Lock()
	var dead []*websocket.Conn
	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			dead = append(dead, conn)
		}
	}
	for _, conn := range dead {
		delete(h.clients, conn)
		conn.Close()
	}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.WithFields(map[string]interface{}{
		"event":   event,
		"clients": count,
	}).Debug("Broadcast sent")
}

// NotifyIndexRefreshed tells clients a new collection cycle landed
func (h *Hub) NotifyIndexRefreshed() {
	h.Broadcast("index_refreshed")
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	h.mu.Unlock()
}
