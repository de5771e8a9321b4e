package handlers

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

// Event types sent over WebSocket
const (
	EventGoalCreated     = "goal_created"
	EventGoalUpdated     = "goal_updated"
	EventGoalCompleted   = "goal_completed"
	EventGoalDeleted     = "goal_deleted"
	EventJournalUpdated  = "journal_updated"
	EventJournalDeleted  = "journal_deleted"
	EventChatUpdated     = "chat_updated"
	EventSettingsUpdated = "settings_updated"
	EventDataImported    = "data_imported"
	EventDayStarted      = "day_started"
)

// WSEvent is the JSON message sent to connected clients
type WSEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Hub fans change events out to every open client.
type Hub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]bool
	log   *zap.SugaredLogger
}

// Global hub instance
var WS = NewHub(zap.NewNop().Sugar())

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{conns: make(map[*websocket.Conn]bool), log: log}
}

func (h *Hub) register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = true
	h.log.Debugw("WS client connected", "total", len(h.conns))
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
	h.log.Debugw("WS client disconnected", "remaining", len(h.conns))
}

// Clients returns the number of open connections.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast sends an event to every connected client. Writes are
// serialized since a connection allows only one concurrent writer.
func (h *Hub) Broadcast(event WSEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.conns) == 0 {
		return
	}

	msg, err := json.Marshal(event)
	if err != nil {
		h.log.Errorw("WS broadcast marshal error", "type", event.Type, "error", err)
		return
	}

	for c := range h.conns {
		if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Warnw("WS write error", "error", err)
		}
	}
}

// WebSocketUpgrade is the middleware that checks the upgrade request and,
// when a passphrase is configured, the session token.
func WebSocketUpgrade() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if !deps.Auth.Enabled() {
			return c.Next()
		}

		// Authenticate via query param: ?token=<jwt>
		tokenString := c.Query("token")
		if tokenString == "" {
			// Also check Authorization header for non-browser clients
			authHeader := c.Get("Authorization")
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				tokenString = ""
			}
		}

		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authentication token",
			})
		}
		if _, err := deps.Auth.Verify(tokenString); err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}
		return c.Next()
	}
}

// HandleWebSocket keeps a client registered until it disconnects.
func HandleWebSocket(c *websocket.Conn) {
	WS.register(c)
	defer WS.unregister(c)

	// Keep connection alive; clients only send pings/keepalives.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
}
