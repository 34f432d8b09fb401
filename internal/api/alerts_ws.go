package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/ivtracker/internal/contracts"
	"github.com/wonny/ivtracker/internal/dashboard"
	"github.com/wonny/ivtracker/pkg/logger"
)

const (
	pingInterval = 30 * time.Second
	pongWait     = 60 * time.Second
	writeWait    = 10 * time.Second
	sendBuffer   = 8
)

// AlertMessage is pushed to websocket clients after every fresh batch
type AlertMessage struct {
	Type        string            `json:"type"`
	GeneratedAt time.Time         `json:"generated_at"`
	Alerts      []dashboard.Alert `json:"alerts"`
}

// AlertHub fans alert messages out to websocket clients.
// The latest message is replayed to new clients.
// ⭐ SSOT: websocket alert delivery lives here only
type AlertHub struct {
	upgrader websocket.Upgrader
	logger   *logger.Logger

	mu      sync.RWMutex
	clients map[*wsClient]struct{}
	last    []byte
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewAlertHub creates an empty hub
func NewAlertHub(log *logger.Logger) *AlertHub {
	return &AlertHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger:  log.Module("alerts_ws"),
		clients: make(map[*wsClient]struct{}),
	}
}

// Clients returns the number of connected clients
func (h *AlertHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish broadcasts the STRONG_BUY alerts of a batch. Slow clients that
// cannot keep up are dropped.
func (h *AlertHub) Publish(result *contracts.BatchResult) {
	msg := AlertMessage{
		Type:        "alerts",
		GeneratedAt: result.GeneratedAt,
		Alerts:      dashboard.Alerts(result.Rows),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode alert message")
		return
	}

	h.mu.Lock()
	h.last = data
	var dropped []*wsClient
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			dropped = append(dropped, c)
		}
	}
	for _, c := range dropped {
		h.removeLocked(c)
	}
	clients := len(h.clients)
	h.mu.Unlock()

	h.logger.WithFields(map[string]interface{}{
		"alerts":  len(msg.Alerts),
		"clients": clients,
		"dropped": len(dropped),
	}).Info("Alerts published")
}

// ServeWS upgrades the request and streams alert messages
// GET /ws/alerts
func (h *AlertHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	h.mu.Unlock()

	go h.writePump(c)
	h.readPump(c)
}

// readPump discards client messages and detects disconnects
func (h *AlertHub) readPump(c *wsClient) {
	defer h.remove(c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *AlertHub) writePump(c *wsClient) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *AlertHub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *AlertHub) removeLocked(c *wsClient) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}
