// Package ws implements the WebSocket adapter that pushes live fleet
// updates to dashboard clients.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

// writeTimeout bounds each per-client write so one stalled dashboard
// cannot hold up a broadcast to the others.
const writeTimeout = 5 * time.Second

// Message is the envelope for every frame sent to dashboard clients.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// conn wraps a single dashboard connection.
type conn struct {
	ws     *websocket.Conn
	remote string
	cancel context.CancelFunc
}

// Hub tracks connected dashboards and fans events out to them.
type Hub struct {
	mu     sync.RWMutex
	conns  map[*conn]struct{}
	logger *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		conns:  make(map[*conn]struct{}),
		logger: logger,
	}
}

// HandleWS upgrades the request, registers the dashboard and greets it
// with a connection.established frame carrying the live client count.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // CORS handled by middleware
	})
	if err != nil {
		h.logger.Error("websocket accept failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	c := &conn{ws: ws, remote: r.RemoteAddr, cancel: cancel}

	h.mu.Lock()
	h.conns[c] = struct{}{}
	clients := len(h.conns)
	h.mu.Unlock()

	h.logger.Info("dashboard connected", "remote", c.remote, "clients", clients)

	hello := fmt.Sprintf(`{"clients":%d}`, clients)
	h.send(ctx, c, Message{Type: "connection.established", Payload: json.RawMessage(hello)})

	// Read loop: dashboards never send application frames, this only
	// consumes pings and detects the disconnect.
	go func() {
		defer func() {
			h.remove(c)
			_ = ws.Close(websocket.StatusNormalClosure, "")
		}()
		for {
			if _, _, err := ws.Read(ctx); err != nil {
				return
			}
		}
	}()
}

// Broadcast fans a frame out to every connected dashboard. Clients that
// fail their write are dropped.
func (h *Hub) Broadcast(ctx context.Context, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("websocket marshal failed", "type", msg.Type, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.conns {
		if err := h.write(ctx, c, data); err != nil {
			h.logger.Debug("dashboard write failed", "remote", c.remote, "error", err)
			go h.remove(c)
		}
	}
}

// ConnectionCount reports the number of connected dashboards.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

func (h *Hub) send(ctx context.Context, c *conn, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("websocket marshal failed", "type", msg.Type, "error", err)
		return
	}
	if err := h.write(ctx, c, data); err != nil {
		h.logger.Debug("dashboard write failed", "remote", c.remote, "error", err)
		h.remove(c)
	}
}

func (h *Hub) write(ctx context.Context, c *conn, data []byte) error {
	wctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return c.ws.Write(wctx, websocket.MessageText, data)
}

func (h *Hub) remove(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[c]; ok {
		c.cancel()
		delete(h.conns, c)
		h.logger.Info("dashboard disconnected", "remote", c.remote, "clients", len(h.conns))
	}
}
