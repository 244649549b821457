package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/ripple/pkg/hook"
	"github.com/vango-dev/ripple/pkg/view"
)

const (
	writeWait    = 10 * time.Second
	clientBuffer = 16
)

// renderEvent is sent to websocket clients for every render.
type renderEvent struct {
	Component string     `json:"component"`
	Instance  uint64     `json:"instance"`
	HTML      string     `json:"html"`
	Tree      *view.Node `json:"tree,omitempty"`
}

func newRenderEvent(inst *hook.Instance, output any) renderEvent {
	ev := renderEvent{
		Component: inst.Name(),
		Instance:  inst.ID(),
		HTML:      renderString(output),
	}
	if n, ok := output.(*view.Node); ok {
		ev.Tree = n
	}
	return ev
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// hub fans render events out to connected websocket clients. Slow clients
// whose buffer is full miss events rather than block the renderer.
type hub struct {
	mu       sync.Mutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	logger   *slog.Logger

	// snapshot returns the events a new client starts from.
	snapshot func() []renderEvent
}

func newHub(logger *slog.Logger, snapshot func() []renderEvent) *hub {
	return &hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:   logger,
		snapshot: snapshot,
	}
}

// Patch implements hook.Patcher.
func (h *hub) Patch(inst *hook.Instance, _, next any) {
	h.broadcast(newRenderEvent(inst, next))
}

func (h *hub) broadcast(ev renderEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("hub: encode event", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("hub: client buffer full, dropping event", "remote", c.conn.RemoteAddr().String())
		}
	}
}

// Len returns the number of connected clients.
func (h *hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and streams events until the client goes
// away.
func (h *hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("hub: upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}

	// Queue the snapshot before registering so it precedes any broadcast.
	for _, ev := range h.snapshot() {
		if data, err := json.Marshal(ev); err == nil {
			select {
			case c.send <- data:
			default:
			}
		}
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("hub: client connected", "remote", conn.RemoteAddr().String())

	go h.writeLoop(c)
	h.readLoop(c)
}

// readLoop discards client messages and unregisters the client once the
// connection closes.
func (h *hub) readLoop(c *client) {
	defer func() {
		h.mu.Lock()
		delete(h.clients, c)
		h.mu.Unlock()
		close(c.send)
		h.logger.Debug("hub: client disconnected", "remote", c.conn.RemoteAddr().String())
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *hub) writeLoop(c *client) {
	defer c.conn.Close()
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// closeAll disconnects every client.
func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.conn.Close()
	}
}
