package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ascent/pkg/domain/interfaces"
	"github.com/secmon-lab/ascent/pkg/domain/model"
	"github.com/secmon-lab/ascent/pkg/domain/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// EventNotification is the event type of a pushed notification
const EventNotification = "notification"

// Event is the JSON frame sent to browsers
type Event struct {
	Type string              `json:"type"`
	Data *model.Notification `json:"data"`
}

type client struct {
	userID types.UserID
	conn   *websocket.Conn
	send   chan []byte
	once   sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub keeps the live WebSocket connections of signed-in users and pushes new
// notifications to every connection of the recipient. A client that cannot
// keep up is disconnected.
type Hub struct {
	mu       sync.RWMutex
	clients  map[types.UserID]map[*client]struct{}
	upgrader websocket.Upgrader
	buffer   int
}

var _ interfaces.Publisher = (*Hub)(nil)

// Option configures Hub
type Option func(*Hub)

// WithSendBuffer sets the number of frames queued per connection
func WithSendBuffer(n int) Option {
	return func(h *Hub) {
		h.buffer = n
	}
}

// WithCheckOrigin sets the origin policy of the upgrader
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = fn
	}
}

// NewHub creates an empty hub
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		clients: make(map[types.UserID]map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		buffer: 16,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Publish implements interfaces.Publisher
func (h *Hub) Publish(ctx context.Context, n *model.Notification) {
	if n == nil {
		return
	}
	frame, err := json.Marshal(Event{Type: EventNotification, Data: n})
	if err != nil {
		ctxlog.From(ctx).Error("failed to encode notification event", "error", err)
		return
	}

	h.mu.RLock()
	var slow []*client
	for c := range h.clients[n.RecipientID] {
		select {
		case c.send <- frame:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		ctxlog.From(ctx).Warn("Dropping slow WebSocket client", "userID", c.userID)
		h.unregister(c)
	}
}

// ConnectionCount returns the number of live connections of userID
func (h *Hub) ConnectionCount(userID types.UserID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.clients {
		for c := range set {
			c.close()
		}
		delete(h.clients, userID)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[c.userID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			c.close()
		}
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
	}
}

// ServeWS upgrades the request and serves the connection of userID until it
// is closed by either side
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, userID types.UserID) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to upgrade WebSocket connection", goerr.V("userID", userID))
	}

	c := &client{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, h.buffer),
	}
	h.register(c)

	ctx := r.Context()
	ctxlog.From(ctx).Debug("WebSocket client connected", "userID", userID)

	go h.writePump(ctx, c)
	h.readPump(ctx, c)
	return nil
}

// readPump consumes control frames until the connection fails
func (h *Hub) readPump(ctx context.Context, c *client) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
		ctxlog.From(ctx).Debug("WebSocket client disconnected", "userID", c.userID)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ctxlog.From(ctx).Debug("WebSocket read failed", "error", err, "userID", c.userID)
			}
			return
		}
	}
}

// writePump is the only writer of the connection
func (h *Hub) writePump(ctx context.Context, c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				ctxlog.From(ctx).Debug("WebSocket write failed", "error", err, "userID", c.userID)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
