package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/obsidianstack/launchdash/server/internal/api"
	"github.com/obsidianstack/launchdash/server/internal/dataset"
	"github.com/obsidianstack/launchdash/server/internal/logging"
	"github.com/obsidianstack/launchdash/server/internal/metrics"
	"github.com/obsidianstack/launchdash/server/internal/query"
)

const (
	// writeTimeout is the deadline for a single write to a client.
	writeTimeout = 10 * time.Second

	// pongWait is how long to wait for a pong response before treating the
	// connection as dead.
	pongWait = 60 * time.Second

	// pingPeriod controls how often the server sends WebSocket ping frames.
	// Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize bounds one incoming query message.
	maxMessageSize = 4096

	// sendBufSize is the per-client outgoing message buffer depth.
	sendBufSize = 16
)

// Events sent to clients.
const (
	EventOptions = "options"
	EventUpdate  = "update"
	EventError   = "error"
)

// Message is the JSON envelope sent to clients.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Hub serves the interactive query channel. Each client sends selections and
// receives both dashboard views for every selection it sends.
type Hub struct {
	ds       *dataset.Dataset
	metrics  *metrics.Metrics
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// client represents one connected WebSocket client.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// New creates a Hub answering queries from ds. m may be nil. allowedOrigins
// is the REST API's CORS list and is read the same way: empty or "*" admits
// any origin, and one "*" inside an entry matches any run of characters.
func New(ds *dataset.Dataset, m *metrics.Metrics, allowedOrigins []string) *Hub {
	return &Hub{
		ds:      ds,
		metrics: m,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		clients: make(map[*client]struct{}),
	}
}

// originChecker admits requests without an Origin header (non-browser
// clients) and browsers whose Origin matches allowed, case-insensitively.
func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	patterns := make([]string, 0, len(allowed))
	for _, o := range allowed {
		o = strings.ToLower(o)
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		patterns = append(patterns, o)
	}
	return func(r *http.Request) bool {
		origin := strings.ToLower(r.Header.Get("Origin"))
		if origin == "" {
			return true
		}
		for _, p := range patterns {
			if originMatch(p, origin) {
				return true
			}
		}
		return false
	}
}

func originMatch(pattern, origin string) bool {
	i := strings.IndexByte(pattern, '*')
	if i < 0 {
		return pattern == origin
	}
	prefix, suffix := pattern[:i], pattern[i+1:]
	return len(origin) >= len(prefix)+len(suffix) &&
		strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix)
}

// Run blocks until ctx is cancelled, then closes all active connections.
func (h *Hub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

// ServeHTTP upgrades the HTTP connection to WebSocket and serves the client.
// It sends the dropdown/slider options immediately on connect, then answers
// each query message with an update. Blocks until the connection closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, sendBufSize),
	}
	h.register(c)
	defer h.unregister(c)

	// Send the options immediately so the UI can build its inputs.
	h.metrics.ObserveQuery(metrics.KindOptions, metrics.TransportWS)
	if data, err := json.Marshal(Message{Event: EventOptions, Data: api.BuildOptions(h.ds)}); err == nil {
		h.enqueue(c, data)
	}

	go c.writePump()
	h.readPump(c) // blocks until connection closes
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// --- internal ---------------------------------------------------------------

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.metrics.SetWSClients(n)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.metrics.SetWSClients(n)
}

// enqueue hands msg to c's write pump. It reports false if c is gone or its
// buffer is full.
func (h *Hub) enqueue(c *client, msg []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// answer builds the reply for one incoming message.
func (h *Hub) answer(raw []byte) Message {
	req, err := decodeRequest(raw)
	if err != nil {
		h.metrics.ObserveInvalid(metrics.TransportWS)
		return Message{Event: EventError, Error: err.Error()}
	}
	q, err := req.Query(h.ds)
	if err != nil {
		h.metrics.ObserveInvalid(metrics.TransportWS)
		return Message{Event: EventError, Error: err.Error()}
	}

	h.metrics.ObserveQuery(metrics.KindSummary, metrics.TransportWS)
	h.metrics.ObserveQuery(metrics.KindCorrelation, metrics.TransportWS)
	return Message{Event: EventUpdate, Data: api.BuildUpdate(h.ds, q)}
}

func decodeRequest(raw []byte) (api.QueryRequest, error) {
	var req api.QueryRequest
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return api.QueryRequest{}, fmt.Errorf("%w: %v", query.ErrInvalidQuery, err)
	}
	return req, nil
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
	h.metrics.SetWSClients(0)
}

// writePump drains the client's send channel and forwards messages to the
// WebSocket connection. It also sends periodic ping frames. Runs in its own
// goroutine per client.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				// Channel was closed (hub is shutting down or client removed).
				c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump reads query messages from the connection and queues a reply for
// each. It also processes control frames (pong, close). Blocks until the
// connection closes or the client can no longer keep up.
func (h *Hub) readPump(c *client) {
	log := logging.New("ws")
	defer c.conn.Close()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		data, err := json.Marshal(h.answer(raw))
		if err != nil {
			log.Error("marshal reply", "err", err)
			continue
		}
		if !h.enqueue(c, data) {
			log.Warn("client too slow, disconnecting", "remote", c.conn.RemoteAddr().String())
			return
		}
	}
}
