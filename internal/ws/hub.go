package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/arenaguard/arenaguard/internal/api"
	"github.com/arenaguard/arenaguard/internal/suspicion"
)

const (
	// writeWait bounds a single frame write to a client.
	writeWait = 10 * time.Second

	// pongTimeout is how long a connection may go without a pong
	// before it is considered dead. pingInterval must stay below it.
	pongTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second

	// queueDepth is the per-subscriber payload buffer; a subscriber
	// whose queue is full gets dropped instead of blocking the tick.
	queueDepth = 16

	// maxFrameSize caps inbound frames — clients only speak control
	// messages.
	maxFrameSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Origin policy is the reverse proxy's job.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Message is the envelope every broadcast carries. Data matches the
// GET /api/v1/snapshot response.
type Message struct {
	Event string               `json:"event"`
	Data  api.SnapshotResponse `json:"data"`
}

// Hub fans judge snapshots out to all connected WebSocket clients.
// The snapshot is built and marshalled once per tick, shared across
// subscribers.
type Hub struct {
	engine   *suspicion.Engine
	interval time.Duration

	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

// subscriber is one connected client: its connection plus the queue
// the broadcast loop feeds.
type subscriber struct {
	conn  *websocket.Conn
	queue chan []byte
}

// New creates a Hub broadcasting engine snapshots every interval.
func New(engine *suspicion.Engine, interval time.Duration) *Hub {
	return &Hub{
		engine:   engine,
		interval: interval,
		subs:     make(map[*subscriber]struct{}),
	}
}

// Run drives the broadcast ticker until ctx is cancelled, then closes
// every open connection.
func (h *Hub) Run(ctx context.Context) {
	tick := time.NewTicker(h.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case <-tick.C:
			if payload, err := h.snapshot(); err == nil {
				h.fanout(payload)
			}
		}
	}
}

// ServeHTTP upgrades the request and serves the client until its
// connection closes. The current snapshot is queued right away so the
// client does not wait for the next tick.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader already replied with the error.
		return
	}

	sub := &subscriber{
		conn:  conn,
		queue: make(chan []byte, queueDepth),
	}
	h.add(sub)
	defer h.drop(sub)

	if payload, err := h.snapshot(); err == nil {
		sub.offer(payload)
	}

	go sub.writeLoop()
	sub.readLoop()
}

// Count reports how many clients are currently connected.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// snapshot builds and marshals the current broadcast payload.
func (h *Hub) snapshot() ([]byte, error) {
	return json.Marshal(Message{
		Event: "snapshot",
		Data:  api.BuildSnapshot(h.engine),
	})
}

// fanout queues payload to every subscriber, dropping the slow ones.
func (h *Hub) fanout(payload []byte) {
	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.subs))
	for s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.RUnlock()

	for _, s := range subs {
		if !s.offer(payload) {
			h.drop(s)
		}
	}
}

func (h *Hub) add(s *subscriber) {
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
}

// drop removes a subscriber and closes its queue. Safe to call twice
// for the same subscriber (fanout and the ServeHTTP defer can race).
func (h *Hub) drop(s *subscriber) {
	h.mu.Lock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.queue)
	}
	h.mu.Unlock()
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs {
		close(s.queue)
		delete(h.subs, s)
	}
}

// offer enqueues payload without blocking; false means the queue is
// full.
func (s *subscriber) offer(payload []byte) bool {
	select {
	case s.queue <- payload:
		return true
	default:
		return false
	}
}

// writeLoop drains the queue onto the connection and keeps it alive
// with pings. Exits when the queue closes or a write fails.
func (s *subscriber) writeLoop() {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-s.queue:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.conn.WriteMessage(websocket.CloseMessage, nil) //nolint:errcheck
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ping.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop consumes inbound frames so pong and close control messages
// are processed; the payloads themselves are discarded. Returns when
// the peer goes away.
func (s *subscriber) readLoop() {
	defer s.conn.Close()
	s.conn.SetReadLimit(maxFrameSize)
	s.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongTimeout))
	})
	for {
		if _, _, err := s.conn.NextReader(); err != nil {
			return
		}
	}
}
