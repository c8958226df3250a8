// Package ws streams simulation snapshots to websocket clients.
package ws

import (
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sasha-s/go-deadlock"

	"github.com/birnsj/Project9-V1-sub002/internal/sim"
	"github.com/birnsj/Project9-V1-sub002/internal/telemetry"
)

const (
	TypeSnapshot = "snapshot"

	defaultSendBuffer   = 8
	defaultWriteTimeout = 5 * time.Second
)

// Message is the frame written to subscribers.
type Message struct {
	Type     string       `json:"type"`
	SentAt   int64        `json:"sentAt"`
	Snapshot sim.Snapshot `json:"snapshot"`
}

type HubConfig struct {
	Logger       telemetry.Logger
	Metrics      telemetry.Metrics
	SendBuffer   int
	WriteTimeout time.Duration
	Now          func() time.Time
}

// Hub fans snapshots out to every connected client. A client whose send
// buffer is full is disconnected rather than slowing the tick loop.
type Hub struct {
	logger       telemetry.Logger
	metrics      telemetry.Metrics
	upgrader     websocket.Upgrader
	sendBuffer   int
	writeTimeout time.Duration
	now          func() time.Time

	mu     deadlock.Mutex
	subs   map[*subscriber]struct{}
	latest []byte
	closed bool
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once
}

func NewHub(cfg HubConfig) *Hub {
	logger := cfg.Logger
	if logger == nil {
		logger = telemetry.LoggerFunc(nil)
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics()
	}
	sendBuffer := cfg.SendBuffer
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	writeTimeout := cfg.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Hub{
		logger:  logger,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *nethttp.Request) bool {
				return true
			},
		},
		sendBuffer:   sendBuffer,
		writeTimeout: writeTimeout,
		now:          now,
		subs:         make(map[*subscriber]struct{}),
	}
}

// Handle upgrades the request and keeps the connection subscribed until the
// client goes away. The latest snapshot, if any, is sent immediately.
func (h *Hub) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("websocket upgrade failed from %s: %v", r.RemoteAddr, err)
		return
	}

	sub := &subscriber{
		conn: conn,
		send: make(chan []byte, h.sendBuffer),
		done: make(chan struct{}),
	}
	if !h.register(sub) {
		message := websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down")
		conn.WriteMessage(websocket.CloseMessage, message)
		conn.Close()
		return
	}

	go h.writeLoop(sub)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.unregister(sub)
			return
		}
	}
}

func (h *Hub) register(sub *subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.subs[sub] = struct{}{}
	if h.latest != nil {
		sub.send <- h.latest
	}
	h.metrics.Store("ws.subscribers", uint64(len(h.subs)))
	return true
}

func (h *Hub) unregister(sub *subscriber) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.metrics.Store("ws.subscribers", uint64(len(h.subs)))
	h.mu.Unlock()
	sub.close()
}

func (h *Hub) writeLoop(sub *subscriber) {
	for {
		select {
		case <-sub.done:
			return
		case data := <-sub.send:
			sub.conn.SetWriteDeadline(h.now().Add(h.writeTimeout))
			if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.unregister(sub)
				return
			}
		}
	}
}

func (s *subscriber) close() {
	s.once.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// Broadcast encodes snap and queues it for every subscriber.
func (h *Hub) Broadcast(snap sim.Snapshot) error {
	data, err := json.Marshal(Message{Type: TypeSnapshot, SentAt: h.now().UnixMilli(), Snapshot: snap})
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.latest = data
	for sub := range h.subs {
		select {
		case sub.send <- data:
		default:
			h.logger.Printf("dropping slow websocket client %s", sub.conn.RemoteAddr())
			h.metrics.Add("ws.dropped_clients", 1)
			delete(h.subs, sub)
			sub.close()
		}
	}
	h.metrics.Add("ws.broadcasts", 1)
	h.metrics.Store("ws.subscribers", uint64(len(h.subs)))
	return nil
}

// Subscribers reports how many clients are connected.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := h.subs
	h.subs = make(map[*subscriber]struct{})
	h.closed = true
	h.mu.Unlock()

	for sub := range subs {
		message := websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down")
		sub.conn.WriteControl(websocket.CloseMessage, message, h.now().Add(time.Second))
		sub.close()
	}
}
