package hub

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wonny/outlierline/internal/contracts"
	"github.com/wonny/outlierline/internal/realtime/cache"
	"github.com/wonny/outlierline/pkg/logger"
)

// Message types
const (
	MessageTimeline   = "timeline"
	MessageSubscribed = "subscribed"
	MessageError      = "error"
	MessageSubscribe  = "subscribe"
)

// Message is sent to subscribers
type Message struct {
	Type     string              `json:"type"`
	Timeline *contracts.Timeline `json:"timeline,omitempty"`
	Team     string              `json:"team,omitempty"`
	Error    string              `json:"error,omitempty"`
	SentAt   time.Time           `json:"sent_at"`
}

// ClientMessage is read from subscribers: {"type":"subscribe","team":"LAL"}
type ClientMessage struct {
	Type string `json:"type"`
	Team string `json:"team"`
}

// Hub pushes freshly built timelines to websocket subscribers
// ⭐ SSOT: 실시간 타임라인 전송은 여기서만
type Hub struct {
	logger   *logger.Logger
	upgrader websocket.Upgrader
	recent   *cache.TimelineCache // nil disables replay

	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool

	totalConnections atomic.Int64
	totalMessages    atomic.Int64
}

// New creates a hub
func New(log *logger.Logger) *Hub {
	return &Hub{
		logger: log.Component("hub"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*Client]struct{}),
	}
}

// WithCache keeps broadcast timelines and replays them to new subscribers
func (h *Hub) WithCache(c *cache.TimelineCache) *Hub {
	h.recent = c
	return h
}

// ServeHTTP upgrades the request and registers a subscriber.
// ?team=LAL limits the stream to games of that team.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		http.Error(w, "hub closed", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := newClient(uuid.NewString(), conn, h, r.URL.Query().Get("team"))
	if !h.register(c) {
		conn.Close()
		return
	}

	h.replay(c)

	go c.writePump()
	go c.readPump()
}

// replay queues cached timelines for a new subscriber, oldest first
func (h *Hub) replay(c *Client) {
	if h.recent == nil {
		return
	}
	recent := h.recent.Recent()
	for i := len(recent) - 1; i >= 0; i-- {
		tl := recent[i]
		if !c.wants(&tl) {
			continue
		}
		if !c.trySend(Message{Type: MessageTimeline, Timeline: &tl, SentAt: time.Now()}) {
			return
		}
	}
}

func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	h.totalConnections.Add(1)
	h.logger.WithFields(map[string]interface{}{
		"client_id": c.ID,
		"team":      c.Team(),
		"clients":   total,
	}).Info("Subscriber connected")
	return true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	total := len(h.clients)
	h.mu.Unlock()

	c.closeSend()
	if ok {
		h.logger.WithFields(map[string]interface{}{
			"client_id": c.ID,
			"clients":   total,
		}).Info("Subscriber disconnected")
	}
}

// Broadcast sends the timeline to every matching subscriber and returns how
// many received it. Subscribers with a full buffer are disconnected.
func (h *Hub) Broadcast(tl contracts.Timeline) int {
	if h.recent != nil {
		h.recent.Put(tl)
	}

	msg := Message{Type: MessageTimeline, Timeline: &tl, SentAt: time.Now()}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		if c.wants(&tl) {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()

	sent := 0
	for _, c := range targets {
		if c.trySend(msg) {
			sent++
			continue
		}
		h.logger.WithField("client_id", c.ID).Warn("Subscriber too slow, disconnecting")
		h.unregister(c)
	}

	h.totalMessages.Add(int64(sent))
	h.logger.WithFields(map[string]interface{}{
		"game_id": tl.GameID,
		"sent":    sent,
	}).Debug("Timeline broadcast")

	return sent
}

// ClientCount returns the number of connected subscribers
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats reports hub counters
type Stats struct {
	ActiveClients    int   `json:"active_clients"`
	TotalConnections int64 `json:"total_connections"`
	TotalMessages    int64 `json:"total_messages"`
	Cached           int   `json:"cached_timelines"`
}

// Stats returns the hub counters
func (h *Hub) Stats() Stats {
	stats := Stats{
		ActiveClients:    h.ClientCount(),
		TotalConnections: h.totalConnections.Load(),
		TotalMessages:    h.totalMessages.Load(),
	}
	if h.recent != nil {
		stats.Cached = h.recent.Stats().FreshCount
	}
	return stats
}

// Close disconnects every subscriber and refuses new ones
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true

	h.logger.WithField("clients", len(h.clients)).Info("Closing hub")
	for c := range h.clients {
		c.closeSend()
		delete(h.clients, c)
	}
}
