package hub

import (
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/outlierline/internal/contracts"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 32
)

// Client is one websocket subscriber
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan Message
	hub  *Hub

	mu          sync.RWMutex
	team        string // empty = every game
	closed      bool
	connectedAt time.Time
}

func newClient(id string, conn *websocket.Conn, h *Hub, team string) *Client {
	return &Client{
		ID:          id,
		conn:        conn,
		send:        make(chan Message, sendBufferSize),
		hub:         h,
		team:        strings.ToUpper(team),
		connectedAt: time.Now(),
	}
}

// Team returns the subscription filter
func (c *Client) Team() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.team
}

func (c *Client) setTeam(team string) {
	c.mu.Lock()
	c.team = strings.ToUpper(strings.TrimSpace(team))
	c.mu.Unlock()
}

// wants reports whether the timeline matches the client's team filter
func (c *Client) wants(tl *contracts.Timeline) bool {
	team := c.Team()
	if team == "" {
		return true
	}
	for _, t := range tl.Teams {
		if strings.EqualFold(t, team) {
			return true
		}
	}
	return false
}

// trySend never blocks; false means the client is too slow or gone
func (c *Client) trySend(msg Message) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// closeSend ends the write pump; safe to call more than once
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.WithField("client_id", c.ID).WithError(err).Debug("Unexpected websocket close")
			}
			return
		}

		switch msg.Type {
		case MessageSubscribe:
			c.setTeam(msg.Team)
			c.trySend(Message{Type: MessageSubscribed, Team: c.Team(), SentAt: time.Now()})
		default:
			c.trySend(Message{Type: MessageError, Error: "unknown message type: " + msg.Type, SentAt: time.Now()})
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
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
