package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// MessageType identifies a realtime event.
type MessageType string

const (
	MessageTypeDatabaseChanged MessageType = "database_changed"
	MessageTypeBookingStatus   MessageType = "booking_status"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBuffer     = 32
)

// ErrHubClosed is returned by Serve once the hub has stopped.
var ErrHubClosed = errors.New("websocket hub closed")

// Message is the JSON frame pushed to clients.
type Message struct {
	Type      MessageType `json:"type"`
	Version   int64       `json:"version,omitempty"`
	Source    string      `json:"source,omitempty"`
	BookingID string      `json:"bookingId,omitempty"`
	Status    string      `json:"status,omitempty"`
	Date      string      `json:"date,omitempty"`
	Time      string      `json:"time,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp int64       `json:"timestamp"`

	// Recipients restricts delivery to these user ids and admins. Empty means every client.
	Recipients []string `json:"-"`
}

// Identity describes who is behind a connection. Zero value is an anonymous viewer.
type Identity struct {
	UserID string
	Admin  bool
}

// Client is one websocket connection.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	identity Identity
}

type envelope struct {
	msg  *Message
	data []byte
}

// Hub fans store and booking events out to connected clients. Slow clients are dropped.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan envelope
	done       chan struct{}
	upgrader   websocket.Upgrader
	logger     *zap.Logger
	onCount    func(int)

	mu    sync.RWMutex
	count int
}

// NewHub creates a hub. onCount, if set, receives the client count after every change.
func NewHub(allowedOrigins []string, logger *zap.Logger, onCount func(int)) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan envelope, 256),
		done:       make(chan struct{}),
		logger:     logger,
		onCount:    onCount,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

// Run processes registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for client := range h.clients {
				h.drop(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.setCount(len(h.clients))
			h.logger.Debug("websocket client registered", zap.String("user_id", client.identity.UserID), zap.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
				h.logger.Debug("websocket client unregistered", zap.String("user_id", client.identity.UserID), zap.Int("clients", len(h.clients)))
			}

		case env := <-h.broadcast:
			for client := range h.clients {
				if !client.accepts(env.msg) {
					continue
				}
				select {
				case client.send <- env.data:
				default:
					h.logger.Warn("websocket client too slow, dropping", zap.String("user_id", client.identity.UserID))
					h.drop(client)
				}
			}
		}
	}
}

// Publish queues msg for delivery. It never blocks; when the queue is full the message is dropped.
func (h *Hub) Publish(msg *Message) {
	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().UnixMilli()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal websocket message", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- envelope{msg: msg, data: data}:
	default:
		h.logger.Warn("websocket broadcast queue full, dropping message", zap.String("type", string(msg.Type)))
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}

// Serve upgrades the request and attaches the connection to the hub.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, identity Identity) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	client := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), identity: identity}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return ErrHubClosed
	}

	go client.writePump()
	go client.readPump()
	return nil
}

func (h *Hub) drop(client *Client) {
	delete(h.clients, client)
	close(client.send)
	h.setCount(len(h.clients))
}

func (h *Hub) setCount(n int) {
	h.mu.Lock()
	h.count = n
	h.mu.Unlock()
	if h.onCount != nil {
		h.onCount(n)
	}
}

func (c *Client) accepts(msg *Message) bool {
	if len(msg.Recipients) == 0 || c.identity.Admin {
		return true
	}
	for _, id := range msg.Recipients {
		if id != "" && id == c.identity.UserID {
			return true
		}
	}
	return false
}

// readPump discards inbound frames and detects disconnects.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket read error", zap.Error(err))
			}
			return
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
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
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

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(r *http.Request) bool { return true }
		}
		set[origin] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}
