package websocket

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a frame to the browser
	writeWait = 10 * time.Second

	// Time allowed between pongs before the tab counts as gone
	pongWait = 60 * time.Second

	// Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Subscribe frames are tiny; anything larger is refused
	maxMessageSize = 512

	sendBuffer = 256
)

// Client is one browser tab connected for live inbox updates. A tab shows
// a single list page, so it holds at most one page subscription.
type Client struct {
	ID     string
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	logger *slog.Logger

	// page is owned by the ReadPump goroutine
	page *PageKey
	// closed is guarded by hub.mu and set once send is closed
	closed bool
}

// NewClient creates a Client for conn
func NewClient(hub *Hub, conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		ID:     uuid.NewString(),
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		logger: logger,
	}
}

// ReadPump reads subscribe and unsubscribe frames until the tab goes away,
// then unregisters the client
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) && c.logger != nil {
				c.logger.Warn("websocket read error", slog.String("client_id", c.ID), slog.Any("error", err))
			}
			return
		}
		c.handleMessage(message)
	}
}

// WritePump forwards hub frames to the tab and keeps the connection alive.
// Frames queued while a write was in progress are written together, with
// repeated identical frames sent once: a burst of arrivals invalidating the
// same page reloads the tab a single time.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case first, ok := <-c.send:
			if !ok {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			frames, closed := c.drain(first)
			for _, frame := range frames {
				c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
					return
				}
			}
			if closed {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// drain collects first and every frame already queued behind it, skipping
// duplicates. It reports whether the hub closed the queue.
func (c *Client) drain(first []byte) ([][]byte, bool) {
	frames := [][]byte{first}
	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				return frames, true
			}
			if !containsFrame(frames, frame) {
				frames = append(frames, frame)
			}
		default:
			return frames, false
		}
	}
}

func containsFrame(frames [][]byte, frame []byte) bool {
	for _, f := range frames {
		if bytes.Equal(f, frame) {
			return true
		}
	}
	return false
}

func (c *Client) handleMessage(data []byte) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("invalid message format")
		return
	}

	switch msg.Type {
	case MessageTypeSubscribe, MessageTypeUnsubscribe:
		if msg.Page == nil {
			c.sendError("page is required")
			return
		}
		if msg.PageSize == 0 || msg.PageSize > maxPageSize {
			c.sendError("pageSize must be between 1 and 100")
			return
		}
		key := PageKey{Page: *msg.Page, Size: msg.PageSize}
		if msg.Type == MessageTypeSubscribe {
			c.subscribe(key)
		} else {
			c.unsubscribe(key)
		}

	default:
		c.sendError("unknown message type")
	}
}

// subscribe moves the tab to key, dropping the page it watched before
func (c *Client) subscribe(key PageKey) {
	if c.page != nil {
		if *c.page == key {
			return
		}
		c.hub.Unsubscribe(c, *c.page)
	}
	c.page = &key
	c.hub.Subscribe(c, key)
}

func (c *Client) unsubscribe(key PageKey) {
	c.hub.Unsubscribe(c, key)
	if c.page != nil && *c.page == key {
		c.page = nil
	}
}

func (c *Client) sendError(errMsg string) {
	data, err := json.Marshal(WSMessage{Type: MessageTypeError, Error: errMsg})
	if err != nil {
		return
	}

	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		// tab is not reading; errors are best effort
	}
}
