package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// MessageType represents the type of WebSocket message
type MessageType string

const (
	MessageTypeSubscribe     MessageType = "subscribe"
	MessageTypeUnsubscribe   MessageType = "unsubscribe"
	MessageTypeEmailReceived MessageType = "email_received"
	MessageTypeInvalidated   MessageType = "invalidated"
	MessageTypeError         MessageType = "error"
)

// maxPageSize mirrors the largest list page the viewer serves
const maxPageSize = 100

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type     MessageType `json:"type"`
	Page     *uint       `json:"page,omitempty"`
	PageSize uint        `json:"pageSize,omitempty"`
	ID       string      `json:"id,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// PageKey identifies one list page
type PageKey struct {
	Page uint
	Size uint
}

// Watcher reports refetches of cached list pages
type Watcher interface {
	WatchList(page, size uint, onChange func()) func()
}

// Hub maintains the set of active clients and pushes inbox changes to them
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Page subscriptions: page -> set of clients
	subscriptions map[PageKey]map[*Client]bool

	// Cache watches held while a page has subscribers
	watches map[PageKey]func()

	register    chan *Client
	unregister  chan *Client
	subscribe   chan *subscriptionRequest
	unsubscribe chan *subscriptionRequest
	broadcast   chan *broadcastMessage
	done        chan struct{}

	watcher Watcher

	mu     sync.RWMutex
	logger *slog.Logger
}

type subscriptionRequest struct {
	client *Client
	key    PageKey
}

type broadcastMessage struct {
	// all sends to every client; otherwise only subscribers of key
	all     bool
	key     PageKey
	message []byte
}

// NewHub creates a new Hub instance
func NewHub(watcher Watcher, logger *slog.Logger) *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		subscriptions: make(map[PageKey]map[*Client]bool),
		watches:       make(map[PageKey]func()),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		subscribe:     make(chan *subscriptionRequest),
		unsubscribe:   make(chan *subscriptionRequest),
		broadcast:     make(chan *broadcastMessage, 256),
		done:          make(chan struct{}),
		watcher:       watcher,
		logger:        logger,
	}
}

// Run starts the hub's main loop. It returns when ctx ends, after closing
// every client and releasing every cache watch.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client registered", slog.String("client_id", client.ID))
			}

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				h.closeLocked(client)
				for key, subscribers := range h.subscriptions {
					delete(subscribers, client)
					if len(subscribers) == 0 {
						h.releaseLocked(key)
					}
				}
			}
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client unregistered", slog.String("client_id", client.ID))
			}

		case req := <-h.subscribe:
			h.mu.Lock()
			if h.subscriptions[req.key] == nil {
				h.subscriptions[req.key] = make(map[*Client]bool)
				h.watchLocked(req.key)
			}
			h.subscriptions[req.key][req.client] = true
			h.mu.Unlock()
			if h.logger != nil {
				h.logger.Debug("client subscribed to page",
					slog.String("client_id", req.client.ID),
					slog.Uint64("page", uint64(req.key.Page)),
					slog.Uint64("page_size", uint64(req.key.Size)))
			}

		case req := <-h.unsubscribe:
			h.mu.Lock()
			if subscribers, ok := h.subscriptions[req.key]; ok {
				delete(subscribers, req.client)
				if len(subscribers) == 0 {
					h.releaseLocked(req.key)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			targets := h.clients
			if !msg.all {
				targets = h.subscriptions[msg.key]
			}
			for client := range targets {
				select {
				case client.send <- msg.message:
				default:
					// Client buffer full, skip
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribe subscribes a client to a list page
func (h *Hub) Subscribe(client *Client, key PageKey) {
	select {
	case h.subscribe <- &subscriptionRequest{client: client, key: key}:
	case <-h.done:
	}
}

// Unsubscribe unsubscribes a client from a list page
func (h *Hub) Unsubscribe(client *Client, key PageKey) {
	select {
	case h.unsubscribe <- &subscriptionRequest{client: client, key: key}:
	case <-h.done:
	}
}

// BroadcastEmailReceived tells every client that a new email arrived
func (h *Hub) BroadcastEmailReceived(id string) {
	h.send(&broadcastMessage{all: true}, WSMessage{Type: MessageTypeEmailReceived, ID: id})
}

// BroadcastInvalidated tells subscribers of key that the page changed
func (h *Hub) BroadcastInvalidated(key PageKey) {
	page := key.Page
	h.send(&broadcastMessage{key: key}, WSMessage{
		Type:     MessageTypeInvalidated,
		Page:     &page,
		PageSize: key.Size,
	})
}

// ClientCount returns the number of registered clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SubscriberCount returns the number of clients watching key
func (h *Hub) SubscriberCount(key PageKey) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions[key])
}

func (h *Hub) send(msg *broadcastMessage, payload WSMessage) {
	data, err := json.Marshal(payload)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to marshal broadcast message", slog.Any("error", err))
		}
		return
	}
	msg.message = data

	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// watchLocked must be called with mu held
func (h *Hub) watchLocked(key PageKey) {
	if h.watcher == nil {
		return
	}
	h.watches[key] = h.watcher.WatchList(key.Page, key.Size, func() {
		h.BroadcastInvalidated(key)
	})
}

// releaseLocked must be called with mu held
func (h *Hub) releaseLocked(key PageKey) {
	delete(h.subscriptions, key)
	if stop, ok := h.watches[key]; ok {
		stop()
		delete(h.watches, key)
	}
}

// closeLocked must be called with mu held
func (h *Hub) closeLocked(client *Client) {
	if !client.closed {
		client.closed = true
		close(client.send)
	}
}

func (h *Hub) shutdown() {
	close(h.done)

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		h.closeLocked(client)
		delete(h.clients, client)
	}
	for key := range h.subscriptions {
		h.releaseLocked(key)
	}
}
