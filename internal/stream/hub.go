package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"power-status-backend/internal/logger"
	"power-status-backend/internal/notification"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Message is the envelope written to websocket clients.
type Message struct {
	Type    string                `json:"type"`
	Payload *notification.Payload `json:"payload"`
}

// Hub keeps the connected websocket clients and broadcasts changes to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	connected  atomic.Int32
	payloads   *notification.PayloadBuilder
	log        logger.Logger
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub(payloads *notification.PayloadBuilder, log logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		payloads:   payloads,
		log:        log,
	}
}

// Run serves registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.connected.Store(int32(len(h.clients)))
			h.log.Debug("websocket client registered", "remote", client.conn.RemoteAddr().String())

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.connected.Store(int32(len(h.clients)))
				h.log.Debug("websocket client unregistered", "remote", client.conn.RemoteAddr().String())
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					// Slow clients are dropped rather than stalling the others.
					h.log.Warn("websocket client send buffer full, removing", "remote", client.conn.RemoteAddr().String())
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.connected.Store(int32(len(h.clients)))
		}
	}
}

// Connected returns the number of registered clients.
func (h *Hub) Connected() int {
	return int(h.connected.Load())
}

// Name implements notification.Subscriber.
func (h *Hub) Name() string { return "websocket" }

// Notify implements notification.Subscriber.
func (h *Hub) Notify(ctx context.Context, change notification.Change) error {
	payload, err := h.payloads.Build(ctx, change.PlaceID)
	if err != nil {
		return err
	}
	message, err := json.Marshal(Message{Type: "availability", Payload: payload})
	if err != nil {
		return fmt.Errorf("failed to encode message: %w", err)
	}

	select {
	case h.broadcast <- message:
		return nil
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ServeWS upgrades the request and registers the connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &Client{hub: h, conn: conn, send: make(chan []byte, 16)}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
