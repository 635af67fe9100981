package service

import (
	"encoding/json"
	"sync"

	"github.com/AndrewAllenDS/prayer-request-app/internal/metrics"
	"github.com/AndrewAllenDS/prayer-request-app/internal/model"

	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog"
)

// WSClient is one open live-feed connection.
//
// Send is never closed: the hub and the connection's reader both write to
// it, so a dropped client is signalled through Done instead.
type WSClient struct {
	Conn *websocket.Conn
	Send chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func NewWSClient(conn *websocket.Conn, buffer int) *WSClient {
	return &WSClient{
		Conn: conn,
		Send: make(chan []byte, buffer),
		done: make(chan struct{}),
	}
}

// Done is closed once the client has been dropped by the hub.
func (c *WSClient) Done() <-chan struct{} {
	return c.done
}

// Close releases the client. Safe to call more than once.
func (c *WSClient) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Offer queues msg without blocking. It reports false when the client is
// closed or its buffer is full.
func (c *WSClient) Offer(msg []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- msg:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// WSHub fans live events out to every connected calendar page.
type WSHub struct {
	clients    map[*WSClient]bool
	register   chan *WSClient
	unregister chan *WSClient
	broadcast  chan []byte
	mu         sync.RWMutex
	done       chan struct{}
	stopOnce   sync.Once
	log        zerolog.Logger
}

func NewWSHub(log zerolog.Logger) *WSHub {
	return &WSHub{
		clients:    make(map[*WSClient]bool),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
		log:        log.With().Str("component", "ws").Logger(),
	}
}

func (h *WSHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			metrics.LiveClients.Set(float64(total))
			h.log.Debug().Int("total", total).Msg("client connected")

		case client := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, client)
			total := len(h.clients)
			h.mu.Unlock()
			client.Close()
			metrics.LiveClients.Set(float64(total))
			h.log.Debug().Int("total", total).Msg("client disconnected")

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.Offer(message) {
					// Slow reader; drop it rather than stall everyone else.
					client.Close()
					delete(h.clients, client)
				}
			}
			total := len(h.clients)
			h.mu.Unlock()
			metrics.LiveClients.Set(float64(total))

		case <-h.done:
			h.mu.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mu.Unlock()
			metrics.LiveClients.Set(0)
			return
		}
	}
}

// Shutdown stops the hub and releases every registered client.
func (h *WSHub) Shutdown() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Register adds client. After Shutdown the client is released instead.
func (h *WSHub) Register(client *WSClient) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

func (h *WSHub) Unregister(client *WSClient) {
	select {
	case h.unregister <- client:
	case <-h.done:
		client.Close()
	}
}

// Broadcast queues event for every client. It never blocks: when the queue
// is full the event is dropped and logged.
func (h *WSHub) Broadcast(event *model.WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Str("type", event.Type).Msg("marshal live event")
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.log.Warn().Str("type", event.Type).Msg("live event queue full, dropping")
	}
}

func (h *WSHub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
