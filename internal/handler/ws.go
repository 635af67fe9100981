package handler

import (
	"encoding/json"
	"time"

	"github.com/AndrewAllenDS/prayer-request-app/internal/model"
	"github.com/AndrewAllenDS/prayer-request-app/internal/service"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsSendBuffer   = 64
)

type WSHandler struct {
	hub *service.WSHub
	log zerolog.Logger
}

func NewWSHandler(hub *service.WSHub, log zerolog.Logger) *WSHandler {
	return &WSHandler{hub: hub, log: log.With().Str("component", "ws-handler").Logger()}
}

// Upgrade opens the live feed used by the calendar page. (Public)
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(h.handleConnection)(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *WSHandler) handleConnection(c *websocket.Conn) {
	client := service.NewWSClient(c, wsSendBuffer)

	h.hub.Register(client)

	// Writer goroutine; exits once the hub drops the client. Closing the
	// connection also ends the reader loop below.
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer c.Close()
		for {
			select {
			case msg := <-client.Send:
				c.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
				if err := c.WriteMessage(websocket.TextMessage, msg); err != nil {
					client.Close()
					return
				}
			case <-client.Done():
				return
			}
		}
	}()

	// Reader loop; clients only ever ping.
	c.SetReadDeadline(time.Now().Add(wsReadTimeout))
	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			break
		}
		c.SetReadDeadline(time.Now().Add(wsReadTimeout))

		var event model.WSEvent
		if err := json.Unmarshal(msg, &event); err != nil {
			continue
		}

		switch event.Type {
		case model.WSEventPing:
			pong, _ := json.Marshal(model.WSEvent{Type: model.WSEventPong})
			client.Offer(pong)
		default:
			h.log.Debug().Str("type", event.Type).Msg("ignoring unknown live event")
		}
	}

	// The connection is recycled once this handler returns.
	h.hub.Unregister(client)
	<-writerDone
}
