package model

import "encoding/json"

const (
	WSEventPrayerCreated = "prayer.created"
	WSEventPing          = "ping"
	WSEventPong          = "pong"
)

type WSEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}
