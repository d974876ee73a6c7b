package realtime

import (
	"context"
	"time"
)

const TypeNotification = "notification"

// Message is the frame written to websocket clients.
type Message struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher pushes a message to every live connection of a user. Delivery
// is at-most-once: users without an open connection simply miss it.
type Publisher interface {
	Publish(ctx context.Context, userID, msgType string, payload any) error
}
