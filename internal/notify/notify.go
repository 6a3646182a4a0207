package notify

import (
	"context"
	"time"
)

// DefaultTopic is the NSQ topic every outbound message is published to.
const DefaultTopic = "carrent.notifications"

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	// ChannelEvent marks domain events consumed by other services rather than delivered to a person.
	ChannelEvent Channel = "event"
)

// ParseChannel accepts the delivery channels a user may pick.
func ParseChannel(s string) (Channel, bool) {
	switch c := Channel(s); c {
	case ChannelEmail, ChannelSMS:
		return c, true
	}
	return "", false
}

// Message is the envelope published for downstream senders.
// Kind names what happened, e.g. "password_reset.code" or "booking.cancel_requested".
type Message struct {
	Kind      string            `json:"kind"`
	Channel   Channel           `json:"channel"`
	To        string            `json:"to"`
	Subject   string            `json:"subject,omitempty"`
	Body      string            `json:"body,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Notifier hands a message to whatever delivers it.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}
