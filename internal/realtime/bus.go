package realtime

import "context"

// Event kinds published on the bus. Delivery to clients is owned by an
// external consumer; this process only publishes.
const (
	EventMatchRequest      = "match.request"
	EventMatchAccepted     = "match.accepted"
	EventUnmatched         = "match.unmatched"
	EventChatRemoveMember  = "chat.remove_participation"
	EventNotificationSaved = "notification.saved"
)

type Event struct {
	Channel string         `json:"channel"`
	Kind    string         `json:"kind"`
	Data    map[string]any `json:"data,omitempty"`
}

type Bus interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
