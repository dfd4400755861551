package bus

import (
	"context"

	"github.com/yungbote/studymatch-backend/internal/realtime"
)

type noopBus struct{}

// NewNoopBus drops every event. Used when no REDIS_ADDR is configured so
// the engine keeps working without a delivery transport.
func NewNoopBus() realtime.Bus {
	return noopBus{}
}

func (noopBus) Publish(ctx context.Context, event realtime.Event) error { return nil }

func (noopBus) Close() error { return nil }
