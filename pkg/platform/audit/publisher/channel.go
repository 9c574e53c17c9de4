package publisher

import (
	"context"
	"log/slog"

	audit "surety/pkg/platform/audit"
)

// Channel feeds events to a background worker through a buffered channel.
// Emission never blocks the domain call: when the buffer is full the event is
// dropped and logged, which is acceptable for the in-process trail because
// the Kafka sink remains the durable path.
type Channel struct {
	inbox  chan audit.Event
	logger *slog.Logger
}

// NewChannel creates a channel publisher with the given buffer size.
func NewChannel(buffer int, logger *slog.Logger) *Channel {
	if buffer <= 0 {
		buffer = 256
	}
	return &Channel{
		inbox:  make(chan audit.Event, buffer),
		logger: logger,
	}
}

// Inbox exposes the receive side for the worker.
func (c *Channel) Inbox() <-chan audit.Event { return c.inbox }

func (c *Channel) Emit(_ context.Context, event audit.Event) error {
	select {
	case c.inbox <- event:
	default:
		if c.logger != nil {
			c.logger.Warn("audit inbox full, dropping event",
				"action", event.Action,
				"subject", event.Subject,
			)
		}
	}
	return nil
}
