// Package publisher provides audit event sinks.
//
// Domain services emit events through the module-level AuditPublisher port;
// this package supplies the concrete sinks wired in main: a Kafka producer
// for durable off-process fan-out, a channel publisher feeding the in-process
// store worker, and a fanout combinator.
package publisher

import (
	"context"

	audit "surety/pkg/platform/audit"
)

// Publisher is the sink side of the audit pipeline.
type Publisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Fanout emits each event to every configured sink. The first error is
// returned after all sinks were attempted, so a failing sink cannot starve
// the others.
type Fanout []Publisher

func (f Fanout) Emit(ctx context.Context, event audit.Event) error {
	var firstErr error
	for _, p := range f {
		if err := p.Emit(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
