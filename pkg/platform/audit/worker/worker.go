package worker

import (
	"context"

	audit "surety/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them to the
// in-process store. It keeps background processing testable without wiring
// queue implementations into domain services.
type Worker struct {
	store audit.Store
	inbox <-chan audit.Event
}

func NewWorker(store audit.Store, inbox <-chan audit.Event) *Worker {
	return &Worker{store: store, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				return err
			}
		}
	}
}
