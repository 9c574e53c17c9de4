package audit

import "context"

// Store persists audit events for in-process inspection and the admin API.
// The Kafka publisher is the durable fan-out; this store keeps a local
// queryable trail.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}
