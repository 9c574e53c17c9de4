// Package volume tracks cumulative outgoing transfer volume per account per
// UTC day. The check-and-reserve is atomic: a counter is never incremented
// unless the transfer it gates will be allowed.
package volume

import (
	"context"
	"sync"
	"time"

	id "surety/pkg/domain"
)

type dayKey struct {
	account id.AccountID
	day     string
}

// InMemoryStore keeps daily volume counters in a map. Default store for
// development and tests; production deployments use RedisStore so counters
// are shared across instances.
type InMemoryStore struct {
	mu       sync.Mutex
	counters map[dayKey]int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{counters: make(map[dayKey]int64)}
}

// bucket returns the UTC day the counter is keyed by.
func bucket(now time.Time) string {
	return now.UTC().Format("2006-01-02")
}

func (s *InMemoryStore) Reserve(_ context.Context, account id.AccountID, now time.Time, amount, limit int64) (bool, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := dayKey{account: account, day: bucket(now)}
	used := s.counters[key]
	if used+amount > limit {
		return false, used, nil
	}
	s.counters[key] = used + amount
	return true, used + amount, nil
}

func (s *InMemoryStore) Used(_ context.Context, account id.AccountID, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[dayKey{account: account, day: bucket(now)}], nil
}
