package profile

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"surety/internal/compliance/models"
	id "surety/pkg/domain"
)

// InMemoryStore keeps compliance profiles in a map. Default store for
// development and tests; production deployments use PostgresStore.
type InMemoryStore struct {
	mu       sync.RWMutex
	profiles map[id.AccountID]*models.Profile
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{profiles: make(map[id.AccountID]*models.Profile)}
}

func (s *InMemoryStore) Get(_ context.Context, account id.AccountID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[account]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *InMemoryStore) Put(_ context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *profile
	s.profiles[profile.Account] = &cp
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, account id.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, account)
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Account, out[j].Account
		return bytes.Compare(a[:], b[:]) < 0
	})
	return out, nil
}
