package attestor

import (
	"context"
	"sort"
	"sync"

	"surety/internal/oracle/models"
	id "surety/pkg/domain"
)

// InMemoryStore keeps attestor records in a map. Default store for
// development and tests; production deployments use PostgresStore.
type InMemoryStore struct {
	mu        sync.RWMutex
	attestors map[id.AttestorID]*models.Attestor
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{attestors: make(map[id.AttestorID]*models.Attestor)}
}

func (s *InMemoryStore) Get(_ context.Context, attestorID id.AttestorID) (*models.Attestor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attestors[attestorID]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (s *InMemoryStore) Put(_ context.Context, attestor *models.Attestor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *attestor
	s.attestors[attestor.ID] = &cp
	return nil
}

func (s *InMemoryStore) List(_ context.Context) ([]*models.Attestor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Attestor, 0, len(s.attestors))
	for _, a := range s.attestors {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
