package freshness

import (
	"context"
	"sync"

	"surety/internal/oracle/models"
	id "surety/pkg/domain"
)

// InMemoryStore keeps the last finalized valuation per subject.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[id.PolicyID]*models.FreshnessRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[id.PolicyID]*models.FreshnessRecord)}
}

func (s *InMemoryStore) Get(_ context.Context, subject id.PolicyID) (*models.FreshnessRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[subject]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (s *InMemoryStore) Put(_ context.Context, record *models.FreshnessRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *record
	s.records[record.Subject] = &cp
	return nil
}
