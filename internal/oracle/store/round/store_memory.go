package round

import (
	"context"
	"sync"

	"surety/internal/oracle/models"
	id "surety/pkg/domain"
)

type roundKey struct {
	subject id.PolicyID
	seq     int64
}

// InMemoryStore keeps attestation rounds in a map. Rounds are short-lived
// (they finalize or expire within one TTL) and callers retry on restart, so
// memory is the default backend even in production.
type InMemoryStore struct {
	mu      sync.RWMutex
	rounds  map[roundKey]*models.Round
	lastSeq map[id.PolicyID]int64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		rounds:  make(map[roundKey]*models.Round),
		lastSeq: make(map[id.PolicyID]int64),
	}
}

func (s *InMemoryStore) GetOpen(_ context.Context, subject id.PolicyID) (*models.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seq := s.lastSeq[subject]
	if seq == 0 {
		return nil, nil
	}
	r, ok := s.rounds[roundKey{subject, seq}]
	if !ok || r.State != models.RoundOpen {
		return nil, nil
	}
	return copyRound(r), nil
}

func (s *InMemoryStore) Put(_ context.Context, round *models.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds[roundKey{round.Subject, round.Seq}] = copyRound(round)
	if round.Seq > s.lastSeq[round.Subject] {
		s.lastSeq[round.Subject] = round.Seq
	}
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, subject id.PolicyID, seq int64) (*models.Round, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rounds[roundKey{subject, seq}]
	if !ok {
		return nil, nil
	}
	return copyRound(r), nil
}

func (s *InMemoryStore) Delete(_ context.Context, subject id.PolicyID, seq int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rounds, roundKey{subject, seq})
	if s.lastSeq[subject] == seq {
		s.lastSeq[subject] = seq - 1
	}
	return nil
}

func (s *InMemoryStore) LastSeq(_ context.Context, subject id.PolicyID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSeq[subject], nil
}

func copyRound(r *models.Round) *models.Round {
	cp := *r
	cp.Votes = append([]models.Vote(nil), r.Votes...)
	cp.QuorumAttestors = append([]id.AttestorID(nil), r.QuorumAttestors...)
	return &cp
}
