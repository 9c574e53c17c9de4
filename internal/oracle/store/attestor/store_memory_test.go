package attestor

import (
	"context"
	"crypto/ed25519"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"surety/internal/oracle/models"
	id "surety/pkg/domain"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
	s.ctx = context.Background()
}

func (s *InMemoryStoreSuite) TestGetUnknownReturnsNil() {
	a, err := s.store.Get(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Nil(a)
}

func (s *InMemoryStoreSuite) TestPutGetRoundTrip() {
	in := &models.Attestor{
		ID:           "acme-01",
		PublicKey:    make(ed25519.PublicKey, ed25519.PublicKeySize),
		Stake:        5_000_000,
		Active:       true,
		RegisteredAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.store.Put(s.ctx, in))

	out, err := s.store.Get(s.ctx, "acme-01")
	s.Require().NoError(err)
	s.Require().NotNil(out)
	s.Equal(in.Stake, out.Stake)
	s.True(out.Trusted())
}

func (s *InMemoryStoreSuite) TestGetReturnsCopy() {
	s.Require().NoError(s.store.Put(s.ctx, &models.Attestor{ID: "acme-01", Active: true}))

	first, err := s.store.Get(s.ctx, "acme-01")
	s.Require().NoError(err)
	first.Slashed = true

	second, err := s.store.Get(s.ctx, "acme-01")
	s.Require().NoError(err)
	s.False(second.Slashed, "mutating a returned record must not leak into the store")
}

func (s *InMemoryStoreSuite) TestListSortedByID() {
	for _, handle := range []string{"zeta", "alpha", "mid"} {
		s.Require().NoError(s.store.Put(s.ctx, &models.Attestor{ID: id.AttestorID(handle)}))
	}
	list, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal("alpha", list[0].ID.String())
	s.Equal("mid", list[1].ID.String())
	s.Equal("zeta", list[2].ID.String())
}
