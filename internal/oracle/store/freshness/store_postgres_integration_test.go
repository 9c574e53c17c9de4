//go:build integration

package freshness_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"surety/internal/oracle/models"
	"surety/internal/oracle/store/freshness"
	id "surety/pkg/domain"
	"surety/pkg/testutil/containers"
)

type PostgresFreshnessSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *freshness.PostgresStore
}

func TestPostgresFreshnessSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresFreshnessSuite))
}

func (s *PostgresFreshnessSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = freshness.NewPostgres(s.pg.DB)
}

func (s *PostgresFreshnessSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background(), "valuations"))
}

func (s *PostgresFreshnessSuite) TestPutGetRoundTrip() {
	ctx := context.Background()
	subject := id.NewPolicyID()
	finalized := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)

	s.Require().NoError(s.store.Put(ctx, &models.FreshnessRecord{
		Subject:     subject,
		Value:       1_250_000,
		FinalizedAt: finalized,
		Anomaly:     true,
	}))

	got, err := s.store.Get(ctx, subject)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(subject, got.Subject)
	s.Equal(int64(1_250_000), got.Value)
	s.True(got.FinalizedAt.Equal(finalized))
	s.True(got.Anomaly)
}

func (s *PostgresFreshnessSuite) TestGetUnknownSubjectReturnsNil() {
	got, err := s.store.Get(context.Background(), id.NewPolicyID())
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *PostgresFreshnessSuite) TestUpsertReplacesPriorValuation() {
	ctx := context.Background()
	subject := id.NewPolicyID()
	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	s.Require().NoError(s.store.Put(ctx, &models.FreshnessRecord{
		Subject: subject, Value: 1_000_000, FinalizedAt: first,
	}))
	s.Require().NoError(s.store.Put(ctx, &models.FreshnessRecord{
		Subject: subject, Value: 980_000, FinalizedAt: first.Add(time.Hour),
	}))

	got, err := s.store.Get(ctx, subject)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(int64(980_000), got.Value)
	s.True(got.FinalizedAt.Equal(first.Add(time.Hour)))
	s.False(got.Anomaly)
}
