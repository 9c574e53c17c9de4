//go:build integration

package volume_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"surety/internal/compliance/store/volume"
	id "surety/pkg/domain"
	"surety/pkg/testutil/containers"
)

type RedisVolumeSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *volume.RedisStore
}

func TestRedisVolumeSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisVolumeSuite))
}

func (s *RedisVolumeSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = volume.NewRedis(s.redis.Client)
}

func (s *RedisVolumeSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisVolumeSuite) TestReserveAndRead() {
	ctx := context.Background()
	account := id.NewAccountID()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	ok, used, err := s.store.Reserve(ctx, account, now, 400, 1000)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(int64(400), used)

	ok, used, err = s.store.Reserve(ctx, account, now, 700, 1000)
	s.Require().NoError(err)
	s.False(ok)
	s.Equal(int64(400), used)

	read, err := s.store.Used(ctx, account, now)
	s.Require().NoError(err)
	s.Equal(int64(400), read)
}

func (s *RedisVolumeSuite) TestDayBoundary() {
	ctx := context.Background()
	account := id.NewAccountID()
	evening := time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC)
	nextDay := evening.Add(2 * time.Minute)

	ok, _, err := s.store.Reserve(ctx, account, evening, 1000, 1000)
	s.Require().NoError(err)
	s.True(ok)

	ok, used, err := s.store.Reserve(ctx, account, nextDay, 1000, 1000)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(int64(1000), used)
}

// TestConcurrentReservations verifies the Lua script never over-admits: with
// a cap of 1000 and 20 concurrent reservations of 100, exactly 10 succeed.
func (s *RedisVolumeSuite) TestConcurrentReservations() {
	ctx := context.Background()
	account := id.NewAccountID()
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	const goroutines = 20
	var wg sync.WaitGroup
	var admitted atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _, err := s.store.Reserve(ctx, account, now, 100, 1000)
			s.NoError(err)
			if ok {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(10), admitted.Load())
	used, err := s.store.Used(ctx, account, now)
	s.Require().NoError(err)
	s.Equal(int64(1000), used)
}
