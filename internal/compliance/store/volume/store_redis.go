package volume

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	id "surety/pkg/domain"
)

const volumeKeyPrefix = "vol:day:"

// reserveScript checks and increments the daily counter in one round trip.
// Incrementing only on success is what makes VOLUME_LIMIT enforcement safe
// under concurrent transfers from the same account.
var reserveScript = redis.NewScript(`
local used = tonumber(redis.call('GET', KEYS[1]) or '0')
local amount = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])
if used + amount > limit then
  return {0, used}
end
used = redis.call('INCRBY', KEYS[1], amount)
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[3]))
return {1, used}
`)

// RedisStore keeps daily volume counters in Redis, keyed per account per UTC
// day. Keys expire two days after creation; the day boundary makes old
// buckets unreachable before the TTL fires.
type RedisStore struct {
	client *redis.Client
}

// NewRedis constructs a Redis-backed volume store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func key(account id.AccountID, now time.Time) string {
	return volumeKeyPrefix + bucket(now) + ":" + account.String()
}

func (s *RedisStore) Reserve(ctx context.Context, account id.AccountID, now time.Time, amount, limit int64) (bool, int64, error) {
	ttlSeconds := int64((48 * time.Hour).Seconds())
	res, err := reserveScript.Run(ctx, s.client,
		[]string{key(account, now)},
		amount, limit, ttlSeconds).Slice()
	if err != nil {
		return false, 0, fmt.Errorf("reserve volume: %w", err)
	}
	if len(res) != 2 {
		return false, 0, fmt.Errorf("reserve volume: unexpected script reply %v", res)
	}
	allowed, err := toInt64(res[0])
	if err != nil {
		return false, 0, fmt.Errorf("reserve volume: %w", err)
	}
	used, err := toInt64(res[1])
	if err != nil {
		return false, 0, fmt.Errorf("reserve volume: %w", err)
	}
	return allowed == 1, used, nil
}

func (s *RedisStore) Used(ctx context.Context, account id.AccountID, now time.Time) (int64, error) {
	val, err := s.client.Get(ctx, key(account, now)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read volume: %w", err)
	}
	used, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse volume counter: %w", err)
	}
	return used, nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case string:
		return strconv.ParseInt(n, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected redis reply type %T", v)
	}
}
