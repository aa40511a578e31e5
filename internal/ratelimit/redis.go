package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// incrScript increments the window counter and stamps the expiry only when
// the key is created, so the window is fixed from the first hit. INCR,
// expiry and TTL read happen in one script to stay atomic under concurrent
// requests.
var incrScript = redis.NewScript(`
    local count = redis.call('INCR', KEYS[1])
    if count == 1 then
        redis.call('PEXPIRE', KEYS[1], ARGV[1])
    end
    local ttl = redis.call('PTTL', KEYS[1])
    if ttl < 0 then
        redis.call('PEXPIRE', KEYS[1], ARGV[1])
        ttl = tonumber(ARGV[1])
    end
    return { count, ttl }
`)

// RedisStore shares fixed-window counters across instances through Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an established Redis client as a counter store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Incr implements Store.
func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	vals, err := incrScript.Run(ctx, s.client, []string{key}, window.Milliseconds()).Result()
	if err != nil {
		return 0, 0, err
	}
	arr, ok := vals.([]interface{})
	if !ok || len(arr) != 2 {
		return 0, 0, redis.Nil
	}
	count, _ := arr[0].(int64)
	ttlMs, _ := arr[1].(int64)
	return count, time.Duration(ttlMs) * time.Millisecond, nil
}
