package bucket

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"potterdex/internal/ratelimit/models"
)

// slidingWindowScript trims the window, checks the count and records the
// request atomically. Scores are unix milliseconds.
//
// KEYS[1] bucket key
// ARGV[1] now, ARGV[2] window, ARGV[3] limit, ARGV[4] member
// Returns {allowed, count, resetAt}.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)

if count >= limit then
	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	local reset = now + window
	if oldest[2] then
		reset = tonumber(oldest[2]) + window
	end
	return {0, count, reset}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
return {1, count + 1, tonumber(oldest[2]) + window}
`)

// RedisBucketStore implements the sliding window limiter on a Redis sorted set
// so every replica shares the same counters.
type RedisBucketStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

// NewRedisBucketStore creates a store backed by client.
func NewRedisBucketStore(client redis.UniversalClient) *RedisBucketStore {
	return &RedisBucketStore{client: client, now: time.Now}
}

// Allow checks if a request is allowed and records it when it is.
func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	now := s.now()
	nowMs := now.UnixMilli()
	member := strconv.FormatInt(nowMs, 10) + ":" + uuid.NewString()

	vals, err := slidingWindowScript.Run(ctx, s.client, []string{key},
		nowMs, window.Milliseconds(), limit, member).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("rate limit script: %w", err)
	}
	if len(vals) != 3 {
		return nil, fmt.Errorf("rate limit script: unexpected reply length %d", len(vals))
	}

	resetAt := time.UnixMilli(vals[2])
	if vals[0] == 0 {
		return models.NewDenied(limit, resetAt, now), nil
	}
	return &models.RateLimitResult{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - int(vals[1]),
		ResetAt:   resetAt,
	}, nil
}

// Reset clears the rate limit counter for a key.
func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("reset rate limit key: %w", err)
	}
	return nil
}

// GetCurrentCount returns the number of requests recorded inside the window.
// Entries older than the window are only trimmed by Allow, so they are
// excluded here by score.
func (s *RedisBucketStore) GetCurrentCount(ctx context.Context, key string, window time.Duration) (int, error) {
	minScore := strconv.FormatInt(s.now().Add(-window).UnixMilli(), 10)
	n, err := s.client.ZCount(ctx, key, "("+minScore, "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("count rate limit key: %w", err)
	}
	return int(n), nil
}
