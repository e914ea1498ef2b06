package bucket

import (
	"context"
	"sync"
	"time"

	"potterdex/internal/ratelimit/models"
)

// InMemoryBucketStore implements a sliding window limiter in process memory.
// Limits are per instance; use RedisBucketStore when running several replicas.
// Buckets left empty by expiry are swept so memory tracks active clients only.
type InMemoryBucketStore struct {
	mu            sync.Mutex
	buckets       map[string]*slidingWindow
	now           func() time.Time
	sweepInterval time.Duration
	lastSweep     time.Time
}

const defaultSweepInterval = time.Minute

// slidingWindow tracks request timestamps for one key.
type slidingWindow struct {
	timestamps []time.Time
	window     time.Duration
}

// MemoryOption configures an InMemoryBucketStore.
type MemoryOption func(*InMemoryBucketStore)

// WithClock overrides the time source.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryBucketStore) {
		s.now = now
	}
}

// WithSweepInterval sets how often idle buckets are evicted.
func WithSweepInterval(d time.Duration) MemoryOption {
	return func(s *InMemoryBucketStore) {
		if d > 0 {
			s.sweepInterval = d
		}
	}
}

// NewInMemoryBucketStore creates a new in-memory bucket store.
func NewInMemoryBucketStore(opts ...MemoryOption) *InMemoryBucketStore {
	s := &InMemoryBucketStore{
		buckets:       make(map[string]*slidingWindow),
		now:           time.Now,
		sweepInterval: defaultSweepInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastSweep = s.now()
	return s
}

// Allow checks if a request is allowed and records it when it is.
func (s *InMemoryBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.RateLimitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)
	sw := s.getOrCreateBucket(key, window)
	sw.cleanup(now)

	if len(sw.timestamps) >= limit {
		resetAt := now.Add(window)
		if len(sw.timestamps) > 0 {
			resetAt = sw.timestamps[0].Add(window)
		}
		return models.NewDenied(limit, resetAt, now), nil
	}

	sw.timestamps = append(sw.timestamps, now)
	return &models.RateLimitResult{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - len(sw.timestamps),
		ResetAt:   sw.timestamps[0].Add(window),
	}, nil
}

// Reset clears the rate limit counter for a key.
func (s *InMemoryBucketStore) Reset(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.buckets, key)
	return nil
}

// GetCurrentCount returns the current request count for a key.
func (s *InMemoryBucketStore) GetCurrentCount(ctx context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sw := s.buckets[key]
	if sw == nil {
		return 0, nil
	}
	sw.cleanup(s.now())
	if len(sw.timestamps) == 0 {
		delete(s.buckets, key)
	}
	return len(sw.timestamps), nil
}

// sweep drops buckets whose requests have all expired. Must be called while
// holding s.mu.
func (s *InMemoryBucketStore) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < s.sweepInterval {
		return
	}
	s.lastSweep = now
	for key, sw := range s.buckets {
		sw.cleanup(now)
		if len(sw.timestamps) == 0 {
			delete(s.buckets, key)
		}
	}
}

// bucketCount returns the number of tracked keys.
func (s *InMemoryBucketStore) bucketCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buckets)
}

// cleanup removes expired timestamps from a sliding window.
func (sw *slidingWindow) cleanup(now time.Time) {
	cutoff := now.Add(-sw.window)
	i := 0
	for ; i < len(sw.timestamps); i++ {
		if sw.timestamps[i].After(cutoff) {
			break
		}
	}
	sw.timestamps = sw.timestamps[i:]
}

// getOrCreateBucket must be called while holding s.mu.
func (s *InMemoryBucketStore) getOrCreateBucket(key string, window time.Duration) *slidingWindow {
	if sw := s.buckets[key]; sw != nil {
		return sw
	}
	sw := &slidingWindow{timestamps: []time.Time{}, window: window}
	s.buckets[key] = sw
	return sw
}
