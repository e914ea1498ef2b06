//go:build integration

package bucket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"potterdex/pkg/testutil/containers"
)

type RedisBucketStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *RedisBucketStore
	ctx   context.Context
}

func TestRedisBucketStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	suite.Run(t, new(RedisBucketStoreSuite))
}

func (s *RedisBucketStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.ctx = context.Background()
}

func (s *RedisBucketStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(s.ctx))
	s.store = NewRedisBucketStore(s.redis.Client)
}

func (s *RedisBucketStoreSuite) TestAllowUpToLimit() {
	key := "test:redis:limit"
	for i := 0; i < testLimit; i++ {
		result, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(testLimit-i-1, result.Remaining)
	}

	result, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Positive(result.RetryAfter)

	count, err := s.store.GetCurrentCount(s.ctx, key, testWindow)
	s.Require().NoError(err)
	s.Equal(testLimit, count)
}

func (s *RedisBucketStoreSuite) TestWindowExpiry() {
	key := "test:redis:expiry"
	base := time.Now()
	s.store.now = func() time.Time { return base }

	for _i := 0; _i < testLimit; _i++ {
		_, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
		s.Require().NoError(err)
	}

	s.store.now = func() time.Time { return base.Add(testWindow + time.Second) }
	result, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
	s.Require().NoError(err)
	s.True(result.Allowed)
	s.Equal(testLimit-1, result.Remaining)
}

func (s *RedisBucketStoreSuite) TestReset() {
	key := "test:redis:reset"
	for _i := 0; _i < testLimit; _i++ {
		_, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
		s.Require().NoError(err)
	}
	s.Require().NoError(s.store.Reset(s.ctx, key))

	result, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
	s.Require().NoError(err)
	s.True(result.Allowed)
}

func (s *RedisBucketStoreSuite) TestConcurrent() {
	key := "test:redis:concurrent"
	limit := 50

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for _i := 0; _i < 100; _i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.store.Allow(s.ctx, key, limit, testWindow)
			if err != nil {
				s.T().Error(err)
				return
			}
			if result.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(limit, allowed)
}
