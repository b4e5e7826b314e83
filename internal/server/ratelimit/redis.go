package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrijs2005/mailbox/internal/common"
)

// RedisStore keeps counters in Redis. It implements IncrementerStore, so the
// limiter runs its race-free single-round-trip path against it.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Get reads the current counter. Missing keys return common.ErrorNotFound.
func (s *RedisStore) Get(ctx context.Context, key string) (*Counter, error) {
	count, err := s.client.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: %v", common.ErrorStoreUnavailable, err)
	}

	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorStoreUnavailable, err)
	}

	return &Counter{Count: count, ExpiresAt: time.Now().Add(ttl)}, nil
}

// Put overwrites the counter with the given TTL.
func (s *RedisStore) Put(ctx context.Context, key string, count int64, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, count, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", common.ErrorStoreUnavailable, err)
	}
	return nil
}

// Incr atomically increments the counter. Fixed-window semantics: the TTL is
// set on the first hit of the window, so the key expires at the bucket
// boundary no matter how many requests land in it. Any later hit that finds
// the key without a TTL (a crash between INCR and EXPIRE left it orphaned)
// sets one too, so no counter sticks around forever.
func (s *RedisStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	pipe := s.client.Pipeline()
	incr := pipe.Incr(ctx, key)
	curTTL := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrorStoreUnavailable, err)
	}

	if curTTL.Val() < 0 {
		if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", common.ErrorStoreUnavailable, err)
		}
	}

	return incr.Val(), nil
}
