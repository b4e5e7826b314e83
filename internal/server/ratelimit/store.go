package ratelimit

import (
	"context"
	"time"
)

// Counter is the stored state for one (scope, policy, window bucket) key.
type Counter struct {
	Count     int64
	ExpiresAt time.Time
}

// CounterStore is the abstract key-value store counters live in. Get returns
// common.ErrorNotFound for absent keys; Put overwrites the value and resets
// the TTL. No atomicity is assumed between Get and Put.
type CounterStore interface {
	Get(ctx context.Context, key string) (*Counter, error)
	Put(ctx context.Context, key string, count int64, ttl time.Duration) error
}

// IncrementerStore is the optional upgrade a backend can offer: an atomic
// increment that applies the TTL on the first hit of a window. When the
// configured store implements it, the limiter's read-modify-write race
// disappears without changing its external contract.
type IncrementerStore interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}
