package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mailbox/internal/common"
	"github.com/dmitrijs2005/mailbox/internal/logging"
)

// Decision is the outcome of one admission check. RetryAfter is only
// meaningful when Allowed is false.
type Decision struct {
	Allowed    bool
	Remaining  int64
	RetryAfter time.Duration
}

// Limiter gates requests with fixed-window counting against a CounterStore.
//
// The clock is injectable so window-boundary behavior is deterministic in
// tests. On store faults the limiter fails open (admit) by default; identity
// resolution elsewhere always fails closed, this knob covers counters only.
type Limiter struct {
	store    CounterStore
	logger   logging.Logger
	clock    func() time.Time
	failOpen bool
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock replaces the wall clock. Tests use this to step across window
// boundaries without sleeping.
func WithClock(clock func() time.Time) Option {
	return func(l *Limiter) { l.clock = clock }
}

// WithFailOpen controls behavior on counter store faults: true admits the
// request, false denies it with a one-second retry hint.
func WithFailOpen(failOpen bool) Option {
	return func(l *Limiter) { l.failOpen = failOpen }
}

// NewLimiter creates a Limiter over the given store.
func NewLimiter(store CounterStore, logger logging.Logger, opts ...Option) *Limiter {
	l := &Limiter{
		store:    store,
		logger:   logger.With("module", "ratelimit"),
		clock:    time.Now,
		failOpen: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// CheckAndConsume decides whether one request under the given policy and
// scope value may proceed, consuming one unit of the window budget when it
// does. scopeValue is the user ID or source address the policy counts
// against.
//
// When the store offers atomic increments the whole check is a single store
// round trip. Otherwise it is a read-modify-write: two concurrent requests
// can both observe the same count and both write count+1, over-admitting by
// a small, race-bounded margin. That imprecision is accepted.
func (l *Limiter) CheckAndConsume(ctx context.Context, scopeValue string, p Policy) (Decision, error) {
	now := l.clock()
	windowSec := int64(p.Window / time.Second)
	if windowSec < 1 {
		// bucket math runs on whole seconds, so sub-second windows count
		// as one second instead of dividing by zero
		windowSec = 1
	}
	bucket := now.Unix() / windowSec
	windowEnd := time.Unix((bucket+1)*windowSec, 0)

	ttl := windowEnd.Sub(now)
	if ttl < time.Second {
		ttl = time.Second
	}

	key := counterKey(p, scopeValue, bucket)

	if inc, ok := l.store.(IncrementerStore); ok {
		count, err := inc.Incr(ctx, key, ttl)
		if err != nil {
			return l.storeFault(ctx, key, err)
		}
		if count > int64(p.MaxRequests) {
			return deny(ttl), nil
		}
		return Decision{Allowed: true, Remaining: int64(p.MaxRequests) - count}, nil
	}

	var count int64
	c, err := l.store.Get(ctx, key)
	switch {
	case err == nil:
		count = c.Count
	case errors.Is(err, common.ErrorNotFound):
		count = 0
	default:
		return l.storeFault(ctx, key, err)
	}

	if count >= int64(p.MaxRequests) {
		return deny(ttl), nil
	}

	if err := l.store.Put(ctx, key, count+1, ttl); err != nil {
		return l.storeFault(ctx, key, err)
	}

	return Decision{Allowed: true, Remaining: int64(p.MaxRequests) - count - 1}, nil
}

func (l *Limiter) storeFault(ctx context.Context, key string, err error) (Decision, error) {
	wrapped := fmt.Errorf("%w: %v", common.ErrorStoreUnavailable, err)
	if l.failOpen {
		l.logger.Warn(ctx, "counter store fault, admitting", "key", key, "error", err.Error())
		return Decision{Allowed: true, Remaining: -1}, wrapped
	}
	l.logger.Warn(ctx, "counter store fault, denying", "key", key, "error", err.Error())
	return deny(time.Second), wrapped
}

func deny(retryAfter time.Duration) Decision {
	return Decision{Allowed: false, RetryAfter: retryAfter}
}

func counterKey(p Policy, scopeValue string, bucket int64) string {
	return fmt.Sprintf("rl:%s:%s:%s:%d", p.Scope, scopeValue, p.Name, bucket)
}

// RetryAfterSeconds converts a retry hint to the integer seconds carried by
// the Retry-After header, rounding up and never returning less than 1.
func RetryAfterSeconds(d time.Duration) int {
	s := int((d + time.Second - 1) / time.Second)
	if s < 1 {
		s = 1
	}
	return s
}
