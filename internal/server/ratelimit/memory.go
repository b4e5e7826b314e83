package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/mailbox/internal/common"
)

// MemoryStore is an in-process CounterStore for tests and single-node
// development runs. It deliberately implements only Get/Put, exercising the
// limiter's non-atomic fallback path.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	clock   func() time.Time
}

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

// NewMemoryStore creates an empty MemoryStore. A non-nil clock overrides
// time.Now for expiry checks.
func NewMemoryStore(clock func() time.Time) *MemoryStore {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		clock:   clock,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Counter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok || !ent.expiresAt.After(s.clock()) {
		delete(s.entries, key)
		return nil, common.ErrorNotFound
	}
	return &Counter{Count: ent.count, ExpiresAt: ent.expiresAt}, nil
}

func (s *MemoryStore) Put(_ context.Context, key string, count int64, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{count: count, expiresAt: s.clock().Add(ttl)}
	return nil
}

// Cleanup drops expired entries. Counter keys are bucket-scoped and short
// lived, so a periodic sweep is enough to bound memory.
func (s *MemoryStore) Cleanup() {
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if !ent.expiresAt.After(now) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor sweeps expired entries every interval until ctx is done.
func (s *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	t := time.NewTicker(interval)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}
