package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/mailbox/internal/common"
)

func TestMemoryStore_GetMissing(t *testing.T) {
	s := NewMemoryStore(nil)

	_, err := s.Get(context.Background(), "absent")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryStore_PutGetRoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	s := NewMemoryStore(clock.Now)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", 2, time.Minute))

	c, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.Count)
	assert.Equal(t, clock.Now().Add(time.Minute), c.ExpiresAt)
}

func TestMemoryStore_EntryExpires(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	s := NewMemoryStore(clock.Now)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", 1, time.Minute))

	clock.Advance(61 * time.Second)

	_, err := s.Get(ctx, "k")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryStore_CleanupDropsExpired(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	s := NewMemoryStore(clock.Now)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "old", 1, time.Second))
	require.NoError(t, s.Put(ctx, "new", 1, time.Hour))

	clock.Advance(2 * time.Second)
	s.Cleanup()

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.NotContains(t, s.entries, "old")
	assert.Contains(t, s.entries, "new")
}
