package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowUpToLimit(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := store.Allow(ctx, "ip-1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d should be allowed", i+1)
		assert.Equal(t, 3, res.Limit)
		assert.Equal(t, 2-i, res.Remaining)
	}

	res, err := store.Allow(ctx, "ip-1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.False(t, res.ResetAt.IsZero())
}

func TestKeysAreIndependent(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	_, err := store.Allow(ctx, "ip-1", 1, time.Minute)
	require.NoError(t, err)
	blocked, err := store.Allow(ctx, "ip-1", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, blocked.Allowed)

	other, err := store.Allow(ctx, "ip-2", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestWindowSlides(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	_, err := store.Allow(ctx, "ip-1", 1, 20*time.Millisecond)
	require.NoError(t, err)
	blocked, err := store.Allow(ctx, "ip-1", 1, 20*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, blocked.Allowed)

	time.Sleep(25 * time.Millisecond)
	res, err := store.Allow(ctx, "ip-1", 1, 20*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, res.Allowed, "expired entries must stop counting")
}
