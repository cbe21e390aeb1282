package dedup

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopost/promobot/internal/logger"
)

func newTestTracker(t *testing.T) (*Tracker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTracker(client, 7*24*time.Hour, logger.NewNopLogger()), mr
}

func TestMarkAndHasReplied(t *testing.T) {
	tracker, mr := newTestTracker(t)
	ctx := context.Background()

	assert.False(t, tracker.HasReplied(ctx, "abc123"))

	require.NoError(t, tracker.MarkReplied(ctx, "abc123"))
	assert.True(t, tracker.HasReplied(ctx, "abc123"))
	assert.False(t, tracker.HasReplied(ctx, "other"))

	ttl := mr.TTL("promobot:replied:post:abc123")
	assert.Equal(t, 7*24*time.Hour, ttl)
}

func TestHasRepliedAfterExpiry(t *testing.T) {
	tracker, mr := newTestTracker(t)
	ctx := context.Background()

	require.NoError(t, tracker.MarkReplied(ctx, "abc123"))
	mr.FastForward(8 * 24 * time.Hour)
	assert.False(t, tracker.HasReplied(ctx, "abc123"))
}

func TestClear(t *testing.T) {
	tracker, _ := newTestTracker(t)
	ctx := context.Background()

	require.NoError(t, tracker.MarkReplied(ctx, "abc123"))
	require.NoError(t, tracker.Clear(ctx, "abc123"))
	assert.False(t, tracker.HasReplied(ctx, "abc123"))
}

func TestFlushAll(t *testing.T) {
	tracker, mr := newTestTracker(t)
	ctx := context.Background()

	require.NoError(t, tracker.MarkReplied(ctx, "a"))
	require.NoError(t, tracker.MarkReplied(ctx, "b"))
	require.NoError(t, mr.Set("unrelated:key", "keep"))

	require.NoError(t, tracker.FlushAll(ctx))

	assert.False(t, tracker.HasReplied(ctx, "a"))
	assert.False(t, tracker.HasReplied(ctx, "b"))
	got, err := mr.Get("unrelated:key")
	require.NoError(t, err)
	assert.Equal(t, "keep", got)
}
