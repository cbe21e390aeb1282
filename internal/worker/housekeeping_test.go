package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopost/promobot/internal/config"
	"github.com/gopost/promobot/internal/logger"
)

func TestNewHousekeeping(t *testing.T) {
	b := newTestBot(&countingStore{})

	h, err := NewHousekeeping(b, logger.NewNopLogger())
	require.NoError(t, err)
	require.NotNil(t, h)

	h.Start()
	h.Stop()
}

func TestHousekeepingResetClearsCounters(t *testing.T) {
	b := newTestBot(&countingStore{cfg: config.BotConfig{ActiveHoursStart: 0, ActiveHoursEnd: 23}})
	b.State().AddCycleCounts(3, 2, 1)

	h, err := NewHousekeeping(b, nil)
	require.NoError(t, err)

	h.reset()

	counters := b.State().Counters()
	assert.Zero(t, counters.PostsAnalyzed)
	assert.Zero(t, counters.PostsFiltered)
	assert.Zero(t, counters.PostsSelected)
	assert.Zero(t, counters.RepliesPosted)
}

func TestHousekeepingSnapshotWritesStats(t *testing.T) {
	st := &countingStore{}
	b := newTestBot(st)
	b.State().AddCycleCounts(5, 4, 1)

	h, err := NewHousekeeping(b, nil)
	require.NoError(t, err)

	h.snapshot()

	st.mu.Lock()
	defer st.mu.Unlock()
	require.NotNil(t, st.lastUpsert)
	assert.Equal(t, 5, st.lastUpsert.PostsAnalyzed)
	assert.Equal(t, 4, st.lastUpsert.PostsFiltered)
	assert.Equal(t, 1, st.lastUpsert.PostsSelected)
}
