package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopost/promobot/internal/bot"
	"github.com/gopost/promobot/internal/config"
	"github.com/gopost/promobot/internal/logger"
	"github.com/gopost/promobot/internal/models"
)

// countingStore counts catalog loads so tests can observe cycle ticks.
type countingStore struct {
	cfg          config.BotConfig
	catalogLoads atomic.Int64

	mu         sync.Mutex
	lastUpsert *models.DailyStats
}

func (s *countingStore) GetBotConfig(_ context.Context) (*config.BotConfig, error) {
	cfg := s.cfg
	return &cfg, nil
}

func (s *countingStore) SaveBotConfig(_ context.Context, _ config.BotConfig) error { return nil }

func (s *countingStore) ListProducts(_ context.Context) ([]models.Product, error) {
	s.catalogLoads.Add(1)
	return nil, nil
}

func (s *countingStore) ListPersonas(_ context.Context) ([]models.Persona, error) { return nil, nil }

func (s *countingStore) ListTemplates(_ context.Context) ([]models.ReplyTemplate, error) {
	return nil, nil
}

func (s *countingStore) UpsertDailyStats(_ context.Context, stats models.DailyStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastUpsert = &stats
	return nil
}

func newTestBot(st *countingStore) *bot.Bot {
	noon := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	return bot.New(bot.Deps{
		Store:  st,
		Logger: logger.NewNopLogger(),
		Now:    func() time.Time { return noon },
	}, config.DefaultBotConfig())
}

func TestCycleWorkerTicks(t *testing.T) {
	st := &countingStore{cfg: config.BotConfig{
		ActiveHoursStart: 0,
		ActiveHoursEnd:   23,
	}}
	b := newTestBot(st)
	b.Start()

	w := NewCycleWorker(b, 10*time.Millisecond, logger.NewNopLogger())
	w.Start(context.Background())
	defer w.Stop()

	require.Eventually(t, func() bool {
		return st.catalogLoads.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond, "expected at least two cycle ticks")
}

func TestCycleWorkerStartIdempotent(t *testing.T) {
	b := newTestBot(&countingStore{})

	w := NewCycleWorker(b, time.Hour, logger.NewNopLogger())
	w.Start(context.Background())
	w.Start(context.Background())
	assert.True(t, w.IsRunning())

	w.Stop()
	assert.False(t, w.IsRunning())

	// second Stop is a no-op
	w.Stop()
}

func TestCycleWorkerStopsOnContextCancel(t *testing.T) {
	st := &countingStore{cfg: config.BotConfig{ActiveHoursStart: 0, ActiveHoursEnd: 23}}
	b := newTestBot(st)
	b.Start()

	ctx, cancel := context.WithCancel(context.Background())
	w := NewCycleWorker(b, 10*time.Millisecond, logger.NewNopLogger())
	w.Start(ctx)

	cancel()
	time.Sleep(50 * time.Millisecond)
	loads := st.catalogLoads.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, loads, st.catalogLoads.Load(), "ticks must stop after cancel")
}

func TestCycleWorkerDefaultInterval(t *testing.T) {
	w := NewCycleWorker(newTestBot(&countingStore{}), 0, nil)
	assert.Equal(t, defaultCycleInterval, w.interval)
}
