// Package worker provides the background loops that drive the bot:
// the periodic monitoring cycle and the daily housekeeping jobs.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gopost/promobot/internal/bot"
	"github.com/gopost/promobot/internal/logger"
)

const defaultCycleInterval = 60 * time.Second

// CycleWorker invokes the bot's monitoring cycle on a fixed interval.
// The bot itself decides whether a cycle actually does anything (active
// flag, active hours), so the worker ticks unconditionally.
type CycleWorker struct {
	bot      *bot.Bot
	interval time.Duration
	logger   logger.Logger

	stopChan chan struct{}
	wg       sync.WaitGroup
	started  bool
	mu       sync.Mutex
}

// NewCycleWorker creates a cycle worker. A non-positive interval falls
// back to the default.
func NewCycleWorker(b *bot.Bot, interval time.Duration, log logger.Logger) *CycleWorker {
	if interval <= 0 {
		interval = defaultCycleInterval
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &CycleWorker{
		bot:      b,
		interval: interval,
		logger:   log,
		stopChan: make(chan struct{}),
	}
}

// Start begins the cycle loop.
func (w *CycleWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(ctx)

	w.logger.Info("cycle worker started", logger.Duration("interval", w.interval))
}

// Stop gracefully stops the worker.
func (w *CycleWorker) Stop() {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return
	}
	w.started = false
	w.mu.Unlock()

	close(w.stopChan)
	w.wg.Wait()
	w.logger.Info("cycle worker stopped")
}

// IsRunning reports whether the worker loop is active.
func (w *CycleWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.started
}

func (w *CycleWorker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.runOnce(ctx)
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (w *CycleWorker) runOnce(ctx context.Context) {
	summary, err := w.bot.RunCycle(ctx)
	if err != nil {
		// A manual run may hold the cycle lock; the next tick catches up.
		if errors.Is(err, bot.ErrCycleRunning) {
			w.logger.Debug("cycle already in flight, skipping tick")
			return
		}
		w.logger.Error("cycle failed", logger.Error(err))
		return
	}
	if summary.ChannelsChecked > 0 {
		w.logger.Debug("cycle finished",
			logger.Int("channels", summary.ChannelsChecked),
			logger.Int("replies", summary.RepliesPosted),
		)
	}
}
