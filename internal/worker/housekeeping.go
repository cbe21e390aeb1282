package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gopost/promobot/internal/bot"
	"github.com/gopost/promobot/internal/logger"
)

const snapshotTimeout = 10 * time.Second

// Housekeeping runs the daily jobs: snapshotting the day's counters to
// the store just before midnight and resetting them right after.
type Housekeeping struct {
	bot    *bot.Bot
	cron   *cron.Cron
	logger logger.Logger
}

// NewHousekeeping creates the daily job scheduler.
func NewHousekeeping(b *bot.Bot, log logger.Logger) (*Housekeeping, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	h := &Housekeeping{
		bot:    b,
		cron:   cron.New(),
		logger: log,
	}

	// Snapshot at 23:59 so the row carries the day it describes.
	if _, err := h.cron.AddFunc("59 23 * * *", h.snapshot); err != nil {
		return nil, err
	}
	if _, err := h.cron.AddFunc("0 0 * * *", h.reset); err != nil {
		return nil, err
	}
	return h, nil
}

// Start begins the cron scheduler.
func (h *Housekeeping) Start() {
	h.cron.Start()
	h.logger.Info("housekeeping scheduler started")
}

// Stop stops the scheduler and waits for running jobs.
func (h *Housekeeping) Stop() {
	ctx := h.cron.Stop()
	<-ctx.Done()
	h.logger.Info("housekeeping scheduler stopped")
}

func (h *Housekeeping) snapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	date := time.Now().Format("2006-01-02")
	if err := h.bot.SnapshotDailyStats(ctx, date); err != nil {
		h.logger.Error("failed to snapshot daily stats",
			logger.String("date", date),
			logger.Error(err),
		)
		return
	}
	h.logger.Info("daily stats snapshot written", logger.String("date", date))
}

func (h *Housekeeping) reset() {
	h.bot.ResetDayCounters()
	h.logger.Info("day counters reset")
}
