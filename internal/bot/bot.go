package bot

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/gopost/promobot/internal/config"
	"github.com/gopost/promobot/internal/logger"
	"github.com/gopost/promobot/internal/models"
)

// Store is the subset of the settings store the bot reads and writes.
type Store interface {
	GetBotConfig(ctx context.Context) (*config.BotConfig, error)
	SaveBotConfig(ctx context.Context, bc config.BotConfig) error
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListPersonas(ctx context.Context) ([]models.Persona, error)
	ListTemplates(ctx context.Context) ([]models.ReplyTemplate, error)
	UpsertDailyStats(ctx context.Context, stats models.DailyStats) error
}

// Fetcher retrieves recent posts from a channel.
type Fetcher interface {
	FetchRecent(ctx context.Context, channel string, limit int) ([]models.Post, error)
}

// Metrics records cycle activity. Implementations must be safe for
// concurrent use; a nil Metrics disables recording.
type Metrics interface {
	RecordReply(ctx context.Context, sub models.ReplySubmission)
	RecordSkip(ctx context.Context, channel, reason string)
	RecordFetchError(ctx context.Context, channel string)
}

// Dedup remembers which posts already received a reply. A nil Dedup
// disables the check.
type Dedup interface {
	HasReplied(ctx context.Context, postID string) bool
	MarkReplied(ctx context.Context, postID string) error
}

// CycleSummary aggregates one orchestrator pass over all channels.
type CycleSummary struct {
	ChannelsChecked int       `json:"channels_checked"`
	PostsAnalyzed   int       `json:"posts_analyzed"`
	PostsFiltered   int       `json:"posts_filtered"`
	PostsSelected   int       `json:"posts_selected"`
	RepliesPosted   int       `json:"replies_posted"`
	Timestamp       time.Time `json:"timestamp"`
}

// Status is the externally visible bot state.
type Status struct {
	Active       bool               `json:"active"`
	DryRun       bool               `json:"dry_run"`
	Counters     models.DayCounters `json:"counters"`
	TotalReplies int                `json:"total_replies"`
	LastReplyAt  *time.Time         `json:"last_reply_at,omitempty"`
	Config       config.BotConfig   `json:"config"`
}

// Deps are the collaborators a Bot is wired with. Fetcher, Submitter,
// Generator, Metrics and Dedup may be nil; the bot then runs in the
// matching degraded mode.
type Deps struct {
	Store     Store
	Fetcher   Fetcher
	Submitter Submitter
	Generator Generator
	Metrics   Metrics
	Dedup     Dedup
	Logger    logger.Logger

	// Rand, Now and Wait are injectable for tests. Nil gets the real
	// thing.
	Rand *rand.Rand
	Now  func() time.Time
	Wait func(ctx context.Context, d time.Duration) error
}

// Bot is the cycle orchestrator. At most one cycle executes at a time;
// the pacing delay between replies is a blocking wait inside the cycle.
type Bot struct {
	store    Store
	fetcher  Fetcher
	gate     gate
	composer *Composer
	metrics  Metrics
	dedup    Dedup
	logger   logger.Logger
	state    *State
	defaults config.BotConfig
	rand     *rand.Rand
	now      func() time.Time
	wait     func(ctx context.Context, d time.Duration) error
	cycleMu  sync.Mutex
	configMu sync.Mutex
}

// New creates a Bot with the given collaborators and fallback config.
func New(deps Deps, defaults config.BotConfig) *Bot {
	rnd := deps.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	wait := deps.Wait
	if wait == nil {
		wait = sleepContext
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &Bot{
		store:    deps.Store,
		fetcher:  deps.Fetcher,
		gate:     gate{submitter: deps.Submitter, logger: log},
		composer: NewComposer(deps.Generator, rnd, log),
		metrics:  deps.Metrics,
		dedup:    deps.Dedup,
		logger:   log,
		state:    NewState(),
		defaults: defaults,
		rand:     rnd,
		now:      now,
		wait:     wait,
	}
}

// Start activates cycle execution.
func (b *Bot) Start() bool {
	started := b.state.Activate()
	if started {
		b.logger.Info("bot activated")
	}
	return started
}

// Stop deactivates cycle execution. An in-flight cycle finishes.
func (b *Bot) Stop() bool {
	stopped := b.state.Deactivate()
	if stopped {
		b.logger.Info("bot deactivated")
	}
	return stopped
}

// Status reports the current state and effective configuration.
func (b *Bot) Status(ctx context.Context) Status {
	st := Status{
		Active:       b.state.Active(),
		Counters:     b.state.Counters(),
		TotalReplies: b.state.TotalReplies(),
		Config:       b.CurrentConfig(ctx),
	}
	st.DryRun = st.Config.DryRun
	if last := b.state.LastReplyAt(); !last.IsZero() {
		st.LastReplyAt = &last
	}
	return st
}

// CurrentConfig resolves the effective configuration: stored values
// win, and the startup defaults cover everything else. A broken stored
// config is logged and ignored rather than failing the caller.
func (b *Bot) CurrentConfig(ctx context.Context) config.BotConfig {
	stored, err := b.store.GetBotConfig(ctx)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			b.logger.Warn("failed to load stored config, using defaults", logger.Error(err))
		}
		return b.defaults
	}
	return *stored
}

// UpdateConfig validates and persists a new runtime configuration. It
// takes effect on the next cycle.
func (b *Bot) UpdateConfig(ctx context.Context, bc config.BotConfig) error {
	if err := bc.Validate(); err != nil {
		return err
	}

	b.configMu.Lock()
	defer b.configMu.Unlock()
	if err := b.store.SaveBotConfig(ctx, bc); err != nil {
		return err
	}

	b.logger.Info("runtime config updated",
		logger.Strings("channels", bc.Channels),
		logger.Bool("dry_run", bc.DryRun),
	)
	return nil
}

// RunCycle executes one pass over all configured channels. It returns
// ErrCycleRunning when another cycle is in flight, and a partial
// summary when the context is cancelled mid-cycle.
func (b *Bot) RunCycle(ctx context.Context) (CycleSummary, error) {
	if !b.cycleMu.TryLock() {
		return CycleSummary{}, ErrCycleRunning
	}
	defer b.cycleMu.Unlock()

	summary := CycleSummary{Timestamp: b.now()}

	if !b.state.Active() {
		return summary, nil
	}

	// Config is snapshotted here; mid-cycle updates apply next cycle.
	cfg := b.CurrentConfig(ctx)

	if hour := b.now().Hour(); hour < cfg.ActiveHoursStart || hour >= cfg.ActiveHoursEnd {
		b.logger.Debug("outside active hours, skipping cycle",
			logger.Int("hour", hour),
			logger.Int("start", cfg.ActiveHoursStart),
			logger.Int("end", cfg.ActiveHoursEnd),
		)
		return summary, nil
	}

	catalog, err := b.loadCatalog(ctx)
	if err != nil {
		b.logger.Error("failed to load catalog, skipping cycle", logger.Error(err))
		return summary, err
	}

	b.logger.Info("cycle started",
		logger.Strings("channels", cfg.Channels),
		logger.Bool("dry_run", cfg.DryRun),
	)

	for _, channel := range cfg.Channels {
		summary.ChannelsChecked++

		if err := b.processChannel(ctx, channel, cfg, catalog, &summary); err != nil {
			// Cancellation: report what was done so far.
			b.finishCycle(&summary)
			return summary, err
		}
	}

	b.finishCycle(&summary)
	b.logger.Info("cycle complete",
		logger.Int("channels_checked", summary.ChannelsChecked),
		logger.Int("posts_analyzed", summary.PostsAnalyzed),
		logger.Int("posts_filtered", summary.PostsFiltered),
		logger.Int("posts_selected", summary.PostsSelected),
		logger.Int("replies_posted", summary.RepliesPosted),
	)
	return summary, nil
}

type catalog struct {
	products  []models.Product
	personas  []models.Persona
	templates []models.ReplyTemplate
}

func (b *Bot) loadCatalog(ctx context.Context) (catalog, error) {
	var c catalog
	var err error

	if c.products, err = b.store.ListProducts(ctx); err != nil {
		return c, err
	}
	if c.personas, err = b.store.ListPersonas(ctx); err != nil {
		return c, err
	}
	if c.templates, err = b.store.ListTemplates(ctx); err != nil {
		return c, err
	}
	return c, nil
}

// processChannel runs the pipeline over one channel's batch. Only a
// cancelled context aborts the cycle; fetch failures skip the channel.
func (b *Bot) processChannel(
	ctx context.Context,
	channel string,
	cfg config.BotConfig,
	cat catalog,
	summary *CycleSummary,
) error {
	if b.fetcher == nil {
		b.logger.Warn("no forum capability configured, channel skipped",
			logger.String("channel", channel),
		)
		return nil
	}

	posts, err := b.fetcher.FetchRecent(ctx, channel, cfg.PostsPerChannel)
	if err != nil {
		b.logger.Error("failed to fetch channel, skipping",
			logger.String("channel", channel),
			logger.Error(err),
		)
		if b.metrics != nil {
			b.metrics.RecordFetchError(ctx, channel)
		}
		return nil
	}

	for i := range posts {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := b.processPost(ctx, posts[i], cfg, cat, summary); err != nil {
			return err
		}
	}

	return nil
}

func (b *Bot) processPost(
	ctx context.Context,
	post models.Post,
	cfg config.BotConfig,
	cat catalog,
	summary *CycleSummary,
) error {
	summary.PostsAnalyzed++

	if b.dedup != nil && b.dedup.HasReplied(ctx, post.ID) {
		summary.PostsFiltered++
		b.logger.Debug("post already replied to, skipping",
			logger.String("post_id", post.ID),
		)
		if b.metrics != nil {
			b.metrics.RecordSkip(ctx, post.Channel, "already replied")
		}
		return nil
	}

	verdict := Evaluate(post, cfg, b.now())
	if !verdict.Passed {
		summary.PostsFiltered++
		b.logger.Debug("post filtered",
			logger.String("post_id", post.ID),
			logger.String("reason", verdict.Reason),
		)
		if b.metrics != nil {
			b.metrics.RecordSkip(ctx, post.Channel, verdict.Reason)
		}
		return nil
	}

	match := SelectProduct(post, cat.products)
	if match.Product == nil {
		return nil
	}
	summary.PostsSelected++

	persona := b.pickPersona(cat.personas)
	text, generated := b.composer.Compose(ctx, post, *match.Product, persona, cat.templates)

	if !b.gate.submit(ctx, post, text, cfg.DryRun) {
		return nil
	}

	now := b.now()
	summary.RepliesPosted++
	b.state.RecordReply(now)
	if b.dedup != nil {
		if err := b.dedup.MarkReplied(ctx, post.ID); err != nil {
			b.logger.Warn("failed to mark post as replied",
				logger.String("post_id", post.ID),
				logger.Error(err),
			)
		}
	}
	if b.metrics != nil {
		b.metrics.RecordReply(ctx, models.ReplySubmission{
			PostID:    post.ID,
			Channel:   post.Channel,
			Body:      text,
			ProductID: match.Product.ID,
			Generated: generated,
			PostedAt:  now,
		})
	}

	b.logger.Info("reply posted",
		logger.String("post_id", post.ID),
		logger.String("channel", post.Channel),
		logger.String("product", match.Product.Name),
		logger.Bool("generated", generated),
		logger.Bool("dry_run", cfg.DryRun),
	)

	// The pacing delay is the rate limit: it blocks the whole cycle
	// after every successful reply, including the last one.
	pacing := time.Duration(cfg.ReplyPacingSeconds) * time.Second
	if pacing > 0 {
		if err := b.wait(ctx, pacing); err != nil {
			return err
		}
	}

	return nil
}

func (b *Bot) pickPersona(personas []models.Persona) models.Persona {
	if len(personas) == 0 {
		return models.Persona{Name: "a helpful forum user", Tone: "friendly", Style: "concise"}
	}
	return personas[b.rand.Intn(len(personas))]
}

// finishCycle folds the pipeline counters into the day-scoped state.
// Replies were already recorded one by one.
func (b *Bot) finishCycle(summary *CycleSummary) {
	b.state.AddCycleCounts(summary.PostsAnalyzed, summary.PostsFiltered, summary.PostsSelected)
}

// ResetDayCounters zeroes the day-scoped counters. Intended to be
// driven by the midnight housekeeping job.
func (b *Bot) ResetDayCounters() {
	final := b.state.ResetDayCounters()
	b.logger.Info("day counters reset",
		logger.Int("posts_analyzed", final.PostsAnalyzed),
		logger.Int("replies_posted", final.RepliesPosted),
	)
}

// SnapshotDailyStats persists the current day counters under the given
// date (YYYY-MM-DD).
func (b *Bot) SnapshotDailyStats(ctx context.Context, date string) error {
	c := b.state.Counters()
	return b.store.UpsertDailyStats(ctx, models.DailyStats{
		Date:          date,
		PostsAnalyzed: c.PostsAnalyzed,
		PostsFiltered: c.PostsFiltered,
		PostsSelected: c.PostsSelected,
		RepliesPosted: c.RepliesPosted,
	})
}

// State exposes the shared state for status reporting by other
// components.
func (b *Bot) State() *State {
	return b.state
}

// SetForum swaps the forum capability, e.g. after a credential update.
// Blocks until any in-flight cycle completes.
func (b *Bot) SetForum(f Fetcher, s Submitter) {
	b.cycleMu.Lock()
	defer b.cycleMu.Unlock()
	b.fetcher = f
	b.gate.submitter = s
}

// SetGenerator swaps the generative capability. Blocks until any
// in-flight cycle completes.
func (b *Bot) SetGenerator(g Generator) {
	b.cycleMu.Lock()
	defer b.cycleMu.Unlock()
	b.composer.generator = g
}

// sleepContext blocks for d or until ctx is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
