// Package app provides the application lifecycle: dependency wiring,
// startup and graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/gopost/promobot/internal/api"
	"github.com/gopost/promobot/internal/bot"
	"github.com/gopost/promobot/internal/config"
	"github.com/gopost/promobot/internal/dedup"
	"github.com/gopost/promobot/internal/forum"
	"github.com/gopost/promobot/internal/logger"
	"github.com/gopost/promobot/internal/metrics"
	"github.com/gopost/promobot/internal/models"
	redisclient "github.com/gopost/promobot/internal/redis"
	"github.com/gopost/promobot/internal/store"
	"github.com/gopost/promobot/internal/textgen"
	"github.com/gopost/promobot/internal/worker"
)

const (
	// DefaultShutdownTimeout bounds graceful HTTP shutdown.
	DefaultShutdownTimeout = 30 * time.Second

	// repliedPostTTL keeps replied-post markers for a week, matching
	// the recent-replies retention in metrics.
	repliedPostTTL = 7 * 24 * time.Hour
)

// App holds the wired application.
type App struct {
	config       *config.Config
	logger       logger.Logger
	store        *store.Store
	redisClient  *goredis.Client
	tracker      *metrics.Tracker
	dedup        *dedup.Tracker
	bot          *bot.Bot
	cycleWorker  *worker.CycleWorker
	housekeeping *worker.Housekeeping
	httpServer   *http.Server
	version      string

	mu    sync.Mutex
	forum *forum.Client
}

// Options contains configuration for creating a new App.
type Options struct {
	ConfigPath string
	Version    string
}

// New creates an App with all dependencies initialized. Forum,
// generator and Redis are optional; without them the bot runs in the
// matching degraded mode.
func New(ctx context.Context, opts Options) (*App, error) {
	cfg, appLogger, err := loadConfigAndLogger(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	appLogger = appLogger.With(
		logger.String("service", "promobot"),
		logger.String("version", opts.Version),
	)

	st, err := store.Open(ctx, cfg.Store.Path)
	if err != nil {
		_ = appLogger.Sync()
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &App{
		config:  cfg,
		logger:  appLogger,
		store:   st,
		version: opts.Version,
	}

	if cfg.Redis.Enabled {
		redisClient, redisErr := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if redisErr != nil {
			_ = st.Close()
			_ = appLogger.Sync()
			return nil, fmt.Errorf("connect to Redis: %w", redisErr)
		}
		a.redisClient = redisClient
		a.tracker = metrics.NewTracker(redisClient, appLogger)
		a.dedup = dedup.NewTracker(redisClient, repliedPostTTL, appLogger)
	}

	deps := a.buildBotDeps(ctx)
	a.bot = bot.New(deps, cfg.Bot)

	a.cycleWorker = worker.NewCycleWorker(a.bot, 0, appLogger)
	a.housekeeping, err = worker.NewHousekeeping(a.bot, appLogger)
	if err != nil {
		_ = st.Close()
		_ = appLogger.Sync()
		return nil, fmt.Errorf("create housekeeping scheduler: %w", err)
	}

	router := api.NewRouter(api.Deps{
		Bot:     a.bot,
		Store:   st,
		Tracker: a.tracker,
		Redis:   a.redisClient,
		Applier: a,
		Config:  cfg,
		Logger:  appLogger,
	})

	a.httpServer = &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return a, nil
}

func loadConfigAndLogger(configPath string) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	appLogger, err := logger.NewLogger(cfg.Debug)
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}

	return cfg, appLogger, nil
}

// buildBotDeps wires the optional collaborators. Missing credentials
// log a warning instead of failing startup; they can be supplied later
// through the API.
func (a *App) buildBotDeps(ctx context.Context) bot.Deps {
	deps := bot.Deps{
		Store:  a.store,
		Logger: a.logger,
	}
	if a.tracker != nil {
		deps.Metrics = a.tracker
	}
	if a.dedup != nil {
		deps.Dedup = a.dedup
	}

	if creds, ok := a.resolveForumCredentials(ctx); ok {
		client, err := forum.NewClient(a.config.Forum, creds, a.logger)
		if err != nil {
			a.logger.Warn("failed to create forum client, running without forum access", logger.Error(err))
		} else {
			a.forum = client
			deps.Fetcher = client
			deps.Submitter = client
		}
	} else {
		a.logger.Warn("no forum credentials configured, running without forum access")
	}

	if creds, ok := a.resolveGeneratorCredentials(ctx); ok {
		gen, err := textgen.NewGeminiGenerator(ctx, a.config.Generator, creds.APIKey, a.logger)
		if err != nil {
			a.logger.Warn("failed to create generator, replies fall back to templates", logger.Error(err))
		} else {
			deps.Generator = gen
		}
	} else {
		a.logger.Warn("no generator credentials configured, replies fall back to templates")
	}

	return deps
}

// resolveForumCredentials prefers stored credentials over environment
// variables. Credentials found only in the environment are written back
// to the store.
func (a *App) resolveForumCredentials(ctx context.Context) (models.ForumCredentials, bool) {
	stored, err := a.store.GetForumCredentials(ctx)
	if err == nil && stored.Complete() {
		return *stored, true
	}
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		a.logger.Warn("failed to load stored forum credentials", logger.Error(err))
	}

	creds := models.ForumCredentials{
		ClientID:     os.Getenv("FORUM_CLIENT_ID"),
		ClientSecret: os.Getenv("FORUM_CLIENT_SECRET"),
		Username:     os.Getenv("FORUM_USERNAME"),
		Password:     os.Getenv("FORUM_PASSWORD"),
	}
	if !creds.Complete() {
		return models.ForumCredentials{}, false
	}
	if saveErr := a.store.SaveForumCredentials(ctx, creds); saveErr != nil {
		a.logger.Warn("failed to persist forum credentials from environment", logger.Error(saveErr))
	}
	return creds, true
}

func (a *App) resolveGeneratorCredentials(ctx context.Context) (models.GeneratorCredentials, bool) {
	stored, err := a.store.GetGeneratorCredentials(ctx)
	if err == nil && stored.Complete() {
		return *stored, true
	}
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		a.logger.Warn("failed to load stored generator credentials", logger.Error(err))
	}

	creds := models.GeneratorCredentials{APIKey: os.Getenv("GEMINI_API_KEY")}
	if !creds.Complete() {
		return models.GeneratorCredentials{}, false
	}
	if saveErr := a.store.SaveGeneratorCredentials(ctx, creds); saveErr != nil {
		a.logger.Warn("failed to persist generator credentials from environment", logger.Error(saveErr))
	}
	return creds, true
}

// ApplyForumCredentials rebuilds the forum client with new credentials
// and swaps it into the bot.
func (a *App) ApplyForumCredentials(_ context.Context, creds models.ForumCredentials) error {
	client, err := forum.NewClient(a.config.Forum, creds, a.logger)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.forum = client
	a.mu.Unlock()

	a.bot.SetForum(client, client)
	return nil
}

// ApplyGeneratorCredentials rebuilds the text generator and swaps it
// into the bot.
func (a *App) ApplyGeneratorCredentials(ctx context.Context, creds models.GeneratorCredentials) error {
	gen, err := textgen.NewGeminiGenerator(ctx, a.config.Generator, creds.APIKey, a.logger)
	if err != nil {
		return err
	}
	a.bot.SetGenerator(gen)
	return nil
}

// VerifyForum checks the current forum credentials against the auth
// endpoint.
func (a *App) VerifyForum(ctx context.Context) error {
	a.mu.Lock()
	client := a.forum
	a.mu.Unlock()

	if client == nil {
		return forum.ErrMissingCredentials
	}
	return client.VerifyCredentials(ctx)
}

// Run starts the workers and the HTTP server, then blocks until a
// shutdown signal or a fatal server error.
func (a *App) Run(ctx context.Context) error {
	workerCtx, workerCancel := context.WithCancel(ctx)
	defer workerCancel()

	a.cycleWorker.Start(workerCtx)
	a.housekeeping.Start()

	serverErr := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server listening", logger.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigChan:
		a.logger.Info("shutting down gracefully", logger.String("signal", sig.String()))
	case err := <-serverErr:
		a.logger.Error("HTTP server error", logger.Error(err))
		runErr = err
	case <-ctx.Done():
		a.logger.Info("context cancelled, shutting down")
	}

	workerCancel()
	a.cycleWorker.Stop()
	a.housekeeping.Stop()
	a.shutdownHTTPServer()

	a.logger.Info("service stopped")
	return runErr
}

func (a *App) shutdownHTTPServer() {
	ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(ctx); err != nil {
		a.logger.Error("HTTP server shutdown error", logger.Error(err))
	} else {
		a.logger.Info("HTTP server stopped")
	}
}

// FlushDedup clears the replied-post cache.
func (a *App) FlushDedup(ctx context.Context) error {
	if a.dedup == nil {
		return errors.New("redis is not enabled")
	}
	return a.dedup.FlushAll(ctx)
}

// Close releases resources.
func (a *App) Close() error {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("failed to close Redis client", logger.Error(err))
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close store", logger.Error(err))
		}
	}
	return a.logger.Sync()
}

// Logger returns the application logger.
func (a *App) Logger() logger.Logger {
	return a.logger
}
