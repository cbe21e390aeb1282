// Package api exposes the HTTP control surface: bot lifecycle, catalog
// management, configuration, credentials and statistics.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"

	"github.com/gopost/promobot/internal/bot"
	"github.com/gopost/promobot/internal/config"
	"github.com/gopost/promobot/internal/logger"
	"github.com/gopost/promobot/internal/metrics"
	"github.com/gopost/promobot/internal/models"
	redisclient "github.com/gopost/promobot/internal/redis"
	"github.com/gopost/promobot/internal/store"
)

// CredentialApplier rebuilds live clients after a credential update so
// changes take effect without a restart.
type CredentialApplier interface {
	ApplyForumCredentials(ctx context.Context, creds models.ForumCredentials) error
	ApplyGeneratorCredentials(ctx context.Context, creds models.GeneratorCredentials) error
	VerifyForum(ctx context.Context) error
}

// Router holds the dependencies for the HTTP API.
type Router struct {
	bot     *bot.Bot
	store   *store.Store
	tracker *metrics.Tracker // optional
	redis   *goredis.Client  // optional
	applier CredentialApplier
	cfg     *config.Config
	logger  logger.Logger
}

// Deps bundles the router's dependencies. Tracker, Redis and Applier
// may be nil; the affected endpoints degrade gracefully.
type Deps struct {
	Bot     *bot.Bot
	Store   *store.Store
	Tracker *metrics.Tracker
	Redis   *goredis.Client
	Applier CredentialApplier
	Config  *config.Config
	Logger  logger.Logger
}

// NewRouter creates a Router with the given dependencies.
func NewRouter(deps Deps) *Router {
	log := deps.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Router{
		bot:     deps.Bot,
		store:   deps.Store,
		tracker: deps.Tracker,
		redis:   deps.Redis,
		applier: deps.Applier,
		cfg:     deps.Config,
		logger:  log,
	}
}

// SetupRoutes configures the gin engine with all API routes.
func (r *Router) SetupRoutes() *gin.Engine {
	if !r.cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware(r.cfg.Server.CORSOrigins))

	// Public endpoints
	engine.GET("/health", r.healthCheck)

	v1 := engine.Group("/api/v1")
	if r.cfg.Server.APIKey != "" {
		v1.Use(apiKeyMiddleware(r.cfg.Server.APIKey))
	}
	{
		v1.GET("/status", r.getStatus)
		v1.POST("/start", r.startBot)
		v1.POST("/stop", r.stopBot)
		v1.POST("/run", r.runCycle)

		v1.GET("/config", r.getConfig)
		v1.PUT("/config", r.updateConfig)

		v1.GET("/products", r.listProducts)
		v1.POST("/products", r.createProduct)
		v1.GET("/products/:id", r.getProduct)
		v1.PUT("/products/:id", r.updateProduct)
		v1.DELETE("/products/:id", r.deleteProduct)

		v1.GET("/personas", r.listPersonas)
		v1.POST("/personas", r.createPersona)
		v1.GET("/personas/:id", r.getPersona)
		v1.PUT("/personas/:id", r.updatePersona)
		v1.DELETE("/personas/:id", r.deletePersona)

		v1.GET("/templates", r.listTemplates)
		v1.POST("/templates", r.createTemplate)
		v1.DELETE("/templates/:id", r.deleteTemplate)

		v1.GET("/stats", r.getStats)
		v1.GET("/replies/recent", r.getRecentReplies)

		v1.GET("/credentials", r.getCredentials)
		v1.PUT("/credentials/forum", r.updateForumCredentials)
		v1.PUT("/credentials/generator", r.updateGeneratorCredentials)
		v1.POST("/credentials/test", r.testCredentials)
	}

	return engine
}

func (r *Router) healthCheck(c *gin.Context) {
	health := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if r.redis != nil {
		if ok, err := redisclient.CheckConnection(r.redis); !ok || err != nil {
			health["redis"] = "unhealthy"
			health["status"] = "degraded"
		} else {
			health["redis"] = "healthy"
		}
	}

	c.JSON(http.StatusOK, health)
}
