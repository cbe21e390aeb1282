package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultReadTimeoutSeconds is the default read timeout in seconds
	DefaultReadTimeoutSeconds = 10
	// DefaultWriteTimeoutSeconds is the default write timeout in seconds
	DefaultWriteTimeoutSeconds = 30
	// DefaultShutdownTimeoutSeconds is the default shutdown timeout in seconds
	DefaultShutdownTimeoutSeconds = 30
)

type Config struct {
	Debug     bool            `yaml:"debug"` // Application debug mode (controls log level and format)
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Redis     RedisConfig     `yaml:"redis"`
	Forum     ForumConfig     `yaml:"forum"`
	Generator GeneratorConfig `yaml:"generator"`
	Bot       BotConfig       `yaml:"bot"`
}

type ServerConfig struct {
	Address      string        `yaml:"address"`       // e.g., ":8091"
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"` // Default: 30s
	CORSOrigins  []string      `yaml:"cors_origins"`
	APIKey       string        `yaml:"api_key"` // Optional: require X-API-Key on mutating routes
}

// StoreConfig configures the SQLite-backed settings store.
type StoreConfig struct {
	Path string `yaml:"path"` // Default: promobot.db
}

// RedisConfig configures the optional metrics backend.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ForumConfig configures the forum API client.
type ForumConfig struct {
	BaseURL           string  `yaml:"base_url"`
	AuthURL           string  `yaml:"auth_url"`
	UserAgent         string  `yaml:"user_agent"`
	RequestsPerSecond float64 `yaml:"requests_per_second"` // Outbound request rate limit
}

// GeneratorConfig configures the generative text backend.
type GeneratorConfig struct {
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// BotConfig holds the runtime behaviour settings. Unlike the rest of the
// configuration it can be overwritten at runtime through the control API,
// and stored values take precedence over the config file on startup.
type BotConfig struct {
	Channels           []string `yaml:"channels"             json:"channels"`
	ActiveHoursStart   int      `yaml:"active_hours_start"   json:"active_hours_start"`
	ActiveHoursEnd     int      `yaml:"active_hours_end"     json:"active_hours_end"`
	MinPostScore       int      `yaml:"min_post_score"       json:"min_post_score"`
	MaxPostAgeHours    int      `yaml:"max_post_age_hours"   json:"max_post_age_hours"`
	ReplyPacingSeconds int      `yaml:"reply_pacing_seconds" json:"reply_pacing_seconds"`
	PostsPerChannel    int      `yaml:"posts_per_channel"    json:"posts_per_channel"`
	ForbiddenKeywords  []string `yaml:"forbidden_keywords"   json:"forbidden_keywords"`
	ExcludedLanguages  []string `yaml:"excluded_languages"   json:"excluded_languages"`
	DryRun             bool     `yaml:"dry_run"              json:"dry_run"`
}

// Validate checks if the server configuration is valid and sets defaults.
func (c *ServerConfig) Validate() error {
	if c.Address == "" {
		c.Address = ":8091"
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = DefaultReadTimeoutSeconds * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = DefaultWriteTimeoutSeconds * time.Second
	}
	return nil
}

// Validate checks if the bot configuration is valid.
func (c *BotConfig) Validate() error {
	if c.ActiveHoursStart < 0 || c.ActiveHoursStart > 23 {
		return fmt.Errorf("bot.active_hours_start must be 0-23, got %d", c.ActiveHoursStart)
	}
	if c.ActiveHoursEnd < 0 || c.ActiveHoursEnd > 23 {
		return fmt.Errorf("bot.active_hours_end must be 0-23, got %d", c.ActiveHoursEnd)
	}
	if c.MinPostScore < 0 {
		return fmt.Errorf("bot.min_post_score must be non-negative, got %d", c.MinPostScore)
	}
	if c.MaxPostAgeHours <= 0 {
		return fmt.Errorf("bot.max_post_age_hours must be positive, got %d", c.MaxPostAgeHours)
	}
	if c.ReplyPacingSeconds < 0 {
		return fmt.Errorf("bot.reply_pacing_seconds must be non-negative, got %d", c.ReplyPacingSeconds)
	}
	if c.PostsPerChannel <= 0 {
		return fmt.Errorf("bot.posts_per_channel must be positive, got %d", c.PostsPerChannel)
	}
	return nil
}

// Validate checks if the configuration is valid and returns an error if not.
func (c *Config) Validate() error {
	if c.Store.Path == "" {
		return errors.New("store.path is required")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return errors.New("redis.addr is required when redis.enabled is true")
	}
	if c.Forum.UserAgent == "" {
		return errors.New("forum.user_agent is required")
	}
	if c.Forum.RequestsPerSecond <= 0 {
		return fmt.Errorf("forum.requests_per_second must be positive, got %v", c.Forum.RequestsPerSecond)
	}
	if c.Generator.MaxTokens <= 0 {
		return fmt.Errorf("generator.max_tokens must be positive, got %d", c.Generator.MaxTokens)
	}
	if err := c.Bot.Validate(); err != nil {
		return err
	}
	return nil
}

// setDefaults sets default values for configuration fields
func setDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8091"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeoutSeconds * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeoutSeconds * time.Second
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "promobot.db"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Forum.BaseURL == "" {
		cfg.Forum.BaseURL = "https://oauth.reddit.com"
	}
	if cfg.Forum.AuthURL == "" {
		cfg.Forum.AuthURL = "https://www.reddit.com/api/v1/access_token"
	}
	if cfg.Forum.UserAgent == "" {
		cfg.Forum.UserAgent = "promobot/1.0"
	}
	if cfg.Forum.RequestsPerSecond == 0 {
		cfg.Forum.RequestsPerSecond = 1
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = "gemini-2.0-flash"
	}
	if cfg.Generator.MaxTokens == 0 {
		cfg.Generator.MaxTokens = 150
	}
	if cfg.Generator.Temperature == 0 {
		cfg.Generator.Temperature = 0.7
	}
	cfg.Bot = withBotDefaults(cfg.Bot)
}

// withBotDefaults fills zero-valued bot settings. Exposed through
// DefaultBotConfig so stored configs can be normalized the same way.
func withBotDefaults(bc BotConfig) BotConfig {
	if len(bc.Channels) == 0 {
		bc.Channels = []string{"test"}
	}
	if bc.ActiveHoursStart == 0 && bc.ActiveHoursEnd == 0 {
		bc.ActiveHoursStart = 9
		bc.ActiveHoursEnd = 22
	}
	if bc.MinPostScore == 0 {
		bc.MinPostScore = 10
	}
	if bc.MaxPostAgeHours == 0 {
		bc.MaxPostAgeHours = 24
	}
	if bc.ReplyPacingSeconds == 0 {
		bc.ReplyPacingSeconds = 600
	}
	if bc.PostsPerChannel == 0 {
		bc.PostsPerChannel = 20
	}
	return bc
}

// DefaultBotConfig returns the bot settings used when nothing has been
// configured yet.
func DefaultBotConfig() BotConfig {
	return withBotDefaults(BotConfig{})
}

// overrideWithEnvVars overrides configuration with environment variables
func overrideWithEnvVars(cfg *Config) {
	if addr := os.Getenv("PROMOBOT_ADDR"); addr != "" {
		cfg.Server.Address = addr
	}
	if apiKey := os.Getenv("PROMOBOT_API_KEY"); apiKey != "" {
		cfg.Server.APIKey = apiKey
	}
	if storePath := os.Getenv("PROMOBOT_DB"); storePath != "" {
		cfg.Store.Path = storePath
	}
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		cfg.Redis.Addr = redisAddr
		cfg.Redis.Enabled = true
	}
	if redisPassword := os.Getenv("REDIS_PASSWORD"); redisPassword != "" {
		cfg.Redis.Password = redisPassword
	}
	if redisDB := os.Getenv("REDIS_DB"); redisDB != "" {
		if db, err := strconv.Atoi(redisDB); err == nil {
			cfg.Redis.DB = db
		}
	}
	if userAgent := os.Getenv("FORUM_USER_AGENT"); userAgent != "" {
		cfg.Forum.UserAgent = userAgent
	}
	if model := os.Getenv("GENERATOR_MODEL"); model != "" {
		cfg.Generator.Model = model
	}
	if appDebug := os.Getenv("APP_DEBUG"); appDebug != "" {
		cfg.Debug = parseBool(appDebug)
	}
	if dryRun := os.Getenv("BOT_DRY_RUN"); dryRun != "" {
		cfg.Bot.DryRun = parseBool(dryRun)
	}
}

// Load reads the YAML config at path, applies defaults and environment
// overrides, and validates the result. A missing file is not an error:
// the defaults then apply as-is.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case os.IsNotExist(err):
		// Run on defaults and environment alone.
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	setDefaults(&cfg)
	overrideWithEnvVars(&cfg)

	if err := cfg.Server.Validate(); err != nil {
		return nil, fmt.Errorf("server config validation: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// parseBool parses a string value as a boolean.
// Returns true for "true", "1", "yes" (case-insensitive), false otherwise.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes"
}
