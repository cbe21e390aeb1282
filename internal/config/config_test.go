package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "debug: false\n"))
	require.NoError(t, err)

	assert.Equal(t, ":8091", cfg.Server.Address)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "promobot.db", cfg.Store.Path)
	assert.Equal(t, "gemini-2.0-flash", cfg.Generator.Model)
	assert.Equal(t, 150, cfg.Generator.MaxTokens)
	assert.InDelta(t, 0.7, cfg.Generator.Temperature, 0.001)
	assert.Equal(t, 9, cfg.Bot.ActiveHoursStart)
	assert.Equal(t, 22, cfg.Bot.ActiveHoursEnd)
	assert.Equal(t, 600, cfg.Bot.ReplyPacingSeconds)
	assert.Equal(t, 20, cfg.Bot.PostsPerChannel)
	assert.False(t, cfg.Bot.DryRun)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultBotConfig(), cfg.Bot)
}

func TestLoadFileValues(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
debug: true
server:
  address: ":9000"
bot:
  channels: [golang, programming]
  active_hours_start: 8
  active_hours_end: 20
  min_post_score: 5
  max_post_age_hours: 12
  reply_pacing_seconds: 300
  forbidden_keywords: [politics]
  dry_run: true
`))
	require.NoError(t, err)

	assert.True(t, cfg.Debug)
	assert.Equal(t, ":9000", cfg.Server.Address)
	assert.Equal(t, []string{"golang", "programming"}, cfg.Bot.Channels)
	assert.Equal(t, 8, cfg.Bot.ActiveHoursStart)
	assert.Equal(t, 20, cfg.Bot.ActiveHoursEnd)
	assert.Equal(t, 5, cfg.Bot.MinPostScore)
	assert.Equal(t, 12, cfg.Bot.MaxPostAgeHours)
	assert.Equal(t, 300, cfg.Bot.ReplyPacingSeconds)
	assert.Equal(t, []string{"politics"}, cfg.Bot.ForbiddenKeywords)
	assert.True(t, cfg.Bot.DryRun)
}

func TestLoadInvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "bad active hours",
			content: "bot:\n  active_hours_start: 25\n",
		},
		{
			name:    "negative pacing",
			content: "bot:\n  reply_pacing_seconds: -5\n",
		},
		{
			name:    "redis enabled without addr",
			content: "redis:\n  enabled: true\n  addr: \"\"\n",
		},
		{
			name:    "malformed yaml",
			content: "bot: [\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadInvalidRedisAddrEmpty(t *testing.T) {
	// REDIS_ADDR both enables the backend and sets the address.
	t.Setenv("REDIS_ADDR", "redis:6379")
	cfg, err := Load(writeConfig(t, "debug: false\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestEnvOverrides(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected bool
	}{
		{"true from env", "true", true},
		{"1 from env", "1", true},
		{"yes from env", "yes", true},
		{"false from env", "false", false},
		{"0 from env", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_DEBUG", tt.envValue)
			cfg, err := Load(writeConfig(t, "debug: false\n"))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg.Debug)
		})
	}
}

func TestEnvOverridesAddressAndStore(t *testing.T) {
	t.Setenv("PROMOBOT_ADDR", ":7777")
	t.Setenv("PROMOBOT_DB", "/tmp/alt.db")
	cfg, err := Load(writeConfig(t, "server:\n  address: \":9000\"\n"))
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Server.Address)
	assert.Equal(t, "/tmp/alt.db", cfg.Store.Path)
}

func TestBotConfigValidate(t *testing.T) {
	bc := DefaultBotConfig()
	require.NoError(t, bc.Validate())

	bc.ActiveHoursEnd = 24
	assert.Error(t, bc.Validate())
}
