package textgen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gopost/promobot/internal/config"
	"github.com/gopost/promobot/internal/logger"
)

func TestNewGeminiGeneratorRequiresKey(t *testing.T) {
	_, err := NewGeminiGenerator(context.Background(), config.GeneratorConfig{
		Model:     "gemini-2.0-flash",
		MaxTokens: 150,
	}, "", logger.NewNopLogger())
	assert.Error(t, err)
}
