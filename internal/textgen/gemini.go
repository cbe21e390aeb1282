package textgen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/gopost/promobot/internal/config"
	"github.com/gopost/promobot/internal/logger"
)

// ErrNoCandidates is returned when the model responds without any
// usable text.
var ErrNoCandidates = errors.New("generation returned no candidates")

// GeminiGenerator produces reply text through the Gemini API.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	maxTokens   int
	temperature float64
	logger      logger.Logger
}

// NewGeminiGenerator creates a generator for the configured model.
func NewGeminiGenerator(ctx context.Context, cfg config.GeneratorConfig, apiKey string, log logger.Logger) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("generator API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiGenerator{
		client:      client,
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      log,
	}, nil
}

// Generate returns the model's trimmed text for the prompt.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(g.temperature)),
		MaxOutputTokens: int32(g.maxTokens),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 ||
		result.Candidates[0].Content == nil || len(result.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoCandidates
	}

	text := strings.TrimSpace(result.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", ErrNoCandidates
	}

	g.logger.Debug("text generated",
		logger.String("model", g.model),
		logger.Int("chars", len(text)),
		logger.Duration("duration", time.Since(start)),
	)

	return text, nil
}
