package bot

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/gopost/promobot/internal/logger"
	"github.com/gopost/promobot/internal/models"
)

// Generator produces reply text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Composer builds reply text for a matched post. When a generator is
// available it composes through it; otherwise, or whenever generation
// fails, it falls back to filling a random reply template. Composition
// never fails as long as the template set is non-empty.
type Composer struct {
	generator Generator // nil disables generative mode
	rand      *rand.Rand
	logger    logger.Logger
}

// NewComposer creates a composer. generator may be nil.
func NewComposer(generator Generator, rnd *rand.Rand, log logger.Logger) *Composer {
	return &Composer{
		generator: generator,
		rand:      rnd,
		logger:    log,
	}
}

// Compose returns the reply text for the post and whether it came from
// the generator (false means a template was used).
func (c *Composer) Compose(
	ctx context.Context,
	post models.Post,
	product models.Product,
	persona models.Persona,
	templates []models.ReplyTemplate,
) (string, bool) {
	if c.generator != nil {
		text, err := c.generator.Generate(ctx, buildPrompt(post, product, persona))
		if err == nil {
			if text = strings.TrimSpace(text); text != "" {
				return text, true
			}
			err = errEmptyGeneration
		}
		c.logger.Warn("generation failed, falling back to template",
			logger.String("post_id", post.ID),
			logger.Error(err),
		)
	}

	return c.fillTemplate(product, templates), false
}

func (c *Composer) fillTemplate(product models.Product, templates []models.ReplyTemplate) string {
	if len(templates) == 0 {
		// The store seeds defaults, so this should not happen. Still
		// return something rather than an empty reply.
		return fmt.Sprintf("%s might help here: %s", product.Name, product.URL)
	}

	tmpl := templates[c.rand.Intn(len(templates))]
	return tmpl.Render(product.Name, product.URL)
}

// buildPrompt assembles the fixed-structure generation prompt.
func buildPrompt(post models.Post, product models.Product, persona models.Persona) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s, a regular forum user replying to a post.\n\n", persona.Name)
	fmt.Fprintf(&b, "Post title: %s\n", post.Title)
	fmt.Fprintf(&b, "Post body: %s\n\n", post.Body)
	fmt.Fprintf(&b, "Product: %s\n", product.Name)
	fmt.Fprintf(&b, "Product description: %s\n", product.Description)
	fmt.Fprintf(&b, "Product URL: %s\n\n", product.URL)
	fmt.Fprintf(&b, "Your tone: %s\n", persona.Tone)
	fmt.Fprintf(&b, "Your style: %s\n\n", persona.Style)
	b.WriteString("Write a reply that:\n")
	b.WriteString("1. Is relevant to the post\n")
	b.WriteString("2. Subtly mentions the product as a possible solution\n")
	b.WriteString("3. Includes the product URL\n")
	b.WriteString("4. Matches your tone and style\n")
	b.WriteString("5. Does not read like an advertisement\n")
	b.WriteString("6. Is at most 3 sentences long\n")

	return b.String()
}
