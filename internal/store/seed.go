package store

import (
	"context"
	"fmt"

	"github.com/gopost/promobot/internal/models"
)

var defaultProducts = []models.ProductCreateRequest{
	{
		Name:        "Example Product",
		Description: "A productivity tool that helps teams organize their work.",
		URL:         "https://example.com/product",
		Keywords:    []string{"productivity", "organization", "workflow", "tool"},
	},
}

var defaultPersonas = []models.PersonaCreateRequest{
	{
		Name:  "Helpful Expert",
		Tone:  "friendly and knowledgeable",
		Style: "shares practical experience, cites concrete examples, avoids hype",
	},
	{
		Name:  "Casual Enthusiast",
		Tone:  "relaxed and conversational",
		Style: "writes like a regular forum user, short sentences, the occasional aside",
	},
	{
		Name:  "Pragmatic Reviewer",
		Tone:  "measured and balanced",
		Style: "weighs pros and cons before recommending anything",
	},
}

var defaultTemplates = []models.TemplateCreateRequest{
	{Content: "I had the same problem until I found {product_name}. Worth a look: {product_url}"},
	{Content: "Have you tried {product_name}? It handles exactly this. More info at {product_url}"},
}

// Seed inserts the default products, personas and templates when their
// tables are empty. Existing rows are never modified.
func (s *Store) Seed(ctx context.Context) error {
	var count int

	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM products`); err != nil {
		return fmt.Errorf("failed to count products: %w", err)
	}
	if count == 0 {
		for i := range defaultProducts {
			if _, err := s.CreateProduct(ctx, &defaultProducts[i]); err != nil {
				return err
			}
		}
	}

	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM personas`); err != nil {
		return fmt.Errorf("failed to count personas: %w", err)
	}
	if count == 0 {
		for i := range defaultPersonas {
			if _, err := s.CreatePersona(ctx, &defaultPersonas[i]); err != nil {
				return err
			}
		}
	}

	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM reply_templates`); err != nil {
		return fmt.Errorf("failed to count templates: %w", err)
	}
	if count == 0 {
		for i := range defaultTemplates {
			if _, err := s.CreateTemplate(ctx, &defaultTemplates[i]); err != nil {
				return err
			}
		}
	}

	return nil
}
