package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gopost/promobot/internal/config"
	"github.com/gopost/promobot/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenSeedsDefaults(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	products, err := s.ListProducts(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, products)
	assert.Equal(t, "Example Product", products[0].Name)
	assert.NotEmpty(t, products[0].Keywords)

	personas, err := s.ListPersonas(ctx)
	require.NoError(t, err)
	assert.Len(t, personas, 3)

	templates, err := s.ListTemplates(ctx)
	require.NoError(t, err)
	require.Len(t, templates, 2)
	assert.Contains(t, templates[0].Content, "{product_name}")
}

func TestSeedIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Seed(ctx))
	require.NoError(t, s.Seed(ctx))

	products, err := s.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, len(defaultProducts))
}

func TestBotConfigRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetBotConfig(ctx)
	assert.ErrorIs(t, err, models.ErrNotFound)

	bc := config.DefaultBotConfig()
	bc.Channels = []string{"golang"}
	bc.DryRun = true
	require.NoError(t, s.SaveBotConfig(ctx, bc))

	got, err := s.GetBotConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, bc, *got)

	// Saving again replaces the previous value.
	bc.MinPostScore = 42
	require.NoError(t, s.SaveBotConfig(ctx, bc))
	got, err = s.GetBotConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42, got.MinPostScore)
}

func TestCredentialsRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetForumCredentials(ctx)
	assert.ErrorIs(t, err, models.ErrNotFound)

	fc := models.ForumCredentials{
		ClientID:     "id",
		ClientSecret: "secret",
		Username:     "bot",
		Password:     "pw",
	}
	require.NoError(t, s.SaveForumCredentials(ctx, fc))

	got, err := s.GetForumCredentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, fc, *got)

	gc := models.GeneratorCredentials{APIKey: "key"}
	require.NoError(t, s.SaveGeneratorCredentials(ctx, gc))

	gotGC, err := s.GetGeneratorCredentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, gc, *gotGC)
}

func TestProductCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateProduct(ctx, &models.ProductCreateRequest{
		Name:     "Acme VPN",
		URL:      "https://acme.example",
		Keywords: []string{"vpn", "privacy"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.Keywords{"vpn", "privacy"}, created.Keywords)

	got, err := s.GetProductByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	newName := "Acme VPN Pro"
	updated, err := s.UpdateProduct(ctx, created.ID, &models.ProductUpdateRequest{
		Name:     &newName,
		Keywords: []string{"vpn", "privacy", "security"},
	})
	require.NoError(t, err)
	assert.Equal(t, newName, updated.Name)
	assert.Len(t, updated.Keywords, 3)

	_, err = s.UpdateProduct(ctx, created.ID, &models.ProductUpdateRequest{})
	assert.ErrorIs(t, err, models.ErrNoFieldsToUpdate)

	require.NoError(t, s.DeleteProduct(ctx, created.ID))
	_, err = s.GetProductByID(ctx, created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, s.DeleteProduct(ctx, created.ID), models.ErrNotFound)
}

func TestPersonaCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreatePersona(ctx, &models.PersonaCreateRequest{
		Name:  "Skeptic",
		Tone:  "dry",
		Style: "asks questions before answering",
	})
	require.NoError(t, err)

	tone := "wry"
	updated, err := s.UpdatePersona(ctx, created.ID, &models.PersonaUpdateRequest{Tone: &tone})
	require.NoError(t, err)
	assert.Equal(t, "wry", updated.Tone)
	assert.Equal(t, "Skeptic", updated.Name)

	require.NoError(t, s.DeletePersona(ctx, created.ID))
	_, err = s.GetPersonaByID(ctx, created.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTemplateCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateTemplate(ctx, &models.TemplateCreateRequest{
		Content: "Check out {product_name}: {product_url}",
	})
	require.NoError(t, err)

	templates, err := s.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Len(t, templates, len(defaultTemplates)+1)

	require.NoError(t, s.DeleteTemplate(ctx, created.ID))
	assert.ErrorIs(t, s.DeleteTemplate(ctx, created.ID), models.ErrNotFound)
}

func TestDailyStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertDailyStats(ctx, models.DailyStats{
		Date:          "2026-08-30",
		PostsAnalyzed: 40,
		RepliesPosted: 2,
	}))
	require.NoError(t, s.UpsertDailyStats(ctx, models.DailyStats{
		Date:          "2026-08-31",
		PostsAnalyzed: 10,
	}))

	// Same date replaces the snapshot.
	require.NoError(t, s.UpsertDailyStats(ctx, models.DailyStats{
		Date:          "2026-08-31",
		PostsAnalyzed: 25,
		RepliesPosted: 1,
	}))

	stats, err := s.ListDailyStats(ctx, 10)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "2026-08-31", stats[0].Date)
	assert.Equal(t, 25, stats[0].PostsAnalyzed)
	assert.Equal(t, "2026-08-30", stats[1].Date)

	stats, err = s.ListDailyStats(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, stats, 1)
}
