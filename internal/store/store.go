package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/gopost/promobot/internal/config"
	"github.com/gopost/promobot/internal/models"
)

const (
	settingBotConfig = "bot_config"

	credentialForum     = "forum"
	credentialGenerator = "generator"
)

// Store provides database operations for all persisted entities.
type Store struct {
	db *sqlx.DB
}

// NewStore creates a new store instance
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open connects to the database at path, applies the schema and seeds
// defaults when the tables are empty.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := NewSQLiteConnection(path)
	if err != nil {
		return nil, err
	}

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	s := NewStore(db)
	if err := s.Seed(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return Close(s.db)
}

// ====================
// Settings
// ====================

// GetBotConfig retrieves the stored runtime configuration.
// Returns models.ErrNotFound when nothing has been stored yet.
func (s *Store) GetBotConfig(ctx context.Context) (*config.BotConfig, error) {
	var raw string
	err := s.db.GetContext(ctx, &raw, `SELECT value FROM settings WHERE key = ?`, settingBotConfig)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get bot config: %w", err)
	}

	var bc config.BotConfig
	if err := json.Unmarshal([]byte(raw), &bc); err != nil {
		return nil, fmt.Errorf("failed to decode bot config: %w", err)
	}

	return &bc, nil
}

// SaveBotConfig stores the runtime configuration, replacing any
// previous value.
func (s *Store) SaveBotConfig(ctx context.Context, bc config.BotConfig) error {
	raw, err := json.Marshal(bc)
	if err != nil {
		return fmt.Errorf("failed to encode bot config: %w", err)
	}

	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, settingBotConfig, string(raw)); err != nil {
		return fmt.Errorf("failed to save bot config: %w", err)
	}
	return nil
}

// ====================
// Credentials
// ====================

func (s *Store) getCredential(ctx context.Context, name string, out any) error {
	var raw string
	err := s.db.GetContext(ctx, &raw, `SELECT value FROM credentials WHERE name = ?`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ErrNotFound
		}
		return fmt.Errorf("failed to get %s credentials: %w", name, err)
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("failed to decode %s credentials: %w", name, err)
	}
	return nil
}

func (s *Store) saveCredential(ctx context.Context, name string, in any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s credentials: %w", name, err)
	}

	query := `
		INSERT INTO credentials (name, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`
	if _, err := s.db.ExecContext(ctx, query, name, string(raw)); err != nil {
		return fmt.Errorf("failed to save %s credentials: %w", name, err)
	}
	return nil
}

// GetForumCredentials retrieves the stored forum API credentials.
func (s *Store) GetForumCredentials(ctx context.Context) (*models.ForumCredentials, error) {
	var fc models.ForumCredentials
	if err := s.getCredential(ctx, credentialForum, &fc); err != nil {
		return nil, err
	}
	return &fc, nil
}

// SaveForumCredentials stores the forum API credentials.
func (s *Store) SaveForumCredentials(ctx context.Context, fc models.ForumCredentials) error {
	return s.saveCredential(ctx, credentialForum, fc)
}

// GetGeneratorCredentials retrieves the stored generator credentials.
func (s *Store) GetGeneratorCredentials(ctx context.Context) (*models.GeneratorCredentials, error) {
	var gc models.GeneratorCredentials
	if err := s.getCredential(ctx, credentialGenerator, &gc); err != nil {
		return nil, err
	}
	return &gc, nil
}

// SaveGeneratorCredentials stores the generator credentials.
func (s *Store) SaveGeneratorCredentials(ctx context.Context, gc models.GeneratorCredentials) error {
	return s.saveCredential(ctx, credentialGenerator, gc)
}

// ====================
// Products
// ====================

// CreateProduct creates a new product
func (s *Store) CreateProduct(ctx context.Context, req *models.ProductCreateRequest) (*models.Product, error) {
	query := `
		INSERT INTO products (name, description, url, keywords)
		VALUES (?, ?, ?, ?)
	`

	res, err := s.db.ExecContext(ctx, query, req.Name, req.Description, req.URL, strings.Join(req.Keywords, ","))
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return s.GetProductByID(ctx, id)
}

// GetProductByID retrieves a product by ID
func (s *Store) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	product := &models.Product{}
	query := `SELECT id, name, description, url, keywords FROM products WHERE id = ?`

	err := s.db.GetContext(ctx, product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return product, nil
}

// ListProducts retrieves all products ordered by ID
func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	query := `SELECT id, name, description, url, keywords FROM products ORDER BY id`

	if err := s.db.SelectContext(ctx, &products, query); err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return products, nil
}

// UpdateProduct updates the provided fields of a product
func (s *Store) UpdateProduct(ctx context.Context, id int64, req *models.ProductUpdateRequest) (*models.Product, error) {
	sets := []string{}
	args := []any{}

	if req.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *req.Name)
	}
	if req.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *req.Description)
	}
	if req.URL != nil {
		sets = append(sets, "url = ?")
		args = append(args, *req.URL)
	}
	if req.Keywords != nil {
		sets = append(sets, "keywords = ?")
		args = append(args, strings.Join(req.Keywords, ","))
	}

	if len(sets) == 0 {
		return nil, models.ErrNoFieldsToUpdate
	}

	args = append(args, id)
	query := "UPDATE products SET " + strings.Join(sets, ", ") + " WHERE id = ?"

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, models.ErrNotFound
	}

	return s.GetProductByID(ctx, id)
}

// DeleteProduct deletes a product by ID
func (s *Store) DeleteProduct(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ====================
// Personas
// ====================

// CreatePersona creates a new persona
func (s *Store) CreatePersona(ctx context.Context, req *models.PersonaCreateRequest) (*models.Persona, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO personas (name, tone, style) VALUES (?, ?, ?)`,
		req.Name, req.Tone, req.Style,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create persona: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to create persona: %w", err)
	}

	return s.GetPersonaByID(ctx, id)
}

// GetPersonaByID retrieves a persona by ID
func (s *Store) GetPersonaByID(ctx context.Context, id int64) (*models.Persona, error) {
	persona := &models.Persona{}
	err := s.db.GetContext(ctx, persona, `SELECT id, name, tone, style FROM personas WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get persona: %w", err)
	}
	return persona, nil
}

// ListPersonas retrieves all personas ordered by ID
func (s *Store) ListPersonas(ctx context.Context) ([]models.Persona, error) {
	personas := []models.Persona{}
	if err := s.db.SelectContext(ctx, &personas, `SELECT id, name, tone, style FROM personas ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list personas: %w", err)
	}
	return personas, nil
}

// UpdatePersona updates the provided fields of a persona
func (s *Store) UpdatePersona(ctx context.Context, id int64, req *models.PersonaUpdateRequest) (*models.Persona, error) {
	sets := []string{}
	args := []any{}

	if req.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *req.Name)
	}
	if req.Tone != nil {
		sets = append(sets, "tone = ?")
		args = append(args, *req.Tone)
	}
	if req.Style != nil {
		sets = append(sets, "style = ?")
		args = append(args, *req.Style)
	}

	if len(sets) == 0 {
		return nil, models.ErrNoFieldsToUpdate
	}

	args = append(args, id)
	query := "UPDATE personas SET " + strings.Join(sets, ", ") + " WHERE id = ?"

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update persona: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, models.ErrNotFound
	}

	return s.GetPersonaByID(ctx, id)
}

// DeletePersona deletes a persona by ID
func (s *Store) DeletePersona(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM personas WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete persona: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ====================
// Reply templates
// ====================

// CreateTemplate creates a new reply template
func (s *Store) CreateTemplate(ctx context.Context, req *models.TemplateCreateRequest) (*models.ReplyTemplate, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO reply_templates (content) VALUES (?)`, req.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	tmpl := &models.ReplyTemplate{}
	if err := s.db.GetContext(ctx, tmpl, `SELECT id, content FROM reply_templates WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return tmpl, nil
}

// ListTemplates retrieves all reply templates ordered by ID
func (s *Store) ListTemplates(ctx context.Context) ([]models.ReplyTemplate, error) {
	templates := []models.ReplyTemplate{}
	if err := s.db.SelectContext(ctx, &templates, `SELECT id, content FROM reply_templates ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// DeleteTemplate deletes a reply template by ID
func (s *Store) DeleteTemplate(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reply_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ====================
// Daily stats
// ====================

// UpsertDailyStats writes the snapshot for its date, replacing any
// previous snapshot for the same day.
func (s *Store) UpsertDailyStats(ctx context.Context, stats models.DailyStats) error {
	query := `
		INSERT INTO daily_stats (date, posts_analyzed, posts_filtered, posts_selected, replies_posted)
		VALUES (:date, :posts_analyzed, :posts_filtered, :posts_selected, :replies_posted)
		ON CONFLICT(date) DO UPDATE SET
			posts_analyzed = excluded.posts_analyzed,
			posts_filtered = excluded.posts_filtered,
			posts_selected = excluded.posts_selected,
			replies_posted = excluded.replies_posted
	`
	if _, err := s.db.NamedExecContext(ctx, query, stats); err != nil {
		return fmt.Errorf("failed to upsert daily stats: %w", err)
	}
	return nil
}

// ListDailyStats retrieves snapshots in reverse date order, newest first.
func (s *Store) ListDailyStats(ctx context.Context, limit int) ([]models.DailyStats, error) {
	stats := []models.DailyStats{}
	query := `
		SELECT date, posts_analyzed, posts_filtered, posts_selected, replies_posted
		FROM daily_stats
		ORDER BY date DESC
		LIMIT ?
	`
	if err := s.db.SelectContext(ctx, &stats, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list daily stats: %w", err)
	}
	return stats, nil
}
