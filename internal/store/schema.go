package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS settings (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS credentials (
		name       TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		url         TEXT NOT NULL,
		keywords    TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS personas (
		id    INTEGER PRIMARY KEY AUTOINCREMENT,
		name  TEXT NOT NULL,
		tone  TEXT NOT NULL,
		style TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reply_templates (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		content TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS daily_stats (
		date           TEXT PRIMARY KEY,
		posts_analyzed INTEGER NOT NULL DEFAULT 0,
		posts_filtered INTEGER NOT NULL DEFAULT 0,
		posts_selected INTEGER NOT NULL DEFAULT 0,
		replies_posted INTEGER NOT NULL DEFAULT 0
	)`,
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
