package postgres

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS forecasts (
		id BIGSERIAL PRIMARY KEY,
		unified_article TEXT NOT NULL,
		product_name TEXT NOT NULL,
		next_order_date TIMESTAMPTZ NOT NULL,
		recommended_quantity DOUBLE PRECISION NOT NULL,
		optimal_order_placement_date TIMESTAMPTZ NOT NULL,
		priority INTEGER NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS forecasts_article_idx ON forecasts (unified_article)`,
	`CREATE TABLE IF NOT EXISTS mapping_groups (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		name TEXT NOT NULL,
		unified_article TEXT NOT NULL DEFAULT '',
		primary_name TEXT NOT NULL DEFAULT '',
		name_variations TEXT[] NOT NULL DEFAULT '{}',
		article_variations TEXT[] NOT NULL DEFAULT '{}',
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS mapping_groups_name_idx ON mapping_groups (LOWER(name))`,
}

// EnsureSchema creates the mirror tables when they are missing.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
