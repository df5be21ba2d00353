package postgres

import (
	"context"
	"fmt"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

type forecastRepository struct {
	db *DB
}

// NewForecastRepository mirrors forecast runs into the forecasts table.
func NewForecastRepository(db *DB) *forecastRepository {
	return &forecastRepository{db: db}
}

// SaveForecasts replaces the stored run.
func (r *forecastRepository) SaveForecasts(ctx context.Context, forecasts []domain.ForecastResult) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM forecasts`); err != nil {
			return fmt.Errorf("failed to clear forecasts: %w", err)
		}
		if len(forecasts) == 0 {
			return nil
		}

		query := `
			INSERT INTO forecasts (
				unified_article, product_name, next_order_date, recommended_quantity,
				optimal_order_placement_date, priority, confidence, notes
			) VALUES (
				:unified_article, :product_name, :next_order_date, :recommended_quantity,
				:optimal_order_placement_date, :priority, :confidence, :notes
			)
		`
		stmt, err := tx.PrepareNamedContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, f := range forecasts {
			if _, err := stmt.ExecContext(ctx, f); err != nil {
				return fmt.Errorf("failed to insert forecast %s: %w", f.UnifiedArticle, err)
			}
		}
		return nil
	})
}

// LoadForecasts returns the stored run in insertion order.
func (r *forecastRepository) LoadForecasts(ctx context.Context) ([]domain.ForecastResult, error) {
	query := `
		SELECT
			unified_article,
			product_name,
			next_order_date,
			recommended_quantity,
			optimal_order_placement_date,
			priority,
			confidence,
			notes
		FROM forecasts
		ORDER BY id
	`

	var forecasts []domain.ForecastResult
	if err := sqlx.SelectContext(ctx, r.db, &forecasts, query); err != nil {
		return nil, fmt.Errorf("failed to get forecasts: %w", err)
	}
	return forecasts, nil
}
