package postgres

import (
	"context"
	"fmt"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type mappingRepository struct {
	db *DB
}

// NewMappingRepository mirrors the mapping database into mapping_groups.
func NewMappingRepository(db *DB) *mappingRepository {
	return &mappingRepository{db: db}
}

// SaveDatabase replaces every stored group.
func (r *mappingRepository) SaveDatabase(ctx context.Context, db domain.MappingDatabase) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM mapping_groups`); err != nil {
			return fmt.Errorf("failed to clear mapping groups: %w", err)
		}

		query := `
			INSERT INTO mapping_groups (
				id, position, name, unified_article, primary_name,
				name_variations, article_variations, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		`
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for i, g := range db.Groups {
			_, err := stmt.ExecContext(ctx,
				g.ID,
				i,
				g.Name,
				g.UnifiedArticle,
				g.PrimaryName,
				pq.Array(nonNil(g.NameVariations)),
				pq.Array(nonNil(g.ArticleVariations)),
			)
			if err != nil {
				return fmt.Errorf("failed to insert mapping group %s: %w", g.Name, err)
			}
		}
		return nil
	})
}

// LoadDatabase returns the stored groups in their saved order.
func (r *mappingRepository) LoadDatabase(ctx context.Context) (domain.MappingDatabase, error) {
	query := `
		SELECT id, name, unified_article, primary_name, name_variations, article_variations
		FROM mapping_groups
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return domain.MappingDatabase{}, fmt.Errorf("failed to get mapping groups: %w", err)
	}
	defer rows.Close()

	db := domain.MappingDatabase{Groups: []domain.MappingGroup{}}
	for rows.Next() {
		var g domain.MappingGroup
		var names, articles pq.StringArray
		if err := rows.Scan(&g.ID, &g.Name, &g.UnifiedArticle, &g.PrimaryName, &names, &articles); err != nil {
			return domain.MappingDatabase{}, fmt.Errorf("failed to scan mapping group: %w", err)
		}
		g.NameVariations = []string(names)
		g.ArticleVariations = []string(articles)
		db.Groups = append(db.Groups, g)
	}
	if err := rows.Err(); err != nil {
		return domain.MappingDatabase{}, fmt.Errorf("failed to iterate mapping groups: %w", err)
	}
	return db, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
