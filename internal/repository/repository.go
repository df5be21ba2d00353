// Package repository declares the persistence contracts of the forecasting
// backend.
package repository

import (
	"context"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
)

// ForecastRepository stores the flat list of forecast results of the last
// run.
type ForecastRepository interface {
	SaveForecasts(ctx context.Context, forecasts []domain.ForecastResult) error
	LoadForecasts(ctx context.Context) ([]domain.ForecastResult, error)
}

// GroupRepository stores the operator-edited mapping database.
type GroupRepository interface {
	SaveDatabase(ctx context.Context, db domain.MappingDatabase) error
	LoadDatabase(ctx context.Context) (domain.MappingDatabase, error)
}

// MappingRepository stores both the flat identity list written after each
// run and the mapping database.
type MappingRepository interface {
	GroupRepository
	SaveItems(ctx context.Context, items []domain.MappingItem) error
	LoadItems(ctx context.Context) ([]domain.MappingItem, error)
}
