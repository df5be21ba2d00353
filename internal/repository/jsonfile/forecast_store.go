package jsonfile

import (
	"context"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
)

// ForecastStore keeps forecasts in a single JSON list file.
type ForecastStore struct {
	path string
}

// NewForecastStore creates a store backed by path.
func NewForecastStore(path string) *ForecastStore {
	return &ForecastStore{path: path}
}

// SaveForecasts replaces the file with the given results.
func (s *ForecastStore) SaveForecasts(ctx context.Context, forecasts []domain.ForecastResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if forecasts == nil {
		forecasts = []domain.ForecastResult{}
	}
	return writeJSON(s.path, forecasts)
}

// LoadForecasts reads the stored results. A missing file yields an empty
// list.
func (s *ForecastStore) LoadForecasts(ctx context.Context) ([]domain.ForecastResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var forecasts []domain.ForecastResult
	if err := readJSON(s.path, &forecasts); err != nil {
		return nil, err
	}
	if forecasts == nil {
		forecasts = []domain.ForecastResult{}
	}
	return forecasts, nil
}
