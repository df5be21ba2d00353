package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/storage"
)

var errStore = errors.New("store unavailable")

type fakeSource struct {
	lines []domain.OrderLine
	err   error
}

func (f *fakeSource) LoadOrders(ctx context.Context, path string) ([]domain.OrderLine, error) {
	return f.lines, f.err
}

type memoryForecasts struct {
	mu        sync.Mutex
	forecasts []domain.ForecastResult
	saves     int
	err       error
}

func (m *memoryForecasts) SaveForecasts(ctx context.Context, forecasts []domain.ForecastResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.err != nil {
		return m.err
	}
	m.forecasts = append([]domain.ForecastResult(nil), forecasts...)
	return nil
}

func (m *memoryForecasts) LoadForecasts(ctx context.Context) ([]domain.ForecastResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.forecasts, nil
}

type memoryMappings struct {
	mu    sync.Mutex
	items []domain.MappingItem
	db    domain.MappingDatabase
	saves int
	err   error
}

func (m *memoryMappings) SaveItems(ctx context.Context, items []domain.MappingItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.items = items
	return nil
}

func (m *memoryMappings) LoadItems(ctx context.Context) ([]domain.MappingItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.items, nil
}

func (m *memoryMappings) SaveDatabase(ctx context.Context, db domain.MappingDatabase) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.err != nil {
		return m.err
	}
	m.db = db
	return nil
}

func (m *memoryMappings) LoadDatabase(ctx context.Context) (domain.MappingDatabase, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return domain.MappingDatabase{}, m.err
	}
	return m.db, nil
}

type recordingCache struct {
	views       map[float64][]domain.ForecastResult
	gets, sets  int
	invalidated int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{views: map[float64][]domain.ForecastResult{}}
}

func (c *recordingCache) GetForecasts(ctx context.Context, minConfidence float64) ([]domain.ForecastResult, bool, error) {
	c.gets++
	v, ok := c.views[minConfidence]
	return v, ok, nil
}

func (c *recordingCache) SetForecasts(ctx context.Context, minConfidence float64, forecasts []domain.ForecastResult) error {
	c.sets++
	c.views[minConfidence] = forecasts
	return nil
}

func (c *recordingCache) InvalidateAll(ctx context.Context) error {
	c.invalidated++
	c.views = map[float64][]domain.ForecastResult{}
	return nil
}

type memoryObjects struct {
	objects map[string][]byte
}

func (m *memoryObjects) ListObjects(ctx context.Context, prefix string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (m *memoryObjects) DownloadObject(ctx context.Context, key, destPath string) error {
	return nil
}

func (m *memoryObjects) UploadObject(ctx context.Context, key string, data []byte) error {
	m.objects[key] = data
	return nil
}

var fixedNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// history returns count monthly lines of one article ending shortly before
// fixedNow.
func history(article, name string, count int) []domain.OrderLine {
	lines := make([]domain.OrderLine, count)
	last := fixedNow.AddDate(0, 0, -12)
	for i := range lines {
		d := last.AddDate(0, 0, -30*(count-1-i))
		delivered := d.AddDate(0, 0, 7)
		lines[i] = domain.OrderLine{
			OrderDate:         d,
			OrderNumber:       "PO",
			ProductName:       name,
			ArticleNumber:     article,
			OrderedQuantity:   10,
			DeliveredQuantity: 10,
			DeliveryDate:      &delivered,
		}
	}
	return lines
}
