// Package service wires the forecasting core to its repositories, cache and
// storage.
package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/analysis"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/cache"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/config"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/export"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/forecast"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/mapping"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/recommend"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/repository"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/similarity"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/storage"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/unify"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// OrderSource yields the historical order lines behind a path. The meaning
// of path is up to the source: a local file, a Drive file ID.
type OrderSource interface {
	LoadOrders(ctx context.Context, path string) ([]domain.OrderLine, error)
}

// ForecastDeps collects the collaborators of ForecastService. Scorer,
// Mirror, Cache, Storage and Now are optional.
type ForecastDeps struct {
	Source    OrderSource
	Scorer    unify.Scorer
	Forecasts repository.ForecastRepository
	Mappings  repository.MappingRepository
	Mirror    repository.ForecastRepository
	Cache     cache.ForecastCache
	Storage   storage.ObjectStorage
	// ExportPrefix is the object key prefix of uploaded order tables.
	ExportPrefix string
	Now          func() time.Time
}

// RunSummary describes the outcome of a forecast run.
type RunSummary struct {
	Lines     int       `json:"lines"`
	Products  int       `json:"products"`
	Forecasts int       `json:"forecasts"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

type ForecastService struct {
	deps     ForecastDeps
	settings config.ForecastSettings

	unifier  *unify.Unifier
	analyzer *analysis.Analyzer
	engine   *forecast.Engine
	system   *recommend.System

	mu        sync.RWMutex
	products  []domain.UnifiedProduct
	forecasts []domain.ForecastResult
}

func NewForecastService(settings config.ForecastSettings, deps ForecastDeps) *ForecastService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Cache == nil {
		deps.Cache = cache.NewNoopForecastCache()
	}
	if deps.Scorer == nil {
		deps.Scorer = similarity.Levenshtein{}
	}

	return &ForecastService{
		deps:     deps,
		settings: settings,
		unifier:  unify.NewUnifier(deps.Scorer, settings),
		analyzer: analysis.NewAnalyzer(settings, deps.Now),
		engine:   forecast.NewEngine(settings, deps.Now),
		system:   recommend.NewSystem(settings, deps.Now),
	}
}

// Settings returns the settings the service was built with.
func (s *ForecastService) Settings() config.ForecastSettings {
	return s.settings
}

// Run executes the full flow for the orders behind path: load, unify,
// reconcile with the stored mapping, save the mapping, analyze, forecast,
// prioritise and persist. Only a failure to load the orders is returned;
// persistence failures are logged.
func (s *ForecastService) Run(ctx context.Context, path string) (RunSummary, error) {
	lines, err := s.deps.Source.LoadOrders(ctx, path)
	if err != nil {
		return RunSummary{}, fmt.Errorf("failed to load orders: %w", err)
	}
	if len(lines) == 0 {
		return RunSummary{}, fmt.Errorf("failed to load orders from %s: %w", path, domain.ErrEmptyHistory)
	}

	products := s.unifier.Unify(lines)

	products = s.unifier.Reconcile(products, s.storedIdentities(ctx))

	if err := s.deps.Mappings.SaveItems(ctx, mapping.Items(products)); err != nil {
		log.Error().Err(err).Msg("failed to save mapping")
	}

	products = s.analyzer.Analyze(products)

	start, end := s.DefaultWindow()
	forecasts := s.engine.GenerateFullForecasts(products, start, end)
	forecasts = s.system.CalculateOrderPriorities(forecasts)

	s.mu.Lock()
	s.products = products
	s.forecasts = forecasts
	s.mu.Unlock()

	s.persist(ctx, forecasts)

	summary := RunSummary{
		Lines:     len(lines),
		Products:  len(products),
		Forecasts: len(forecasts),
		Start:     start,
		End:       end,
	}
	log.Info().
		Int("lines", summary.Lines).
		Int("products", summary.Products).
		Int("forecasts", summary.Forecasts).
		Msg("forecast run completed")

	return summary, nil
}

// storedIdentities merges the edited mapping groups with the flat items of
// the previous run. Either store failing only narrows the result.
func (s *ForecastService) storedIdentities(ctx context.Context) []domain.MappingItem {
	items, err := s.deps.Mappings.LoadItems(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load stored mapping, continuing without it")
		items = nil
	}
	db, err := s.deps.Mappings.LoadDatabase(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load mapping groups, continuing without them")
		db = domain.MappingDatabase{}
	}
	return mapping.MergeItems(db, items)
}

func (s *ForecastService) persist(ctx context.Context, forecasts []domain.ForecastResult) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.deps.Forecasts.SaveForecasts(gctx, forecasts); err != nil {
			return fmt.Errorf("save forecasts: %w", err)
		}
		return nil
	})
	if s.deps.Mirror != nil {
		g.Go(func() error {
			if err := s.deps.Mirror.SaveForecasts(gctx, forecasts); err != nil {
				return fmt.Errorf("mirror forecasts: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("failed to persist forecasts")
	}

	if err := s.deps.Cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("forecast cache invalidation failed")
	}
}

// LoadSaved restores the last persisted forecasts and the identity-only
// products of the stored mapping. Read failures are logged and leave the
// corresponding collection empty.
func (s *ForecastService) LoadSaved(ctx context.Context) {
	forecasts, err := s.deps.Forecasts.LoadForecasts(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load saved forecasts")
		forecasts = nil
	}

	items, err := s.deps.Mappings.LoadItems(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load saved mapping")
		items = nil
	}

	s.mu.Lock()
	s.forecasts = forecasts
	s.products = mapping.ToProducts(items)
	s.mu.Unlock()

	if err := s.deps.Cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("forecast cache invalidation failed")
	}

	log.Info().Int("forecasts", len(forecasts)).Int("products", len(items)).Msg("restored saved state")
}

// Products returns a copy of the current product collection.
func (s *ForecastService) Products() []domain.UnifiedProduct {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.UnifiedProduct, len(s.products))
	for i, p := range s.products {
		out[i] = p.Clone()
	}
	return out
}

func (s *ForecastService) snapshot() []domain.ForecastResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.ForecastResult(nil), s.forecasts...)
}

// Forecasts returns the current forecasts with confidence at or above
// minConfidence. Views are served from the cache when possible.
func (s *ForecastService) Forecasts(ctx context.Context, minConfidence float64) []domain.ForecastResult {
	if cached, ok, err := s.deps.Cache.GetForecasts(ctx, minConfidence); err == nil && ok {
		return cached
	} else if err != nil {
		log.Warn().Err(err).Msg("forecast cache get failed")
	}

	view := recommend.FilterByConfidence(s.snapshot(), minConfidence)
	if view == nil {
		view = []domain.ForecastResult{}
	}

	if err := s.deps.Cache.SetForecasts(ctx, minConfidence, view); err != nil {
		log.Warn().Err(err).Msg("forecast cache set failed")
	}
	return view
}

// DefaultWindow is the forecast horizon starting now.
func (s *ForecastService) DefaultWindow() (time.Time, time.Time) {
	start := s.deps.Now()
	return start, domain.AddDays(start, float64(s.settings.DaysAhead))
}

// Recommendations lists products whose placement falls in [start, end].
func (s *ForecastService) Recommendations(start, end time.Time) []domain.ForecastResult {
	s.mu.RLock()
	products := s.products
	s.mu.RUnlock()
	return s.system.GenerateOrderRecommendations(products, start, end)
}

// Batches groups the reportable forecasts by placement window.
func (s *ForecastService) Batches() [][]domain.ForecastResult {
	return s.system.GroupOrdersByBatches(s.reportable())
}

// Calendar buckets the reportable forecasts by placement day.
func (s *ForecastService) Calendar() map[time.Time][]domain.ForecastResult {
	return s.system.CreateOrderCalendar(s.reportable())
}

func (s *ForecastService) reportable() []domain.ForecastResult {
	return recommend.FilterByConfidence(s.snapshot(), s.settings.MinConfidenceThreshold)
}

// Export writes the order table workbook to w.
func (s *ForecastService) Export(w io.Writer) error {
	return export.NewOrderTable(s.settings.MinConfidenceThreshold).Write(w, s.snapshot())
}

// ExportFile saves the order table to path and, when upload is set and
// object storage is configured, uploads it under the export prefix. It
// returns the object key of the upload, or "".
func (s *ForecastService) ExportFile(ctx context.Context, path string, upload bool) (string, error) {
	var buf bytes.Buffer
	if err := s.Export(&buf); err != nil {
		return "", err
	}
	if err := writeFile(path, buf.Bytes()); err != nil {
		return "", err
	}
	log.Info().Str("path", path).Msg("order table exported")

	if !upload {
		return "", nil
	}
	if s.deps.Storage == nil {
		return "", fmt.Errorf("object storage is not configured")
	}

	key := storage.ObjectKey(s.deps.ExportPrefix, filepath.Base(path))
	if err := s.deps.Storage.UploadObject(ctx, key, buf.Bytes()); err != nil {
		return "", err
	}
	log.Info().Str("key", key).Msg("order table uploaded")
	return key, nil
}
