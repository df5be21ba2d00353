package service

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/config"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
	"github.com/xuri/excelize/v2"
)

func newTestService(t *testing.T, lines []domain.OrderLine) (*ForecastService, *memoryForecasts, *memoryMappings, *recordingCache) {
	t.Helper()
	forecasts := &memoryForecasts{}
	mappings := &memoryMappings{}
	c := newRecordingCache()
	svc := NewForecastService(config.DefaultForecastSettings(), ForecastDeps{
		Source:    &fakeSource{lines: lines},
		Forecasts: forecasts,
		Mappings:  mappings,
		Cache:     c,
		Now:       clock,
	})
	return svc, forecasts, mappings, c
}

func TestRun(t *testing.T) {
	lines := append(history("A1", "Gear", 6), history("B2", "Shaft", 4)...)
	svc, forecasts, mappings, c := newTestService(t, lines)

	summary, err := svc.Run(context.Background(), "orders.xlsx")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if summary.Lines != 10 {
		t.Errorf("Expected 10 lines, got %d", summary.Lines)
	}
	if summary.Products != 2 {
		t.Errorf("Expected 2 products, got %d", summary.Products)
	}
	if summary.Forecasts == 0 {
		t.Fatal("Expected forecasts")
	}
	if !summary.Start.Equal(fixedNow) || !summary.End.Equal(fixedNow.AddDate(0, 0, 30)) {
		t.Errorf("Unexpected window %v..%v", summary.Start, summary.End)
	}

	if len(forecasts.forecasts) != summary.Forecasts {
		t.Errorf("Expected %d persisted forecasts, got %d", summary.Forecasts, len(forecasts.forecasts))
	}
	if len(mappings.items) != 2 {
		t.Errorf("Expected 2 mapping items, got %d", len(mappings.items))
	}
	if c.invalidated != 1 {
		t.Errorf("Expected the cache to be invalidated once, got %d", c.invalidated)
	}

	for _, f := range svc.Forecasts(context.Background(), 0) {
		if f.NextOrderDate.Before(summary.Start) || f.NextOrderDate.After(summary.End) {
			t.Errorf("Forecast %s outside window: %v", f.UnifiedArticle, f.NextOrderDate)
		}
		if f.Priority < domain.PriorityOverdue || f.Priority > domain.PriorityLowest {
			t.Errorf("Unexpected priority %d", f.Priority)
		}
	}
}

func TestRunUsesStoredMapping(t *testing.T) {
	svc, _, mappings, _ := newTestService(t, history("a1", "Gear", 5))
	mappings.items = []domain.MappingItem{{
		UnifiedArticle:    "GEAR-001",
		PrimaryName:       "Gear, steel",
		ArticleVariations: []string{"A1"},
	}}

	if _, err := svc.Run(context.Background(), "orders.xlsx"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	products := svc.Products()
	if len(products) != 1 || products[0].UnifiedArticle != "GEAR-001" {
		t.Fatalf("Expected the stored identity, got %+v", products)
	}
	if products[0].PrimaryName != "Gear, steel" {
		t.Errorf("Expected stored primary name, got %q", products[0].PrimaryName)
	}
}

func TestRunLoadFailure(t *testing.T) {
	svc := NewForecastService(config.DefaultForecastSettings(), ForecastDeps{
		Source:    &fakeSource{err: errors.New("bad file")},
		Forecasts: &memoryForecasts{},
		Mappings:  &memoryMappings{},
		Now:       clock,
	})

	if _, err := svc.Run(context.Background(), "x.xlsx"); err == nil {
		t.Fatal("Expected an error")
	}
}

func TestRunEmptySource(t *testing.T) {
	svc, forecasts, _, _ := newTestService(t, nil)

	_, err := svc.Run(context.Background(), "x.xlsx")
	if !errors.Is(err, domain.ErrEmptyHistory) {
		t.Fatalf("Expected ErrEmptyHistory, got %v", err)
	}
	if forecasts.saves != 0 {
		t.Errorf("Expected nothing persisted")
	}
}

func TestRunPersistenceFailureIsNotReturned(t *testing.T) {
	svc, forecasts, mappings, _ := newTestService(t, history("A1", "Gear", 4))
	forecasts.err = errStore
	mappings.err = errStore

	if _, err := svc.Run(context.Background(), "orders.xlsx"); err != nil {
		t.Fatalf("Expected persistence errors to be logged only, got %v", err)
	}
	if len(svc.Products()) != 1 {
		t.Errorf("Expected the run to keep its products")
	}
}

func TestRunWritesMirror(t *testing.T) {
	mirror := &memoryForecasts{}
	svc := NewForecastService(config.DefaultForecastSettings(), ForecastDeps{
		Source:    &fakeSource{lines: history("A1", "Gear", 6)},
		Forecasts: &memoryForecasts{},
		Mappings:  &memoryMappings{},
		Mirror:    mirror,
		Now:       clock,
	})

	summary, err := svc.Run(context.Background(), "orders.xlsx")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(mirror.forecasts) != summary.Forecasts {
		t.Errorf("Expected the mirror to hold %d forecasts, got %d", summary.Forecasts, len(mirror.forecasts))
	}
}

func TestLoadSaved(t *testing.T) {
	svc, forecasts, mappings, _ := newTestService(t, nil)
	forecasts.forecasts = []domain.ForecastResult{{UnifiedArticle: "A1", Confidence: 70}}
	mappings.items = []domain.MappingItem{
		{UnifiedArticle: "A1", PrimaryName: "Gear"},
		{UnifiedArticle: "", PrimaryName: "Orphan"},
	}

	svc.LoadSaved(context.Background())

	if got := svc.Forecasts(context.Background(), 0); len(got) != 1 {
		t.Errorf("Expected 1 forecast, got %d", len(got))
	}
	products := svc.Products()
	if len(products) != 1 || products[0].HasHistory() {
		t.Errorf("Expected one identity-only product, got %+v", products)
	}
}

func TestLoadSavedToleratesFailures(t *testing.T) {
	svc, forecasts, mappings, _ := newTestService(t, nil)
	forecasts.err = errStore
	mappings.err = errStore

	svc.LoadSaved(context.Background())

	if len(svc.Forecasts(context.Background(), 0)) != 0 || len(svc.Products()) != 0 {
		t.Errorf("Expected empty collections after failed loads")
	}
}

func TestForecastsFilterAndCache(t *testing.T) {
	svc, forecasts, _, c := newTestService(t, nil)
	forecasts.forecasts = []domain.ForecastResult{
		{UnifiedArticle: "A1", Confidence: 30},
		{UnifiedArticle: "B2", Confidence: 85},
	}
	svc.LoadSaved(context.Background())

	got := svc.Forecasts(context.Background(), 50)
	if len(got) != 1 || got[0].UnifiedArticle != "B2" {
		t.Fatalf("Expected only B2, got %+v", got)
	}
	if c.sets != 1 {
		t.Errorf("Expected one cache write, got %d", c.sets)
	}

	svc.Forecasts(context.Background(), 50)
	if c.sets != 1 || c.gets != 2 {
		t.Errorf("Expected the second call to hit the cache, got gets=%d sets=%d", c.gets, c.sets)
	}
}

func TestBatchesAndCalendarUseReportThreshold(t *testing.T) {
	settings := config.DefaultForecastSettings()
	settings.MinConfidenceThreshold = 50
	forecasts := &memoryForecasts{forecasts: []domain.ForecastResult{
		{UnifiedArticle: "A1", Confidence: 30, OptimalOrderPlacementDate: fixedNow},
		{UnifiedArticle: "B2", Confidence: 85, OptimalOrderPlacementDate: fixedNow.AddDate(0, 0, 1)},
		{UnifiedArticle: "C3", Confidence: 95, OptimalOrderPlacementDate: fixedNow.AddDate(0, 0, 10)},
	}}
	svc := NewForecastService(settings, ForecastDeps{
		Forecasts: forecasts,
		Mappings:  &memoryMappings{},
		Now:       clock,
	})
	svc.LoadSaved(context.Background())

	batches := svc.Batches()
	if len(batches) != 2 {
		t.Fatalf("Expected 2 batches, got %d", len(batches))
	}
	if batches[0][0].UnifiedArticle != "B2" {
		t.Errorf("Expected B2 first, got %s", batches[0][0].UnifiedArticle)
	}
	if len(svc.Calendar()) != 2 {
		t.Errorf("Expected 2 calendar days, got %d", len(svc.Calendar()))
	}
}

func TestRecommendations(t *testing.T) {
	svc, _, _, _ := newTestService(t, history("A1", "Gear", 6))
	if _, err := svc.Run(context.Background(), "orders.xlsx"); err != nil {
		t.Fatal(err)
	}

	got := svc.Recommendations(fixedNow.AddDate(-1, 0, 0), fixedNow.AddDate(1, 0, 0))
	if len(got) != 1 || got[0].UnifiedArticle != "A1" {
		t.Fatalf("Expected one recommendation for A1, got %+v", got)
	}
	if got[0].Confidence > 95 {
		t.Errorf("Expected confidence capped at 95, got %v", got[0].Confidence)
	}
}

func TestExport(t *testing.T) {
	svc, forecasts, _, _ := newTestService(t, nil)
	forecasts.forecasts = []domain.ForecastResult{{
		UnifiedArticle:            "A1",
		ProductName:               "Gear",
		NextOrderDate:             fixedNow,
		OptimalOrderPlacementDate: fixedNow,
		RecommendedQuantity:       10,
		Priority:                  2,
		Confidence:                70,
	}}
	svc.LoadSaved(context.Background())

	var buf bytes.Buffer
	if err := svc.Export(&buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("Expected a readable workbook, got %v", err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue("Order table", "B2"); v != "A1" {
		t.Errorf("Expected article A1 in B2, got %q", v)
	}
}

func TestExportFileUploads(t *testing.T) {
	objects := &memoryObjects{objects: map[string][]byte{}}
	svc := NewForecastService(config.DefaultForecastSettings(), ForecastDeps{
		Forecasts:    &memoryForecasts{},
		Mappings:     &memoryMappings{},
		Storage:      objects,
		ExportPrefix: "reports/",
		Now:          clock,
	})

	path := filepath.Join(t.TempDir(), "out", "orders.xlsx")
	key, err := svc.ExportFile(context.Background(), path, true)
	if err != nil {
		t.Fatalf("ExportFile failed: %v", err)
	}
	if key != "reports/orders.xlsx" {
		t.Errorf("Expected key reports/orders.xlsx, got %q", key)
	}
	if len(objects.objects[key]) == 0 {
		t.Errorf("Expected uploaded bytes")
	}
}

func TestExportFileUploadWithoutStorage(t *testing.T) {
	svc, _, _, _ := newTestService(t, nil)
	path := filepath.Join(t.TempDir(), "orders.xlsx")
	if _, err := svc.ExportFile(context.Background(), path, true); err == nil {
		t.Error("Expected an error without object storage")
	}
}
