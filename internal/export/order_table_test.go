package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
	"github.com/xuri/excelize/v2"
)

func TestRoundQuantity(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{2.5, 2}, {3.5, 4}, {10.49, 10}, {0.51, 1}, {7, 7},
	}
	for _, tt := range tests {
		if got := RoundQuantity(tt.in); got != tt.want {
			t.Errorf("%v: expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestOrderTableSave(t *testing.T) {
	base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	forecasts := []domain.ForecastResult{
		{UnifiedArticle: "LATE", ProductName: "Late", NextOrderDate: base.AddDate(0, 0, 20), OptimalOrderPlacementDate: base, RecommendedQuantity: 2.5, Priority: 1, Confidence: 85},
		{UnifiedArticle: "LOW", ProductName: "Low", NextOrderDate: base.AddDate(0, 0, 1), OptimalOrderPlacementDate: base, RecommendedQuantity: 1, Priority: 2, Confidence: 30},
		{UnifiedArticle: "EARLY", ProductName: "Early", NextOrderDate: base.AddDate(0, 0, 5), OptimalOrderPlacementDate: base, RecommendedQuantity: 3.5, Priority: 5, Confidence: 50, Notes: "n"},
	}

	path := filepath.Join(t.TempDir(), "out", "orders.xlsx")
	if err := NewOrderTable(50).Save(path, forecasts); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected header and 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Priority" || rows[0][7] != "Notes" {
		t.Errorf("Unexpected header %v", rows[0])
	}
	if rows[1][1] != "EARLY" || rows[2][1] != "LATE" {
		t.Errorf("Expected rows ordered by next order date, got %s then %s", rows[1][1], rows[2][1])
	}

	qty, _ := f.GetCellValue(SheetName, "E2", excelize.Options{RawCellValue: true})
	if qty != "4" {
		t.Errorf("Expected rounded quantity 4, got %q", qty)
	}
	conf, _ := f.GetCellValue(SheetName, "G3", excelize.Options{RawCellValue: true})
	if conf != "0.85" {
		t.Errorf("Expected confidence fraction 0.85, got %q", conf)
	}
}

func TestOrderTableWithoutThresholdKeepsAll(t *testing.T) {
	f, err := NewOrderTable(0).Build([]domain.ForecastResult{{Confidence: 1}, {Confidence: 2}})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer f.Close()

	rows, _ := f.GetRows(SheetName)
	if len(rows) != 3 {
		t.Errorf("Expected 3 rows, got %d", len(rows))
	}
}
