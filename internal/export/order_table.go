// Package export writes forecasts to spreadsheet reports.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/recommend"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the order table sheet.
const SheetName = "Order table"

var columns = []string{"Priority", "Article", "Name", "Order date", "Quantity", "Placement date", "Confidence", "Notes"}

var columnWidths = []float64{10, 18, 48, 14, 12, 16, 12, 90}

var priorityFills = map[int]string{
	domain.PriorityOverdue: "#FF0000",
	domain.PriorityHigh:    "#FFA500",
	domain.PriorityMedium:  "#FFFF00",
	domain.PriorityLow:     "#90EE90",
	domain.PriorityLowest:  "#ADD8E6",
}

// OrderTable renders forecasts as the order table workbook.
type OrderTable struct {
	minConfidence float64
}

// NewOrderTable creates a renderer that leaves out forecasts below
// minConfidence.
func NewOrderTable(minConfidence float64) *OrderTable {
	return &OrderTable{minConfidence: minConfidence}
}

// Save writes the workbook to path, creating the directory if needed.
func (t *OrderTable) Save(path string, forecasts []domain.ForecastResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed creating directory for %s: %w", path, err)
	}

	f, err := t.Build(forecasts)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save order table %s: %w", path, err)
	}
	return nil
}

// Write streams the workbook to w.
func (t *OrderTable) Write(w io.Writer, forecasts []domain.ForecastResult) error {
	f, err := t.Build(forecasts)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write order table: %w", err)
	}
	return nil
}

// Build creates the workbook. Rows are filtered by confidence and ordered by
// next order date.
func (t *OrderTable) Build(forecasts []domain.ForecastResult) (*excelize.File, error) {
	rows := append([]domain.ForecastResult(nil), recommend.FilterByConfidence(forecasts, t.minConfidence)...)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].NextOrderDate.Before(rows[j].NextOrderDate)
	})

	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	st, err := newStyles(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	if err := writeHeader(f, st); err != nil {
		f.Close()
		return nil, err
	}

	for i, r := range rows {
		if err := writeRow(f, st, i+2, r); err != nil {
			f.Close()
			return nil, err
		}
	}

	return f, nil
}

type styles struct {
	header     int
	text       int
	date       int
	number     int
	percent    int
	priorities map[int]int
}

func newStyles(f *excelize.File) (styles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "#000000", Style: 1},
		{Type: "right", Color: "#000000", Style: 1},
		{Type: "top", Color: "#000000", Style: 1},
		{Type: "bottom", Color: "#000000", Style: 1},
	}
	dateFmt := "dd.mm.yyyy"

	var st styles
	var err error
	specs := []struct {
		dst   *int
		style *excelize.Style
	}{
		{&st.header, &excelize.Style{
			Font:      &excelize.Font{Bold: true},
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D3D3D3"}},
			Border:    border,
			Alignment: &excelize.Alignment{Horizontal: "center"},
		}},
		{&st.text, &excelize.Style{Border: border}},
		{&st.date, &excelize.Style{Border: border, CustomNumFmt: &dateFmt}},
		{&st.number, &excelize.Style{Border: border, NumFmt: 1}},
		{&st.percent, &excelize.Style{Border: border, NumFmt: 9}},
	}
	for _, s := range specs {
		if *s.dst, err = f.NewStyle(s.style); err != nil {
			return st, fmt.Errorf("failed to create style: %w", err)
		}
	}

	st.priorities = make(map[int]int, len(priorityFills))
	for p, color := range priorityFills {
		font := &excelize.Font{}
		if p == domain.PriorityOverdue {
			font.Color = "#FFFFFF"
		}
		id, err := f.NewStyle(&excelize.Style{
			Font:      font,
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
			Border:    border,
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err != nil {
			return st, fmt.Errorf("failed to create priority style: %w", err)
		}
		st.priorities[p] = id
	}
	return st, nil
}

func writeHeader(f *excelize.File, st styles) error {
	for i, title := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, title); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, col, col, columnWidths[i]); err != nil {
			return fmt.Errorf("failed to size column %s: %w", col, err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	return f.SetCellStyle(SheetName, "A1", last, st.header)
}

func writeRow(f *excelize.File, st styles, row int, r domain.ForecastResult) error {
	values := []interface{}{
		r.Priority,
		r.UnifiedArticle,
		r.ProductName,
		r.NextOrderDate,
		RoundQuantity(r.RecommendedQuantity),
		r.OptimalOrderPlacementDate,
		r.Confidence / 100,
		r.Notes,
	}
	cellStyles := []int{st.priorities[r.Priority], st.text, st.text, st.date, st.number, st.date, st.percent, st.text}
	if cellStyles[0] == 0 {
		cellStyles[0] = st.text
	}

	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		if err := f.SetCellValue(SheetName, cell, v); err != nil {
			return fmt.Errorf("failed to write %s: %w", cell, err)
		}
		if err := f.SetCellStyle(SheetName, cell, cell, cellStyles[i]); err != nil {
			return fmt.Errorf("failed to style %s: %w", cell, err)
		}
	}
	return nil
}

// RoundQuantity rounds a recommended quantity to a whole unit, half to even.
func RoundQuantity(q float64) float64 {
	return decimal.NewFromFloat(q).RoundBank(0).InexactFloat64()
}
