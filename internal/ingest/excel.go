// Package ingest reads historical order lines from spreadsheets.
package ingest

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// Column positions of the order sheet.
const (
	colOrderDate = iota
	colOrderNumber
	colPositionNumber
	colProductName
	colArticle
	colOrderedQty
	colDeliveredQty
	colDeliveryDate
	colNotes
)

// ctxCheckEvery is the number of rows read between cancellation checks.
const ctxCheckEvery = 500

// ExcelIngester loads order lines from the first sheet of an XLSX workbook.
// The first row is a header.
type ExcelIngester struct{}

// NewExcelIngester creates an ingester.
func NewExcelIngester() *ExcelIngester {
	return &ExcelIngester{}
}

// LoadOrders reads the workbook at path.
func (x *ExcelIngester) LoadOrders(ctx context.Context, path string) ([]domain.OrderLine, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx file %s: %w", path, err)
	}
	defer f.Close()

	lines, err := x.read(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	log.Info().Str("file", path).Int("lines", len(lines)).Msg("order lines loaded")
	return lines, nil
}

// ReadOrders reads a workbook from r, as used for uploads.
func (x *ExcelIngester) ReadOrders(ctx context.Context, r io.Reader) ([]domain.OrderLine, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx stream: %w", err)
	}
	defer f.Close()

	return x.read(ctx, f)
}

func (x *ExcelIngester) read(ctx context.Context, f *excelize.File) ([]domain.OrderLine, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var lines []domain.OrderLine
	var skipped int
	for n := 0; rows.Next(); n++ {
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", n+1, err)
		}
		if n == 0 {
			continue
		}

		line, ok := parseRow(record)
		if !ok {
			skipped++
			continue
		}
		lines = append(lines, line)
	}

	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("error iterating rows in %s: %w", sheet, err)
	}

	if skipped > 0 {
		log.Debug().Str("sheet", sheet).Int("skipped", skipped).Msg("rows without order date skipped")
	}
	return lines, nil
}

// parseRow converts one data row. Rows whose first cell is blank are
// rejected.
func parseRow(record []string) (domain.OrderLine, bool) {
	cell := func(i int) string {
		if i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	if cell(colOrderDate) == "" {
		return domain.OrderLine{}, false
	}

	orderDate, _ := ParseDate(cell(colOrderDate))
	line := domain.OrderLine{
		OrderDate:         orderDate,
		OrderNumber:       cell(colOrderNumber),
		PositionNumber:    cell(colPositionNumber),
		ProductName:       cell(colProductName),
		ArticleNumber:     cell(colArticle),
		OrderedQuantity:   ParseNumber(cell(colOrderedQty)),
		DeliveredQuantity: ParseDeliveredQuantity(cell(colDeliveredQty)),
		Notes:             cell(colNotes),
	}
	if d, ok := ParseDate(cell(colDeliveryDate)); ok {
		line.DeliveryDate = &d
	}

	if line.ArticleNumber == "" && line.ProductName != "" {
		line.ArticleNumber = ExtractArticle(line.ProductName)
	}
	return line, true
}
