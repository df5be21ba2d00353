package drive

import (
	"context"
	"fmt"
	"io"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/ingest"
)

// OrderSource reads order lines straight from a Drive file. The path given
// to LoadOrders is the Drive file ID.
type OrderSource struct {
	files    FileStore
	ingester *ingest.ExcelIngester
}

func NewOrderSource(files FileStore, ingester *ingest.ExcelIngester) *OrderSource {
	return &OrderSource{files: files, ingester: ingester}
}

func (s *OrderSource) LoadOrders(ctx context.Context, fileID string) ([]domain.OrderLine, error) {
	pr, pw := io.Pipe()
	go func() {
		err := s.files.DownloadFile(ctx, fileID, pw)
		pw.CloseWithError(err)
	}()

	lines, err := s.ingester.ReadOrders(ctx, pr)
	// Unblock the writer if the reader stopped early.
	pr.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read drive file %s: %w", fileID, err)
	}
	return lines, nil
}
