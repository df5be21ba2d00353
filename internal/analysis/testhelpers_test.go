package analysis

import (
	"time"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
)

var baseDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time {
	return baseDate.AddDate(0, 0, n)
}

// productAt builds a product with one line per offset in days.
func productAt(qty float64, offsets ...int) domain.UnifiedProduct {
	p := domain.NewUnifiedProduct("A-1", "Widget")
	for i, o := range offsets {
		p.OrderHistory = append(p.OrderHistory, domain.OrderLine{
			OrderDate:       day(o),
			OrderNumber:     string(rune('a' + i)),
			ProductName:     "Widget",
			ArticleNumber:   "A-1",
			OrderedQuantity: qty,
		})
	}
	return p
}

func almostEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}

// sameInstant tolerates the sub-second drift of fractional day arithmetic.
func sameInstant(a *time.Time, b time.Time) bool {
	if a == nil {
		return false
	}
	d := a.Sub(b)
	return d > -time.Second && d < time.Second
}
