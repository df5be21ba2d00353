package forecast

import (
	"time"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
)

// Priority maps the days between ref and the placement date to a tier.
// Overdue placements are the most urgent.
func Priority(placement, ref time.Time) int {
	days := domain.DaysBetween(ref, placement)
	switch {
	case days < 0:
		return domain.PriorityOverdue
	case days < 7:
		return domain.PriorityHigh
	case days < 14:
		return domain.PriorityMedium
	case days < 21:
		return domain.PriorityLow
	default:
		return domain.PriorityLowest
	}
}

// Confidence maps the number of history entries to a base confidence.
func Confidence(historyCount int) float64 {
	switch {
	case historyCount < 3:
		return 30
	case historyCount < 5:
		return 50
	case historyCount < 10:
		return 70
	case historyCount < 20:
		return 85
	default:
		return 95
	}
}
