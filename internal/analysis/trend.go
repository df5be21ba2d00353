package analysis

import "github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"

// TrendFactor is the relative change between the first and last ordered
// quantity spread evenly over the intervals of a date-sorted history. A first
// quantity of zero is treated as 1.
func TrendFactor(sorted []domain.OrderLine) float64 {
	if len(sorted) < 2 {
		return 0
	}
	first := sorted[0].OrderedQuantity
	if first == 0 {
		first = 1
	}
	last := sorted[len(sorted)-1].OrderedQuantity
	return (last - first) / first / float64(len(sorted)-1)
}

// VolumeChange is the total relative change between first and last quantity,
// with a zero first quantity treated as 1.
func VolumeChange(sorted []domain.OrderLine) float64 {
	if len(sorted) < 2 {
		return 0
	}
	first := sorted[0].OrderedQuantity
	if first == 0 {
		first = 1
	}
	return (sorted[len(sorted)-1].OrderedQuantity - first) / first
}
