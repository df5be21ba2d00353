package analysis

import (
	"math"
	"sort"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
)

// minValuesForOutlierFilter is the smallest sample the IQR filter runs on.
const minValuesForOutlierFilter = 4

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation.
func StdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return math.Sqrt(sum / float64(len(values)))
}

// Quantile returns the linearly interpolated value at position (n-1)*q of an
// ascending slice.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := float64(len(sorted)-1) * q
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

// FilterOutliers drops values outside the Tukey fences Q1-1.5·IQR and
// Q3+1.5·IQR. Samples smaller than four values are returned as is.
func FilterOutliers(values []float64) []float64 {
	if len(values) < minValuesForOutlierFilter {
		return values
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	q1 := Quantile(sorted, 0.25)
	q3 := Quantile(sorted, 0.75)
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	kept := make([]float64, 0, len(sorted))
	for _, v := range sorted {
		if v >= lower && v <= upper {
			kept = append(kept, v)
		}
	}
	return kept
}

// RobustMean is the mean after outlier filtering, falling back to the plain
// mean when filtering leaves nothing.
func RobustMean(values []float64) float64 {
	if filtered := FilterOutliers(values); len(filtered) > 0 {
		return Mean(filtered)
	}
	return Mean(values)
}

// Intervals returns the day gaps between consecutive entries of a history
// sorted by order date.
func Intervals(sorted []domain.OrderLine) []float64 {
	if len(sorted) < 2 {
		return nil
	}
	gaps := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, domain.DaysBetween(sorted[i-1].OrderDate, sorted[i].OrderDate))
	}
	return gaps
}

// LeadTimes returns delivery lead times in days for lines with a delivery date.
func LeadTimes(lines []domain.OrderLine) []float64 {
	var leads []float64
	for _, l := range lines {
		if days, ok := l.LeadDays(); ok {
			leads = append(leads, days)
		}
	}
	return leads
}

// Quantities returns the ordered quantities of the lines.
func Quantities(lines []domain.OrderLine) []float64 {
	qty := make([]float64, len(lines))
	for i, l := range lines {
		qty[i] = l.OrderedQuantity
	}
	return qty
}
