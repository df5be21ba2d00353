// Package recommend refines forecasts into an ordering plan.
package recommend

import (
	"math"
	"sort"
	"time"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/analysis"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/config"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/forecast"
)

const (
	maxConfidence = 95.0
	// maxVariation caps the confidence penalty for irregular ordering.
	maxVariation = 0.5
	// minSeasonalDeviation is the coefficient deviation worth mentioning.
	minSeasonalDeviation = 0.1
)

// System produces recommendations, priorities, batches and the calendar.
type System struct {
	settings config.ForecastSettings
	now      func() time.Time
}

// NewSystem creates a recommendation system. A nil clock defaults to
// time.Now.
func NewSystem(settings config.ForecastSettings, now func() time.Time) *System {
	if now == nil {
		now = time.Now
	}
	return &System{settings: settings, now: now}
}

// GenerateOrderRecommendations lists products whose placement date falls in
// [start, end]. Priority is measured from start and confidence is reduced by
// the irregularity of past order intervals.
func (s *System) GenerateOrderRecommendations(products []domain.UnifiedProduct, start, end time.Time) []domain.ForecastResult {
	now := s.now()

	var out []domain.ForecastResult
	for _, p := range products {
		if p.NextPredictedOrderDate == nil {
			continue
		}
		if o := p.OptimalOrderPlacementDate; o != nil && (o.Before(start) || o.After(end)) {
			continue
		}

		placement := now
		if p.OptimalOrderPlacementDate != nil {
			placement = *p.OptimalOrderPlacementDate
		}

		out = append(out, domain.ForecastResult{
			UnifiedArticle:            p.UnifiedArticle,
			ProductName:               p.PrimaryName,
			NextOrderDate:             *p.NextPredictedOrderDate,
			RecommendedQuantity:       p.RecommendedQuantity,
			OptimalOrderPlacementDate: placement,
			Priority:                  forecast.Priority(placement, start),
			Confidence:                s.confidence(p),
			Notes:                     forecast.DetailedNotes(p, s.settings, minSeasonalDeviation),
		})
	}

	forecast.SortByPriority(out)
	return out
}

func (s *System) confidence(p domain.UnifiedProduct) float64 {
	base := forecast.Confidence(len(p.OrderHistory))
	return math.Min(maxConfidence, base*(1-VariationFactor(p)))
}

// VariationFactor is half the coefficient of variation of the order
// intervals, capped at 0.5. Too little data yields the cap.
func VariationFactor(p domain.UnifiedProduct) float64 {
	if len(p.OrderHistory) < 2 {
		return maxVariation
	}

	gaps := analysis.Intervals(p.SortedHistory())
	if len(gaps) == 0 {
		return maxVariation
	}

	mean := analysis.Mean(gaps)
	if mean == 0 {
		return maxVariation
	}

	cv := analysis.StdDev(gaps) / mean
	return math.Min(maxVariation, cv/2)
}

// CalculateOrderPriorities returns a copy of forecasts with the priority
// recomputed against now. Low-confidence forecasts drop one tier.
func (s *System) CalculateOrderPriorities(forecasts []domain.ForecastResult) []domain.ForecastResult {
	now := s.now()
	out := make([]domain.ForecastResult, len(forecasts))
	for i, f := range forecasts {
		p := forecast.Priority(f.OptimalOrderPlacementDate, now)
		if f.Confidence < domain.LowConfidence {
			p = min(domain.PriorityLowest, p+1)
		}
		f.Priority = p
		out[i] = f
	}
	return out
}

// GroupOrdersByBatches groups forecasts by placement date. A forecast joins
// the current batch while it is at most BatchWindowDays after the batch's
// first placement date.
func (s *System) GroupOrdersByBatches(forecasts []domain.ForecastResult) [][]domain.ForecastResult {
	if len(forecasts) == 0 {
		return [][]domain.ForecastResult{}
	}

	sorted := append([]domain.ForecastResult(nil), forecasts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OptimalOrderPlacementDate.Before(sorted[j].OptimalOrderPlacementDate)
	})

	var batches [][]domain.ForecastResult
	current := []domain.ForecastResult{sorted[0]}
	anchor := sorted[0].OptimalOrderPlacementDate

	for _, f := range sorted[1:] {
		if domain.DaysBetween(anchor, f.OptimalOrderPlacementDate) <= s.settings.BatchWindowDays {
			current = append(current, f)
			continue
		}
		batches = append(batches, current)
		current = []domain.ForecastResult{f}
		anchor = f.OptimalOrderPlacementDate
	}
	return append(batches, current)
}

// CreateOrderCalendar buckets forecasts by the calendar day of their
// placement date.
func (s *System) CreateOrderCalendar(forecasts []domain.ForecastResult) map[time.Time][]domain.ForecastResult {
	calendar := make(map[time.Time][]domain.ForecastResult)
	for _, f := range forecasts {
		day := domain.CalendarDay(f.OptimalOrderPlacementDate)
		calendar[day] = append(calendar[day], f)
	}
	return calendar
}

// CalendarDays returns the calendar keys in ascending order.
func CalendarDays(calendar map[time.Time][]domain.ForecastResult) []time.Time {
	days := make([]time.Time, 0, len(calendar))
	for d := range calendar {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// FilterByConfidence keeps forecasts with at least threshold confidence. A
// non-positive threshold keeps everything.
func FilterByConfidence(forecasts []domain.ForecastResult, threshold float64) []domain.ForecastResult {
	if threshold <= 0 {
		return forecasts
	}
	out := make([]domain.ForecastResult, 0, len(forecasts))
	for _, f := range forecasts {
		if f.Confidence >= threshold {
			out = append(out, f)
		}
	}
	return out
}
