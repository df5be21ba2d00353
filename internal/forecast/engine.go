// Package forecast projects future order events from analysed products.
package forecast

import (
	"math"
	"sort"
	"time"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/analysis"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/config"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// projectionConfidenceStep is subtracted from the base confidence for every
// projection further out.
const projectionConfidenceStep = 10

// Engine turns products into forecast results inside a date window.
type Engine struct {
	settings config.ForecastSettings
	now      func() time.Time
}

// NewEngine creates an engine. A nil clock defaults to time.Now.
func NewEngine(settings config.ForecastSettings, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{settings: settings, now: now}
}

// GenerateFullForecasts emits a primary result for every product whose next
// order falls inside [start, end], followed by up to MaxProjections further
// results spaced by the order interval. Results are ordered by priority and
// then by placement date.
func (e *Engine) GenerateFullForecasts(products []domain.UnifiedProduct, start, end time.Time) []domain.ForecastResult {
	now := e.now()
	var results []domain.ForecastResult
	var forecasted int

	for _, product := range products {
		if !product.HasHistory() {
			continue
		}

		p := e.Refresh(product, start)
		if p.NextPredictedOrderDate == nil {
			continue
		}
		next := *p.NextPredictedOrderDate
		if next.Before(start) || next.After(end) {
			continue
		}

		details := DetailedNotes(p, e.settings, 0)
		base := Confidence(len(p.OrderHistory))
		placement := now
		if p.OptimalOrderPlacementDate != nil {
			placement = *p.OptimalOrderPlacementDate
		}

		results = append(results, domain.ForecastResult{
			UnifiedArticle:            p.UnifiedArticle,
			ProductName:               p.PrimaryName,
			NextOrderDate:             next,
			RecommendedQuantity:       p.RecommendedQuantity,
			OptimalOrderPlacementDate: placement,
			Priority:                  Priority(placement, now),
			Confidence:                base,
			Notes:                     details,
		})
		forecasted++

		results = append(results, e.project(p, next, end, base, details, now)...)
	}

	SortByPriority(results)

	log.Debug().
		Int("products", len(products)).
		Int("forecasted", forecasted).
		Int("results", len(results)).
		Time("start", start).
		Time("end", end).
		Msg("forecasts generated")

	return results
}

func (e *Engine) project(p domain.UnifiedProduct, next, end time.Time, base float64, details string, now time.Time) []domain.ForecastResult {
	interval := p.AverageOrderInterval
	if interval <= 0 {
		interval = e.settings.DefaultOrderInterval
	}

	var out []domain.ForecastResult
	for i := 1; i <= e.settings.MaxProjections; i++ {
		next = domain.AddDays(next, interval)
		if next.After(end) {
			break
		}

		placement := analysis.PlacementDate(next, p.AverageDeliveryTime, e.settings.SafetyFactorForOrderPlacement)
		out = append(out, domain.ForecastResult{
			UnifiedArticle:            p.UnifiedArticle,
			ProductName:               p.PrimaryName,
			NextOrderDate:             next,
			RecommendedQuantity:       p.RecommendedQuantity,
			OptimalOrderPlacementDate: placement,
			Priority:                  Priority(placement, now),
			Confidence:                math.Max(domain.LowConfidence, base-float64(projectionConfidenceStep*i)),
			Notes:                     ProjectionNotes(i, details),
		})
	}
	return out
}

// Refresh re-projects the next order date when it is unset or before start,
// using the plain mean gap between the first and last order. A next date
// still before start is advanced by whole intervals. The quantity becomes
// the plain mean and the placement date is recomputed. The input is not
// modified.
func (e *Engine) Refresh(p domain.UnifiedProduct, start time.Time) domain.UnifiedProduct {
	if p.NextPredictedOrderDate != nil && !p.NextPredictedOrderDate.Before(start) {
		return p
	}

	sorted := p.SortedHistory()
	if len(sorted) < 2 {
		return p
	}

	first := sorted[0].OrderDate
	last := sorted[len(sorted)-1].OrderDate
	avg := domain.DaysBetween(first, last) / float64(len(sorted)-1)
	if avg <= 0 {
		return p
	}

	p = p.Clone()
	next := domain.AddDays(last, avg)
	if next.Before(start) {
		steps := math.Ceil(domain.DaysBetween(last, start) / avg)
		next = domain.AddDays(last, steps*avg)
	}

	p.NextPredictedOrderDate = domain.TimePtr(next)
	p.RecommendedQuantity = analysis.Mean(analysis.Quantities(sorted))
	p.OptimalOrderPlacementDate = domain.TimePtr(
		analysis.PlacementDate(next, p.AverageDeliveryTime, e.settings.SafetyFactorForOrderPlacement))
	return p
}

// ForecastOrderDates lists products whose next order is due within
// daysAhead days from now, most urgent first.
func (e *Engine) ForecastOrderDates(products []domain.UnifiedProduct, daysAhead int) []domain.ForecastResult {
	now := e.now()
	end := now.AddDate(0, 0, daysAhead)

	var out []domain.ForecastResult
	for _, p := range products {
		if p.NextPredictedOrderDate == nil || p.NextPredictedOrderDate.After(end) {
			continue
		}
		out = append(out, e.basicResult(p, now))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	return out
}

// ForecastOrderVolumes lists every product with a next order date together
// with its volume trend, largest quantity first.
func (e *Engine) ForecastOrderVolumes(products []domain.UnifiedProduct) []domain.ForecastResult {
	now := e.now()

	var out []domain.ForecastResult
	for _, p := range products {
		if p.NextPredictedOrderDate == nil {
			continue
		}
		r := e.basicResult(p, now)
		r.Notes = VolumeNote(p, e.settings.StableVolumeThreshold)
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RecommendedQuantity > out[j].RecommendedQuantity
	})
	return out
}

// DetermineOptimalPlacementDates lists products with both a next order and a
// placement date, earliest placement first.
func (e *Engine) DetermineOptimalPlacementDates(products []domain.UnifiedProduct) []domain.ForecastResult {
	now := e.now()

	var out []domain.ForecastResult
	for _, p := range products {
		if p.NextPredictedOrderDate == nil || p.OptimalOrderPlacementDate == nil {
			continue
		}
		r := e.basicResult(p, now)
		r.Notes = DeliveryNote(p, e.settings.SafetyFactorForOrderPlacement)
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OptimalOrderPlacementDate.Before(out[j].OptimalOrderPlacementDate)
	})
	return out
}

func (e *Engine) basicResult(p domain.UnifiedProduct, now time.Time) domain.ForecastResult {
	placement := now
	if p.OptimalOrderPlacementDate != nil {
		placement = *p.OptimalOrderPlacementDate
	}
	return domain.ForecastResult{
		UnifiedArticle:            p.UnifiedArticle,
		ProductName:               p.PrimaryName,
		NextOrderDate:             *p.NextPredictedOrderDate,
		RecommendedQuantity:       p.RecommendedQuantity,
		OptimalOrderPlacementDate: placement,
		Priority:                  Priority(placement, now),
		Confidence:                Confidence(len(p.OrderHistory)),
	}
}

// SortByPriority orders results by priority and then by placement date,
// keeping the relative order of equal results.
func SortByPriority(results []domain.ForecastResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Priority != results[j].Priority {
			return results[i].Priority < results[j].Priority
		}
		return results[i].OptimalOrderPlacementDate.Before(results[j].OptimalOrderPlacementDate)
	})
}
