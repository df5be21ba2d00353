package analysis

import (
	"time"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
)

// DerivePrediction projects the next order date from the last order and the
// seasonally adjusted interval, then the quantity and the placement date.
// It expects statistics and seasonality to be computed already.
func DerivePrediction(p domain.UnifiedProduct, safetyFactor float64) domain.UnifiedProduct {
	p.NextPredictedOrderDate = nil
	p.OptimalOrderPlacementDate = nil
	p.RecommendedQuantity = 0

	if p.LastOrderDate == nil || p.AverageOrderInterval <= 0 {
		return p
	}

	last := *p.LastOrderDate
	next := domain.AddDays(last, p.AverageOrderInterval*p.SeasonalCoefficient(last))
	p.NextPredictedOrderDate = &next

	trend := TrendFactor(p.SortedHistory())
	p.RecommendedQuantity = p.AverageOrderQuantity * (1 + trend) * p.SeasonalCoefficient(next)

	if p.AverageDeliveryTime > 0 {
		p.OptimalOrderPlacementDate = domain.TimePtr(PlacementDate(next, p.AverageDeliveryTime, safetyFactor))
	}
	return p
}

// DerivePhase binds the safety factor for use in a pipeline.
func DerivePhase(safetyFactor float64) func(domain.UnifiedProduct) domain.UnifiedProduct {
	return func(p domain.UnifiedProduct) domain.UnifiedProduct {
		return DerivePrediction(p, safetyFactor)
	}
}

// PlacementDate is the need date moved back by the lead time plus the safety
// margin. A non-positive lead time leaves the date as is.
func PlacementDate(need time.Time, leadDays, safetyFactor float64) time.Time {
	if leadDays <= 0 {
		return need
	}
	return domain.AddDays(need, -leadDays*(1+safetyFactor))
}
