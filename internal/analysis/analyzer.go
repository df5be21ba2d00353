package analysis

import (
	"math"
	"time"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/config"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/pipeline"
	"github.com/rs/zerolog/log"
)

// Stage names of the analysis pipeline, in execution order.
const (
	StageFrequency   = "frequency"
	StageSeasonality = "seasonality"
	StageVolumes     = "volumes"
	StageDelivery    = "delivery"
)

// Analyzer runs the stand-alone analysis passes over a product collection.
type Analyzer struct {
	settings config.ForecastSettings
	now      func() time.Time
}

// NewAnalyzer creates an analyzer. A nil clock defaults to time.Now.
func NewAnalyzer(settings config.ForecastSettings, now func() time.Time) *Analyzer {
	if now == nil {
		now = time.Now
	}
	return &Analyzer{settings: settings, now: now}
}

// Pipeline returns the four passes as a pipeline.
func (a *Analyzer) Pipeline() *pipeline.Pipeline {
	return pipeline.New("analysis",
		pipeline.PerProduct(StageFrequency, a.Frequency),
		pipeline.PerProduct(StageSeasonality, SeasonalityPhase(a.settings.DefaultSeasonalityCoefficient)),
		pipeline.PerProduct(StageVolumes, a.Volumes),
		pipeline.PerProduct(StageDelivery, a.Delivery),
	)
}

// Analyze runs frequency, seasonality, volume and delivery analysis in that
// order and returns the updated products.
func (a *Analyzer) Analyze(products []domain.UnifiedProduct) []domain.UnifiedProduct {
	out, metrics := a.Pipeline().Run(products)
	log.Info().
		Int("products", len(out)).
		Dur("duration", metrics.CompletedAt.Sub(metrics.StartedAt)).
		Msg("analysis completed")
	return out
}

// Frequency computes the outlier-filtered order interval and projects the
// next order date using the current month's seasonal coefficient.
func (a *Analyzer) Frequency(p domain.UnifiedProduct) domain.UnifiedProduct {
	sorted := p.SortedHistory()
	if len(sorted) < 2 {
		return p
	}

	p.OrderHistory = sorted
	p.AverageOrderInterval = RobustMean(Intervals(sorted))
	last := sorted[len(sorted)-1].OrderDate
	p.LastOrderDate = domain.TimePtr(last)

	if p.AverageOrderInterval > 0 {
		next := domain.AddDays(last, p.AverageOrderInterval*p.SeasonalCoefficient(a.now()))
		p.NextPredictedOrderDate = &next
	}
	return p
}

// Volumes computes the mean quantity and, when a next date is known, the
// trend and season adjusted quantity rounded up to a whole unit.
func (a *Analyzer) Volumes(p domain.UnifiedProduct) domain.UnifiedProduct {
	if !p.HasHistory() {
		return p
	}

	p.AverageOrderQuantity = Mean(Quantities(p.OrderHistory))

	if p.NextPredictedOrderDate != nil {
		trend := TrendFactor(p.SortedHistory())
		coef := p.SeasonalCoefficient(*p.NextPredictedOrderDate)
		p.RecommendedQuantity = math.Ceil(p.AverageOrderQuantity * (1 + trend) * coef)
	}
	return p
}

// Delivery computes the outlier-filtered lead time and the placement date.
func (a *Analyzer) Delivery(p domain.UnifiedProduct) domain.UnifiedProduct {
	if leads := LeadTimes(p.OrderHistory); len(leads) > 0 {
		p.AverageDeliveryTime = RobustMean(leads)
	} else {
		p.AverageDeliveryTime = a.settings.DefaultDeliveryDays
	}

	if p.NextPredictedOrderDate != nil && p.AverageDeliveryTime > 0 {
		placement := PlacementDate(*p.NextPredictedOrderDate, p.AverageDeliveryTime, a.settings.SafetyFactorForOrderPlacement)
		p.OptimalOrderPlacementDate = &placement
	}
	return p
}
