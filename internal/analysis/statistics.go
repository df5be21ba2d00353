package analysis

import "github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"

// ComputeStatistics derives interval, quantity, lead time and last order
// date from the product history. The returned product carries its history
// sorted by order date. Products without history are returned unchanged.
func ComputeStatistics(p domain.UnifiedProduct, defaultLeadDays float64) domain.UnifiedProduct {
	if !p.HasHistory() {
		return p
	}

	sorted := p.SortedHistory()
	p.OrderHistory = sorted

	p.AverageOrderInterval = 0
	if gaps := Intervals(sorted); len(gaps) > 0 {
		p.AverageOrderInterval = RobustMean(gaps)
	}

	p.AverageOrderQuantity = Mean(Quantities(sorted))

	if leads := LeadTimes(sorted); len(leads) > 0 {
		p.AverageDeliveryTime = RobustMean(leads)
	} else {
		p.AverageDeliveryTime = defaultLeadDays
	}

	p.LastOrderDate = domain.TimePtr(sorted[len(sorted)-1].OrderDate)
	return p
}

// StatisticsPhase binds the default lead time for use in a pipeline.
func StatisticsPhase(defaultLeadDays float64) func(domain.UnifiedProduct) domain.UnifiedProduct {
	return func(p domain.UnifiedProduct) domain.UnifiedProduct {
		return ComputeStatistics(p, defaultLeadDays)
	}
}
