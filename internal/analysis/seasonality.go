package analysis

import "github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"

// MinHistoryForSeasonality is the number of entries required before a
// seasonality signal is estimated.
const MinHistoryForSeasonality = 12

// ComputeSeasonality fills the monthly coefficients with the ratio of each
// month's mean quantity to the overall mean. Short histories, empty months
// and a non-positive overall mean get the neutral coefficient.
func ComputeSeasonality(p domain.UnifiedProduct, neutral float64) domain.UnifiedProduct {
	var coefs [domain.MonthsInYear]float64
	for i := range coefs {
		coefs[i] = neutral
	}

	if len(p.OrderHistory) < MinHistoryForSeasonality {
		p.SeasonalityCoefficients = coefs
		return p
	}

	var sums [domain.MonthsInYear]float64
	var counts [domain.MonthsInYear]int
	for _, l := range p.OrderHistory {
		m := int(l.OrderDate.Month()) - 1
		sums[m] += l.OrderedQuantity
		counts[m]++
	}

	overall := Mean(Quantities(p.OrderHistory))
	if overall > 0 {
		for m := range coefs {
			if counts[m] > 0 {
				coefs[m] = sums[m] / float64(counts[m]) / overall
			}
		}
	}

	p.SeasonalityCoefficients = coefs
	return p
}

// SeasonalityPhase binds the neutral coefficient for use in a pipeline.
func SeasonalityPhase(neutral float64) func(domain.UnifiedProduct) domain.UnifiedProduct {
	return func(p domain.UnifiedProduct) domain.UnifiedProduct {
		return ComputeSeasonality(p, neutral)
	}
}
