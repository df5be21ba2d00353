package forecast

import (
	"fmt"
	"math"
	"strings"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/analysis"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/config"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
)

// NoDeliveryData is reported by the delivery view for products without a
// known lead time.
const NoDeliveryData = "No delivery time data."

// VolumeNote describes the change between the first and last ordered
// quantity.
func VolumeNote(p domain.UnifiedProduct, stableThreshold float64) string {
	sorted := p.SortedHistory()
	if len(sorted) < 2 {
		return "Insufficient data to analyse the order volume trend."
	}

	change := analysis.VolumeChange(sorted)
	switch {
	case math.Abs(change)*100 < stableThreshold:
		return "Order volumes are stable."
	case change > 0:
		return fmt.Sprintf("Order volumes are growing by %s%%.", round(change*100))
	default:
		return fmt.Sprintf("Order volumes are declining by %s%%.", round(math.Abs(change)*100))
	}
}

// DeliveryNote describes the lead time and the safety margin kept before
// the need date.
func DeliveryNote(p domain.UnifiedProduct, safetyFactor float64) string {
	if p.AverageDeliveryTime <= 0 {
		return NoDeliveryData
	}
	return fmt.Sprintf("Average delivery time: %s days. Safety margin: %s days.",
		round(p.AverageDeliveryTime), round(p.AverageDeliveryTime*safetyFactor))
}

// SeasonalityNote describes the seasonal effect in the month of the next
// order when it deviates from neutral by more than minDeviation.
func SeasonalityNote(p domain.UnifiedProduct, minDeviation float64) (string, bool) {
	if p.NextPredictedOrderDate == nil {
		return "", false
	}
	next := *p.NextPredictedOrderDate
	coef := p.SeasonalCoefficient(next)
	deviation := math.Abs(coef - 1)
	if deviation <= minDeviation {
		return "", false
	}

	direction := "decrease"
	if coef > 1 {
		direction = "increase"
	}
	return fmt.Sprintf("Seasonal factor: %s of %s%% in %s.", direction, round(deviation*100), next.Month()), true
}

// IntervalNote describes the average order interval.
func IntervalNote(p domain.UnifiedProduct) string {
	return fmt.Sprintf("Average interval between orders: %s days.", round(p.AverageOrderInterval))
}

// DetailedNotes joins the volume, delivery, seasonality and interval notes.
// Seasonality is mentioned only when the deviation exceeds minSeasonal.
func DetailedNotes(p domain.UnifiedProduct, s config.ForecastSettings, minSeasonal float64) string {
	notes := []string{VolumeNote(p, s.StableVolumeThreshold)}

	if p.AverageDeliveryTime > 0 {
		notes = append(notes, DeliveryNote(p, s.SafetyFactorForOrderPlacement))
	}
	if note, ok := SeasonalityNote(p, minSeasonal); ok {
		notes = append(notes, note)
	}
	if p.AverageOrderInterval > 0 {
		notes = append(notes, IntervalNote(p))
	}

	return strings.Join(notes, " ")
}

// ProjectionNotes wraps the detailed notes of the i-th projection, counted
// from 1.
func ProjectionNotes(i int, details string) string {
	return fmt.Sprintf("Prognosis #%d for product. %s Confidence reduced due to forecast distance.", i+1, details)
}

// round formats a value rounded half to even as an integer.
func round(v float64) string {
	return fmt.Sprintf("%.0f", math.RoundToEven(v))
}
