// backend-go/internal/domain/forecast.go
package domain

import "time"

// ForecastResult is one projected order event for a product.
type ForecastResult struct {
	UnifiedArticle            string    `json:"UnifiedArticle" db:"unified_article"`
	ProductName               string    `json:"ProductName" db:"product_name"`
	NextOrderDate             time.Time `json:"NextOrderDate" db:"next_order_date"`
	RecommendedQuantity       float64   `json:"RecommendedQuantity" db:"recommended_quantity"`
	OptimalOrderPlacementDate time.Time `json:"OptimalOrderPlacementDate" db:"optimal_order_placement_date"`
	Priority                  int       `json:"Priority" db:"priority"`
	Confidence                float64   `json:"Confidence" db:"confidence"`
	Notes                     string    `json:"Notes" db:"notes"`
}

// Priority tiers, 1 is the most urgent.
const (
	PriorityOverdue = 1
	PriorityHigh    = 2
	PriorityMedium  = 3
	PriorityLow     = 4
	PriorityLowest  = 5
)

// LowConfidence is the confidence below which a forecast is demoted by one
// priority tier.
const LowConfidence = 50.0

var priorityLabels = map[int]string{
	PriorityOverdue: "Overdue",
	PriorityHigh:    "High",
	PriorityMedium:  "Medium",
	PriorityLow:     "Low",
	PriorityLowest:  "Lowest",
}

// PriorityLabel returns a human-readable label for a priority tier.
func PriorityLabel(priority int) string {
	if label, ok := priorityLabels[priority]; ok {
		return label
	}

	return "Unknown"
}
