// backend-go/internal/domain/product.go
package domain

import (
	"strings"
	"time"
)

// MonthsInYear is the length of a seasonality profile.
const MonthsInYear = 12

// UnifiedProduct groups the order lines that refer to the same physical item
// together with the metrics derived from them.
type UnifiedProduct struct {
	UnifiedArticle    string      `json:"UnifiedArticle"`
	PrimaryName       string      `json:"PrimaryName"`
	NameVariations    []string    `json:"NameVariations"`
	ArticleVariations []string    `json:"ArticleVariations"`
	OrderHistory      []OrderLine `json:"OrderHistory"`

	AverageOrderInterval    float64               `json:"AverageOrderInterval"`
	AverageOrderQuantity    float64               `json:"AverageOrderQuantity"`
	AverageDeliveryTime     float64               `json:"AverageDeliveryTime"`
	SeasonalityCoefficients [MonthsInYear]float64 `json:"SeasonalityCoefficients"`

	LastOrderDate             *time.Time `json:"LastOrderDate,omitempty"`
	NextPredictedOrderDate    *time.Time `json:"NextPredictedOrderDate,omitempty"`
	RecommendedQuantity       float64    `json:"RecommendedQuantity"`
	OptimalOrderPlacementDate *time.Time `json:"OptimalOrderPlacementDate,omitempty"`
}

// NewUnifiedProduct creates a product with a neutral seasonality profile.
func NewUnifiedProduct(article, primaryName string) UnifiedProduct {
	p := UnifiedProduct{
		UnifiedArticle:    article,
		PrimaryName:       primaryName,
		NameVariations:    []string{},
		ArticleVariations: []string{},
	}
	for i := range p.SeasonalityCoefficients {
		p.SeasonalityCoefficients[i] = 1
	}
	return p
}

// HasHistory reports whether the product has any order lines.
func (p UnifiedProduct) HasHistory() bool {
	return len(p.OrderHistory) > 0
}

// SortedHistory returns the order history ordered by order date.
func (p UnifiedProduct) SortedHistory() []OrderLine {
	return SortByOrderDate(p.OrderHistory)
}

// SeasonalCoefficient returns the coefficient for the month of t. A zero
// coefficient means "no data" and is reported as 1.
func (p UnifiedProduct) SeasonalCoefficient(t time.Time) float64 {
	c := p.SeasonalityCoefficients[int(t.Month())-1]
	if c == 0 {
		return 1
	}
	return c
}

// WithNameVariation returns p with name appended to its name variations if
// it is not blank and not already present.
func (p UnifiedProduct) WithNameVariation(name string) UnifiedProduct {
	p.NameVariations = appendUnique(p.NameVariations, name, false)
	return p
}

// WithArticleVariation returns p with article appended to its article
// variations. Comparison ignores case and surrounding whitespace.
func (p UnifiedProduct) WithArticleVariation(article string) UnifiedProduct {
	p.ArticleVariations = appendUnique(p.ArticleVariations, article, true)
	return p
}

// Clone returns a deep copy of the slices held by p.
func (p UnifiedProduct) Clone() UnifiedProduct {
	p.NameVariations = append([]string(nil), p.NameVariations...)
	p.ArticleVariations = append([]string(nil), p.ArticleVariations...)
	p.OrderHistory = append([]OrderLine(nil), p.OrderHistory...)
	p.LastOrderDate = cloneTime(p.LastOrderDate)
	p.NextPredictedOrderDate = cloneTime(p.NextPredictedOrderDate)
	p.OptimalOrderPlacementDate = cloneTime(p.OptimalOrderPlacementDate)
	return p
}

// MappingItem returns the identity part of the product.
func (p UnifiedProduct) MappingItem() MappingItem {
	return MappingItem{
		UnifiedArticle:    p.UnifiedArticle,
		PrimaryName:       p.PrimaryName,
		NameVariations:    append([]string{}, p.NameVariations...),
		ArticleVariations: append([]string{}, p.ArticleVariations...),
	}
}

// TimePtr returns a pointer to a copy of t.
func TimePtr(t time.Time) *time.Time {
	return &t
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	return TimePtr(*t)
}

func appendUnique(values []string, value string, foldCase bool) []string {
	if strings.TrimSpace(value) == "" {
		return values
	}
	for _, v := range values {
		if v == value || (foldCase && NormalizeArticle(v) == NormalizeArticle(value)) {
			return values
		}
	}
	out := make([]string, len(values), len(values)+1)
	copy(out, values)
	return append(out, value)
}
