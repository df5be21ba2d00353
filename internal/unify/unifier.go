// Package unify groups raw order lines into canonical products.
package unify

import (
	"fmt"
	"strings"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/analysis"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/config"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/pipeline"
	"github.com/rs/zerolog/log"
)

// AutoArticlePrefix prefixes generated articles of products identified by
// name only.
const AutoArticlePrefix = "AUTO_"

// Stage names of the per-product pipeline run after grouping.
const (
	StageStatistics  = "statistics"
	StageSeasonality = "seasonality"
	StageDerive      = "derive"
)

// Scorer rates the similarity of two names in [0, 1].
type Scorer interface {
	Score(a, b string) float64
}

// Unifier merges order lines by article code and by fuzzy name match.
type Unifier struct {
	scorer   Scorer
	settings config.ForecastSettings
	pipeline *pipeline.Pipeline
}

// NewUnifier creates a unifier with the given name scorer.
func NewUnifier(scorer Scorer, settings config.ForecastSettings) *Unifier {
	return &Unifier{
		scorer:   scorer,
		settings: settings,
		pipeline: pipeline.New("unify",
			pipeline.PerProduct(StageStatistics, analysis.StatisticsPhase(settings.DefaultDeliveryDays)),
			pipeline.PerProduct(StageSeasonality, analysis.SeasonalityPhase(settings.DefaultSeasonalityCoefficient)),
			pipeline.PerProduct(StageDerive, analysis.DerivePhase(settings.SafetyFactorForOrderPlacement)),
		),
	}
}

// Unify groups lines into products. Lines with an article code are grouped
// by the normalized code in order of first appearance. Lines without one are
// attached to the first product with a similar name, or start a new product.
// Every product then passes through statistics, seasonality and derivation.
func (u *Unifier) Unify(lines []domain.OrderLine) []domain.UnifiedProduct {
	if len(lines) == 0 {
		return []domain.UnifiedProduct{}
	}

	products := groupByArticle(lines)
	byArticle := len(products)

	var unmatched int
	for _, line := range lines {
		if line.HasArticle() || !line.HasName() {
			continue
		}

		if idx := u.findSimilar(products, line.ProductName); idx >= 0 {
			p := products[idx]
			p.OrderHistory = append(p.OrderHistory, line)
			products[idx] = p.WithNameVariation(line.ProductName)
			continue
		}

		article := fmt.Sprintf("%s%d", AutoArticlePrefix, len(products)+1)
		p := domain.NewUnifiedProduct(article, line.ProductName).WithNameVariation(line.ProductName)
		p.OrderHistory = []domain.OrderLine{line}
		products = append(products, p)
		unmatched++
	}

	out, _ := u.pipeline.Run(products)

	log.Info().
		Int("lines", len(lines)).
		Int("products", len(out)).
		Int("by_article", byArticle).
		Int("by_name", unmatched).
		Msg("order lines unified")

	return out
}

// findSimilar returns the index of the first product holding a name
// variation above the similarity threshold, or -1.
func (u *Unifier) findSimilar(products []domain.UnifiedProduct, name string) int {
	for i, p := range products {
		for _, v := range p.NameVariations {
			if u.scorer.Score(name, v) > u.settings.SimilarityThreshold {
				return i
			}
		}
	}
	return -1
}

func groupByArticle(lines []domain.OrderLine) []domain.UnifiedProduct {
	index := make(map[string]int)
	var groups [][]domain.OrderLine
	var keys []string

	for _, line := range lines {
		if !line.HasArticle() {
			continue
		}
		key := domain.NormalizeArticle(line.ArticleNumber)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, nil)
			keys = append(keys, key)
		}
		groups[i] = append(groups[i], line)
	}

	products := make([]domain.UnifiedProduct, 0, len(groups))
	for i, group := range groups {
		p := domain.NewUnifiedProduct(keys[i], primaryName(group)).WithArticleVariation(keys[i])
		for _, line := range group {
			p = p.WithNameVariation(line.ProductName)
		}
		p.OrderHistory = group
		products = append(products, p)
	}
	return products
}

// primaryName picks the most frequent non-blank name, ties going to the
// name seen first.
func primaryName(lines []domain.OrderLine) string {
	counts := make(map[string]int)
	var order []string
	for _, l := range lines {
		if strings.TrimSpace(l.ProductName) == "" {
			continue
		}
		if counts[l.ProductName] == 0 {
			order = append(order, l.ProductName)
		}
		counts[l.ProductName]++
	}

	best := ""
	bestCount := 0
	for _, name := range order {
		if counts[name] > bestCount {
			best, bestCount = name, counts[name]
		}
	}
	return best
}
