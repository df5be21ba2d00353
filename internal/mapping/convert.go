package mapping

import (
	"fmt"
	"strings"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
	"github.com/google/uuid"
)

// FromItems builds a database with one group per item. The group is named
// after the primary name, made unique by a numeric suffix when needed.
func FromItems(items []domain.MappingItem) domain.MappingDatabase {
	db := domain.MappingDatabase{Groups: make([]domain.MappingGroup, 0, len(items))}
	used := make(map[string]bool, len(items))

	for _, item := range items {
		name := uniqueName(groupName(item), used)
		db.Groups = append(db.Groups, domain.MappingGroup{
			ID:                uuid.NewString(),
			Name:              name,
			UnifiedArticle:    item.UnifiedArticle,
			PrimaryName:       item.PrimaryName,
			NameVariations:    append([]string{}, item.NameVariations...),
			ArticleVariations: append([]string{}, item.ArticleVariations...),
		})
	}
	return db
}

// FromProducts builds a database from the identities of products.
func FromProducts(products []domain.UnifiedProduct) domain.MappingDatabase {
	return FromItems(Items(products))
}

// Items returns the identity records of products.
func Items(products []domain.UnifiedProduct) []domain.MappingItem {
	items := make([]domain.MappingItem, len(products))
	for i, p := range products {
		items[i] = p.MappingItem()
	}
	return items
}

// MergeItems returns the identities to reconcile against. Groups of the
// edited database come first so they win the first-match lookup; flat items
// follow unless a group already owns their article. Groups without a unified
// article are left out.
func MergeItems(db domain.MappingDatabase, items []domain.MappingItem) []domain.MappingItem {
	merged := make([]domain.MappingItem, 0, len(db.Groups)+len(items))
	owned := make(map[string]bool, len(db.Groups))
	for _, g := range db.Groups {
		if strings.TrimSpace(g.UnifiedArticle) == "" {
			continue
		}
		owned[domain.NormalizeArticle(g.UnifiedArticle)] = true
		merged = append(merged, g.Item())
	}
	for _, item := range items {
		if owned[domain.NormalizeArticle(item.UnifiedArticle)] {
			continue
		}
		merged = append(merged, item)
	}
	return merged
}

// ToProducts restores identity-only products from stored items. Groups
// without a unified article are left out.
func ToProducts(items []domain.MappingItem) []domain.UnifiedProduct {
	products := make([]domain.UnifiedProduct, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.UnifiedArticle) == "" {
			continue
		}
		p := domain.NewUnifiedProduct(item.UnifiedArticle, item.PrimaryName)
		for _, n := range item.NameVariations {
			p = p.WithNameVariation(n)
		}
		for _, a := range item.ArticleVariations {
			p = p.WithArticleVariation(a)
		}
		products = append(products, p)
	}
	return products
}

func groupName(item domain.MappingItem) string {
	if n := strings.TrimSpace(item.PrimaryName); n != "" {
		return n
	}
	if a := strings.TrimSpace(item.UnifiedArticle); a != "" {
		return a
	}
	return "Group"
}

func uniqueName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		candidate = fmt.Sprintf("%s (%d)", name, n)
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}
