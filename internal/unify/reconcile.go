package unify

import (
	"fmt"
	"strings"

	"github.com/ViktorAgafonov/ForecastOrder/backend-go/internal/domain"
	"github.com/rs/zerolog/log"
)

// Reconcile restores stored identities onto freshly unified products. A
// product matches the first item sharing an article variation (ignoring case)
// or a name variation. Matched products take the item's article and primary
// name; products matching the same item are merged and re-analysed.
// Unmatched products pass through unless their article clashes with a
// reconciled or stored one, see resolveCollisions.
func (u *Unifier) Reconcile(products []domain.UnifiedProduct, items []domain.MappingItem) []domain.UnifiedProduct {
	if len(items) == 0 {
		return products
	}

	out := make([]domain.UnifiedProduct, 0, len(products))
	slot := make(map[int]int)
	merged := make(map[int]bool)

	for _, p := range products {
		k := matchItem(p, items)
		if k < 0 {
			out = append(out, p)
			continue
		}

		if i, ok := slot[k]; ok {
			out[i] = mergeInto(out[i], p)
			merged[i] = true
			continue
		}

		item := items[k]
		r := p.Clone()
		r.UnifiedArticle = item.UnifiedArticle
		if item.PrimaryName != "" {
			r.PrimaryName = item.PrimaryName
		}
		for _, a := range item.ArticleVariations {
			r = r.WithArticleVariation(a)
		}
		for _, n := range item.NameVariations {
			r = r.WithNameVariation(n)
		}
		slot[k] = len(out)
		out = append(out, r)
	}

	reconciled := make(map[int]bool, len(slot))
	for _, i := range slot {
		reconciled[i] = true
	}
	dropped := resolveCollisions(out, reconciled, merged, items)

	for i := range merged {
		out[i] = u.reanalyse(out[i])
	}
	if len(dropped) > 0 {
		kept := out[:0]
		for i, p := range out {
			if !dropped[i] {
				kept = append(kept, p)
			}
		}
		out = kept
	}

	log.Debug().
		Int("products", len(products)).
		Int("reconciled", len(slot)).
		Int("merged", len(merged)).
		Int("collisions", len(dropped)).
		Msg("products reconciled with stored mapping")

	return out
}

// resolveCollisions keeps canonical articles unique once stored identities
// are applied. Reconciled products claim their articles first. A later
// product with the same real article is merged into the owner and reported
// as dropped. A generated AUTO_ article that clashes with a claimed or stored
// article is renumbered to the next free AUTO_n.
func resolveCollisions(out []domain.UnifiedProduct, reconciled, merged map[int]bool, items []domain.MappingItem) map[int]bool {
	stored := make(map[string]bool, len(items))
	for _, item := range items {
		stored[domain.NormalizeArticle(item.UnifiedArticle)] = true
	}

	owner := make(map[string]int, len(out))
	dropped := make(map[int]bool)
	claim := func(i int) {
		key := domain.NormalizeArticle(out[i].UnifiedArticle)
		if j, ok := owner[key]; ok {
			out[j] = mergeInto(out[j], out[i])
			merged[j] = true
			dropped[i] = true
			return
		}
		owner[key] = i
	}

	for i := range out {
		if reconciled[i] {
			claim(i)
		}
	}

	var renumber []int
	for i := range out {
		if reconciled[i] {
			continue
		}
		key := domain.NormalizeArticle(out[i].UnifiedArticle)
		_, claimed := owner[key]
		if (claimed || stored[key]) && isAutoArticle(out[i].UnifiedArticle) {
			renumber = append(renumber, i)
			continue
		}
		claim(i)
	}

	n := 0
	for _, i := range renumber {
		for {
			n++
			article := fmt.Sprintf("%s%d", AutoArticlePrefix, n)
			key := domain.NormalizeArticle(article)
			if _, ok := owner[key]; ok || stored[key] {
				continue
			}
			out[i].UnifiedArticle = article
			owner[key] = i
			break
		}
	}
	return dropped
}

func isAutoArticle(article string) bool {
	return strings.HasPrefix(domain.NormalizeArticle(article), AutoArticlePrefix)
}

func (u *Unifier) reanalyse(p domain.UnifiedProduct) domain.UnifiedProduct {
	out, _ := u.pipeline.Run([]domain.UnifiedProduct{p})
	return out[0]
}

func mergeInto(dst, src domain.UnifiedProduct) domain.UnifiedProduct {
	dst.OrderHistory = append(append([]domain.OrderLine(nil), dst.OrderHistory...), src.OrderHistory...)
	for _, a := range src.ArticleVariations {
		dst = dst.WithArticleVariation(a)
	}
	for _, n := range src.NameVariations {
		dst = dst.WithNameVariation(n)
	}
	return dst
}

func matchItem(p domain.UnifiedProduct, items []domain.MappingItem) int {
	for k, item := range items {
		if sharesArticle(p.ArticleVariations, item.ArticleVariations) ||
			sharesName(p.NameVariations, item.NameVariations) {
			return k
		}
	}
	return -1
}

func sharesArticle(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if domain.NormalizeArticle(x) == domain.NormalizeArticle(y) && strings.TrimSpace(x) != "" {
				return true
			}
		}
	}
	return false
}

func sharesName(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y && x != "" {
				return true
			}
		}
	}
	return false
}
