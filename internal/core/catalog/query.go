// Package catalog derives filtered, ranked and paginated views
// of an immutable product snapshot.
package catalog

import (
	"slices"
	"strings"

	"github.com/niksmo/pc-catalog/internal/core/domain"
	"github.com/niksmo/pc-catalog/internal/core/search"
)

// DefaultIntent returns the intent of a user who has not touched any control.
func DefaultIntent() domain.QueryIntent {
	return domain.QueryIntent{
		SelectedRetailer: domain.AllRetailers,
		ShowOutOfStock:   true,
	}
}

type stage func([]domain.Product, domain.QueryIntent) []domain.Product

// Query applies the intent to products and returns a new slice.
// products is never modified.
func Query(products []domain.Product, intent domain.QueryIntent) []domain.Product {
	result := products
	for _, s := range []stage{
		searchStage,
		retailerStage,
		categoryStage,
		stockStage,
		discountStage,
	} {
		result = s(result, intent)
	}

	return sortStage(slices.Clone(result), intent)
}

// RetailerFacets counts products per retailer under the search and
// category selection only. The first facet is [domain.AllRetailers]
// with the total, the rest follow first appearance order.
func RetailerFacets(products []domain.Product, intent domain.QueryIntent) []domain.RetailerFacet {
	base := categoryStage(searchStage(products, intent), intent)

	facets := []domain.RetailerFacet{{Name: domain.AllRetailers, Count: len(base)}}
	index := make(map[string]int)
	for _, p := range base {
		i, ok := index[p.Retailer]
		if !ok {
			i = len(facets)
			index[p.Retailer] = i
			facets = append(facets, domain.RetailerFacet{Name: p.Retailer})
		}
		facets[i].Count++
	}
	return facets
}

// CategoryCounts counts all products per category, skipping empty ones.
func CategoryCounts(products []domain.Product) map[string]int {
	counts := make(map[string]int)
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		counts[p.Category]++
	}
	return counts
}

// Favorites returns the products whose IDs are in ids, in catalog order.
func Favorites(products []domain.Product, ids map[string]struct{}) []domain.Product {
	return filter(products, func(p domain.Product) bool {
		_, ok := ids[p.ID]
		return ok
	})
}

func filter(ps []domain.Product, keep func(domain.Product) bool) []domain.Product {
	out := make([]domain.Product, 0, len(ps))
	for _, p := range ps {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}

func searchStage(ps []domain.Product, intent domain.QueryIntent) []domain.Product {
	if strings.TrimSpace(intent.Query) == "" {
		return ps
	}
	return filter(ps, func(p domain.Product) bool {
		return search.Matches(intent.Query, p.SearchText())
	})
}

func retailerStage(ps []domain.Product, intent domain.QueryIntent) []domain.Product {
	r := intent.SelectedRetailer
	if r == domain.AllRetailers {
		return ps
	}
	return filter(ps, func(p domain.Product) bool {
		return p.Retailer == r
	})
}

func categoryStage(ps []domain.Product, intent domain.QueryIntent) []domain.Product {
	c := intent.SelectedCategory
	if c == "" {
		return ps
	}
	return filter(ps, func(p domain.Product) bool {
		return p.Category == c
	})
}

// A zero price counts as unavailable whatever the stock flag says.
func stockStage(ps []domain.Product, intent domain.QueryIntent) []domain.Product {
	if intent.ShowOutOfStock {
		return ps
	}
	return filter(ps, func(p domain.Product) bool {
		return p.InStock && p.Price > 0
	})
}

func discountStage(ps []domain.Product, intent domain.QueryIntent) []domain.Product {
	if !intent.ShowOnDiscountOnly {
		return ps
	}
	return filter(ps, domain.Product.HasDiscount)
}

func sortStage(ps []domain.Product, intent domain.QueryIntent) []domain.Product {
	switch intent.Sort {
	case domain.SortPriceAsc:
		slices.SortStableFunc(ps, func(a, b domain.Product) int {
			return cmpFloat(a.Price, b.Price)
		})
	case domain.SortPriceDesc:
		slices.SortStableFunc(ps, func(a, b domain.Product) int {
			return cmpFloat(b.Price, a.Price)
		})
	case domain.SortUnset, domain.SortRelevance:
		if strings.TrimSpace(intent.Query) != "" {
			sortByRelevance(ps, intent.Query)
		}
	}
	return ps
}

type scored struct {
	p     domain.Product
	score int
}

// sortByRelevance orders by descending score, then ascending price.
func sortByRelevance(ps []domain.Product, query string) {
	items := make([]scored, len(ps))
	for i, p := range ps {
		items[i] = scored{p, search.Score(p.Title, query)}
	}

	slices.SortStableFunc(items, func(a, b scored) int {
		if a.score != b.score {
			return b.score - a.score
		}
		return cmpFloat(a.p.Price, b.p.Price)
	})

	for i := range items {
		ps[i] = items[i].p
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
