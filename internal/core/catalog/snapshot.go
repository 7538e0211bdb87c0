package catalog

import (
	"slices"

	"github.com/niksmo/pc-catalog/internal/core/domain"
)

// Upsert replaces products with the same ID in place and appends new ones
// in update order. products is not modified.
func Upsert(products, updates []domain.Product) []domain.Product {
	out := slices.Clone(products)
	index := make(map[string]int, len(out))
	for i, p := range out {
		index[p.ID] = i
	}

	for _, u := range updates {
		if i, ok := index[u.ID]; ok {
			out[i] = u
			continue
		}
		index[u.ID] = len(out)
		out = append(out, u)
	}
	return out
}

// RecountSites sets each site's product count from products. Sites seen
// only in products are appended with lastUpdated.
func RecountSites(sites []domain.SiteStatus, products []domain.Product, lastUpdated string) []domain.SiteStatus {
	counts := make(map[string]int)
	var order []string
	for _, p := range products {
		if _, ok := counts[p.Site]; !ok {
			order = append(order, p.Site)
		}
		counts[p.Site]++
	}

	out := make([]domain.SiteStatus, 0, len(sites))
	known := make(map[string]bool, len(sites))
	for _, s := range sites {
		known[s.Name] = true
		s.ProductCount = counts[s.Name]
		out = append(out, s)
	}
	for _, name := range order {
		if known[name] || name == "" {
			continue
		}
		out = append(out, domain.SiteStatus{
			Name:         name,
			LastUpdated:  lastUpdated,
			ProductCount: counts[name],
		})
	}
	return out
}

// KeepNonEmptySites returns next where every site that came back empty
// but had products in prev keeps its previous products and status.
func KeepNonEmptySites(prev, next domain.Catalog) domain.Catalog {
	prevBySite := make(map[string][]domain.Product)
	for _, p := range prev.Products {
		prevBySite[p.Site] = append(prevBySite[p.Site], p)
	}
	prevStatus := make(map[string]domain.SiteStatus, len(prev.Sites))
	for _, s := range prev.Sites {
		prevStatus[s.Name] = s
	}

	nextBySite := make(map[string][]domain.Product)
	for _, p := range next.Products {
		nextBySite[p.Site] = append(nextBySite[p.Site], p)
	}

	out := domain.Catalog{
		LastUpdated: next.LastUpdated,
		Sites:       make([]domain.SiteStatus, 0, len(next.Sites)),
	}
	seen := make(map[string]bool, len(next.Sites))
	for _, s := range next.Sites {
		seen[s.Name] = true
		ps := nextBySite[s.Name]
		if len(ps) == 0 && len(prevBySite[s.Name]) > 0 {
			ps = prevBySite[s.Name]
			if st, ok := prevStatus[s.Name]; ok {
				s = st
			} else {
				s.ProductCount = len(ps)
			}
		}
		out.Sites = append(out.Sites, s)
		out.Products = append(out.Products, ps...)
	}

	for _, p := range next.Products {
		if !seen[p.Site] {
			out.Products = append(out.Products, p)
		}
	}
	return out
}
