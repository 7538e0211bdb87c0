package catalog

import "github.com/niksmo/pc-catalog/internal/core/domain"

// Paginate reveals the first visible products of an ordered result.
// A non-positive visible falls back to [domain.DefaultPageSize].
// Widening visible over the same result keeps revealed items in place.
func Paginate(ordered []domain.Product, visible int) domain.Page {
	if visible <= 0 {
		visible = domain.DefaultPageSize
	}
	n := min(visible, len(ordered))
	return domain.Page{
		Items:   ordered[:n:n],
		Total:   len(ordered),
		HasMore: visible < len(ordered),
	}
}
