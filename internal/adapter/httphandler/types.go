package httphandler

import (
	"time"

	"github.com/niksmo/pc-catalog/internal/core/domain"
	"github.com/niksmo/pc-catalog/internal/core/price"
)

type (
	Product struct {
		ID                    string  `json:"id"`
		Title                 string  `json:"title"`
		Price                 float64 `json:"price"`
		CompareAtPrice        float64 `json:"compare_at_price,omitempty"`
		DiscountPercentage    int     `json:"discount_percentage,omitempty"`
		Savings               float64 `json:"savings,omitempty"`
		DisplayPrice          string  `json:"display_price"`
		DisplayCompareAtPrice string  `json:"display_compare_at_price,omitempty"`
		Currency              string  `json:"currency"`
		Retailer              string  `json:"retailer"`
		Site                  string  `json:"site"`
		Category              string  `json:"category"`
		InStock               bool    `json:"in_stock"`
		URL                   string  `json:"url"`
		Image                 Image   `json:"image"`
	}

	Image struct {
		URL    string `json:"url"`
		Type   string `json:"type"`
		Reason string `json:"reason"`
	}

	Page struct {
		Items   []Product `json:"items"`
		Total   int       `json:"total"`
		HasMore bool      `json:"has_more"`
	}

	RetailerFacet struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	Status struct {
		LastUpdated   string       `json:"last_updated"`
		LoadedAt      string       `json:"loaded_at,omitempty"`
		TotalProducts int          `json:"total_products"`
		Sites         []SiteStatus `json:"sites"`
	}

	SiteStatus struct {
		Name         string `json:"name"`
		LastUpdated  string `json:"last_updated"`
		ProductCount int    `json:"product_count"`
	}

	// Listings is a batch of raw scraped records from one site.
	Listings struct {
		Site     string           `json:"site"`
		Products []map[string]any `json:"products"`
	}
)

type imageResolver func(domain.Product) domain.ImageResult

func toProduct(p domain.Product, resolve imageResolver) Product {
	currency := p.DetectedCurrency
	if currency == "" {
		currency = domain.DefaultCurrency
	}

	v := Product{
		ID:                 p.ID,
		Title:              p.Title,
		Price:              p.Price,
		DiscountPercentage: p.DiscountPercentage,
		DisplayPrice:       price.FormatMoney(p.Price, currency, domain.LocaleUS),
		Currency:           currency,
		Retailer:           p.Retailer,
		Site:               p.Site,
		Category:           p.Category,
		InStock:            p.InStock,
		URL:                p.URL,
	}

	if p.HasDiscount() {
		v.CompareAtPrice = p.CompareAtPrice
		v.Savings = price.CalculateSavings(p.CompareAtPrice, p.Price)
		v.DisplayCompareAtPrice = price.FormatMoney(
			p.CompareAtPrice, currency, domain.LocaleUS,
		)
		if v.DiscountPercentage == 0 {
			v.DiscountPercentage = price.CalculateDiscount(p.CompareAtPrice, p.Price)
		}
	}

	img := resolve(p)
	v.Image = Image{URL: img.URL, Type: string(img.Type), Reason: img.Reason}
	return v
}

func toProducts(ps []domain.Product, resolve imageResolver) []Product {
	vs := make([]Product, 0, len(ps))
	for _, p := range ps {
		vs = append(vs, toProduct(p, resolve))
	}
	return vs
}

func toStatus(s domain.Status) Status {
	v := Status{
		LastUpdated:   s.LastUpdated,
		TotalProducts: s.TotalProducts,
		Sites:         make([]SiteStatus, 0, len(s.Sites)),
	}
	if !s.LoadedAt.IsZero() {
		v.LoadedAt = s.LoadedAt.UTC().Format(time.RFC3339)
	}
	for _, site := range s.Sites {
		v.Sites = append(v.Sites, SiteStatus(site))
	}
	return v
}
