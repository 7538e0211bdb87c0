// Package ingest converts raw scraped records into catalog products.
package ingest

import (
	"fmt"

	"github.com/niksmo/pc-catalog/internal/core/domain"
	"github.com/niksmo/pc-catalog/internal/core/price"
	"github.com/spf13/cast"
)

// A Record is one scraped product as decoded from JSON.
type Record = map[string]any

// Normalize builds a product from rec. Field name variants used by
// different scrapers are accepted. site is the catalog section the record
// came from and index its position there, used when rec has no id.
func Normalize(rec Record, site string, index int) domain.Product {
	pd := price.ParseAny(first(rec, "price"))
	compare := price.ParseAny(first(rec, "old_price", "compareAtPrice"))

	p := domain.Product{
		ID:                firstString(rec, "id"),
		Title:             firstString(rec, "title", "name"),
		Price:             nonNegative(pd.NumericValue),
		CompareAtPrice:    nonNegative(compare.NumericValue),
		Retailer:          firstString(rec, "store", "site", "retailer"),
		Site:              site,
		Category:          firstString(rec, "category"),
		InStock:           true,
		URL:               firstString(rec, "link", "url"),
		Image:             imageField(rec["image"]),
		ProcessedImage:    firstString(rec, "processed_image", "processedImage"),
		DetectedCurrency:  firstString(rec, "detected_currency", "detectedCurrency"),
		RawPrice:          firstString(rec, "raw_price", "rawPrice"),
		RawCompareAtPrice: firstString(rec, "raw_old_price", "rawCompareAtPrice"),
	}

	if p.ID == "" {
		p.ID = fmt.Sprintf("%s-%d", site, index)
	}
	if p.Retailer == "" {
		p.Retailer = site
	}
	if p.Category == "" {
		p.Category = domain.DefaultCategory
	}
	if v := first(rec, "in_stock", "inStock"); v != nil {
		if b, err := cast.ToBoolE(v); err == nil {
			p.InStock = b
		}
	}

	p.ImageURL = p.Image.Text
	if p.ImageURL == "" {
		p.ImageURL = p.Image.Src
	}
	if p.ImageURL == "" {
		p.ImageURL = firstString(rec, "imageUrl", "image_url")
	}

	if p.DetectedCurrency == "" {
		p.DetectedCurrency = pd.Currency
	}
	if p.DetectedCurrency == "" {
		p.DetectedCurrency = domain.DefaultCurrency
	}
	if p.RawPrice == "" {
		p.RawPrice = pd.RawValue
	}
	if p.RawCompareAtPrice == "" && p.CompareAtPrice > 0 {
		p.RawCompareAtPrice = compare.RawValue
	}

	p.DiscountPercentage = discount(rec, p)
	return p
}

// NormalizeAll normalizes records of one site, preserving order.
func NormalizeAll(recs []Record, site string) []domain.Product {
	ps := make([]domain.Product, 0, len(recs))
	for i, rec := range recs {
		ps = append(ps, Normalize(rec, site, i))
	}
	return ps
}

func discount(rec Record, p domain.Product) int {
	if v := first(rec, "discount", "discountPercentage"); v != nil {
		if d, err := cast.ToIntE(v); err == nil && d > 0 {
			return min(d, 100)
		}
	}
	return price.CalculateDiscount(p.CompareAtPrice, p.Price)
}

func imageField(v any) domain.ImageField {
	switch v := v.(type) {
	case string:
		return domain.ImageField{Text: v}
	case map[string]any:
		return domain.ImageField{Src: cast.ToString(v["src"])}
	}
	return domain.ImageField{}
}

// first returns the first value under keys that is neither nil
// nor an empty string.
func first(rec Record, keys ...string) any {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		return v
	}
	return nil
}

func firstString(rec Record, keys ...string) string {
	for _, k := range keys {
		if s := cast.ToString(first(rec, k)); s != "" {
			return s
		}
	}
	return ""
}

func nonNegative(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}
