// Package imagery picks the image variant shown for a product
// according to per-store background removal policies.
package imagery

import (
	"fmt"
	"slices"
	"strings"

	"github.com/niksmo/pc-catalog/internal/core/domain"
)

// PlaceholderPath is served when a product has no image at all.
const PlaceholderPath = "/placeholder.jpg"

// AllCategories enables a policy for every category.
const AllCategories = "ALL"

type StorePolicy struct {
	Enabled    bool
	Categories []string
}

// PolicyTable maps a normalized store key to its policy.
type PolicyTable map[string]StorePolicy

// DefaultPolicyTable returns the built-in store policies.
func DefaultPolicyTable() PolicyTable {
	all := []string{AllCategories}
	return PolicyTable{
		"alityan":     {Enabled: true, Categories: all},
		"globaliraq":  {Enabled: true, Categories: all},
		"kolshzin":    {Enabled: true, Categories: all},
		"3d-iraq":     {Enabled: true, Categories: all},
		"spniq":       {Enabled: false, Categories: []string{}},
		"jokercenter": {Enabled: true, Categories: all},
	}
}

type storeAlias struct {
	fragments []string
	key       string
}

// Checked in order, so "Global Iraq" is globaliraq, not 3d-iraq.
var storeAliases = []storeAlias{
	{[]string{"alityan"}, "alityan"},
	{[]string{"global"}, "globaliraq"},
	{[]string{"kolshzin"}, "kolshzin"},
	{[]string{"3d", "iraq"}, "3d-iraq"},
	{[]string{"spniq", "spider"}, "spniq"},
	{[]string{"joker"}, "jokercenter"},
}

// NormalizeStore maps a free-form retailer name to a store key.
// Unknown retailers map to their lower-cased name.
func NormalizeStore(retailer string) string {
	lower := strings.ToLower(retailer)
	for _, a := range storeAliases {
		for _, f := range a.fragments {
			if strings.Contains(lower, f) {
				return a.key
			}
		}
	}
	return lower
}

func (t PolicyTable) lookup(retailer string) (string, StorePolicy, bool) {
	store := NormalizeStore(retailer)
	p, ok := t[store]
	return store, p, ok
}

// IsBackgroundRemovalEnabled reports whether the retailer's store
// has an enabled policy.
func (t PolicyTable) IsBackgroundRemovalEnabled(retailer string) bool {
	_, p, ok := t.lookup(retailer)
	return ok && p.Enabled
}

// IsCategoryEnabled reports whether processed images are served
// for category at the retailer's store.
func (t PolicyTable) IsCategoryEnabled(retailer, category string) bool {
	_, p, ok := t.lookup(retailer)
	if !ok || !p.Enabled {
		return false
	}
	return p.covers(strings.ToUpper(category))
}

func (p StorePolicy) covers(category string) bool {
	return slices.Contains(p.Categories, category) ||
		slices.Contains(p.Categories, AllCategories)
}

// Resolve picks the image for p under table.
func Resolve(p domain.Product, table PolicyTable) domain.ImageResult {
	store, policy, ok := table.lookup(p.Retailer)
	category := strings.ToUpper(p.Category)

	if !ok || !policy.Enabled {
		return original(p, fmt.Sprintf("store %q disabled for processing", store))
	}

	if !policy.covers(category) {
		return original(p, fmt.Sprintf("category %q not enabled for %s", category, store))
	}

	if p.ProcessedImage != "" {
		return domain.ImageResult{
			URL:    p.ProcessedImage,
			Type:   domain.ImageProcessed,
			Reason: "background removed image available",
		}
	}

	return original(p, "processed image not available")
}

func original(p domain.Product, reason string) domain.ImageResult {
	url, ok := OriginalURL(p)
	if !ok {
		return domain.ImageResult{
			URL:    url,
			Type:   domain.ImagePlaceholder,
			Reason: reason + "; no original image",
		}
	}
	return domain.ImageResult{URL: url, Type: domain.ImageOriginal, Reason: reason}
}

// OriginalURL returns the scraped image URL, falling back to
// [PlaceholderPath] with ok set to false.
func OriginalURL(p domain.Product) (url string, ok bool) {
	switch {
	case p.ImageURL != "":
		return p.ImageURL, true
	case p.Image.Text != "":
		return p.Image.Text, true
	case p.Image.Src != "":
		return p.Image.Src, true
	}
	return PlaceholderPath, false
}

// A Resolver resolves images against a fixed policy table.
type Resolver struct {
	table PolicyTable
}

func NewResolver(table PolicyTable) Resolver {
	if table == nil {
		table = DefaultPolicyTable()
	}
	return Resolver{table}
}

func (r Resolver) Resolve(p domain.Product) domain.ImageResult {
	return Resolve(p, r.table)
}
