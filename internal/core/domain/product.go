package domain

import "errors"

// ErrProductNotFound is returned when no product has the requested ID.
var ErrProductNotFound = errors.New("product not found")

// DefaultCurrency is assumed for prices without a recognizable currency.
const DefaultCurrency = "IQD"

// DefaultCategory replaces an absent category at ingestion.
const DefaultCategory = "Other"

type (
	// A Product is a normalized catalog item.
	//
	// Price equal to zero means the price is unavailable.
	// CompareAtPrice and DiscountPercentage equal to zero mean absent.
	Product struct {
		ID                 string
		Title              string
		Price              float64
		CompareAtPrice     float64
		DiscountPercentage int
		Retailer           string
		Site               string
		Category           string
		InStock            bool
		URL                string
		ImageURL           string
		Image              ImageField
		ProcessedImage     string
		DetectedCurrency   string
		RawPrice           string
		RawCompareAtPrice  string
	}

	// An ImageField holds a scraped image that is either
	// a plain URL string or an object with a src attribute.
	ImageField struct {
		Text string
		Src  string
	}
)

// HasDiscount reports whether CompareAtPrice is a genuine pre-discount price.
func (p Product) HasDiscount() bool {
	return p.CompareAtPrice > 0 && p.CompareAtPrice > p.Price
}

// SearchText returns the text a free-text query is matched against.
func (p Product) SearchText() string {
	return p.Title + " " + p.Retailer
}
