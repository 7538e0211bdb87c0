package domain

// Locale is a thousands/decimal separator convention.
type Locale string

const (
	LocaleUS      Locale = "US"
	LocaleEU      Locale = "EU"
	LocaleUnknown Locale = "UNKNOWN"
)

// PriceData is a parsed price. It is never stored on a [Product].
type PriceData struct {
	NumericValue   float64
	RawValue       string
	DetectedLocale Locale
	Currency       string
}
