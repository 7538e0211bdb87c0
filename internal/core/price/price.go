// Package price turns scraped price representations into comparable values
// and renders them back for display.
package price

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/niksmo/pc-catalog/internal/core/domain"
	"github.com/spf13/cast"
)

var (
	nonNumeric    = regexp.MustCompile(`[^\d.,]`)
	numericPrefix = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)`)
)

type currencyPattern struct {
	re   *regexp.Regexp
	code string
}

// Checked in order, first match wins. Empty code means the match itself
// upper-cased.
var currencyPatterns = []currencyPattern{
	{regexp.MustCompile(`(?i)USD`), ""},
	{regexp.MustCompile(`(?i)EUR?`), ""},
	{regexp.MustCompile(`(?i)IQD`), ""},
	{regexp.MustCompile(`د\.ع`), "IQD"},
	{regexp.MustCompile(`\$`), "USD"},
	{regexp.MustCompile(`€`), "EUR"},
	{regexp.MustCompile(`£`), "GBP"},
	{regexp.MustCompile(`¥`), "JPY"},
}

func emptyPrice() domain.PriceData {
	return domain.PriceData{
		NumericValue:   0,
		RawValue:       "0",
		DetectedLocale: domain.LocaleUnknown,
	}
}

// Parse parses a price string such as "1,234.56 IQD" or "1.234,56 €".
func Parse(s string) domain.PriceData {
	if s == "" {
		return emptyPrice()
	}

	cleaned := nonNumeric.ReplaceAllString(s, "")
	locale := detectLocale(cleaned)

	return domain.PriceData{
		NumericValue:   toNumeric(normalize(cleaned, locale)),
		RawValue:       s,
		DetectedLocale: locale,
		Currency:       extractCurrency(s),
	}
}

// FromNumber wraps an already numeric price. NaN becomes zero.
func FromNumber(f float64) domain.PriceData {
	v := f
	if math.IsNaN(v) {
		v = 0
	}
	return domain.PriceData{
		NumericValue:   v,
		RawValue:       strconv.FormatFloat(f, 'f', -1, 64),
		DetectedLocale: domain.LocaleUnknown,
	}
}

// ParseAny accepts a string, any numeric type, json.Number or nil.
// Other values are converted to their string form first.
func ParseAny(v any) domain.PriceData {
	switch v := v.(type) {
	case nil:
		return emptyPrice()
	case string:
		return Parse(v)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return FromNumber(f)
		}
		return Parse(v.String())
	case float64:
		return FromNumber(v)
	case bool:
		if !v {
			return emptyPrice()
		}
	case float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return FromNumber(cast.ToFloat64(v))
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return emptyPrice()
	}
	return Parse(s)
}

// ParseBatch parses every value with [ParseAny], preserving order.
func ParseBatch(vs []any) []domain.PriceData {
	out := make([]domain.PriceData, len(vs))
	for i, v := range vs {
		out[i] = ParseAny(v)
	}
	return out
}

// IsValid reports whether v parses to a positive value
// with a recognized separator convention.
func IsValid(v any) bool {
	pd := ParseAny(v)
	return pd.NumericValue > 0 && pd.DetectedLocale != domain.LocaleUnknown
}

func detectLocale(cleaned string) domain.Locale {
	dot := strings.LastIndexByte(cleaned, '.')
	comma := strings.LastIndexByte(cleaned, ',')

	switch {
	case dot > -1 && comma > -1:
		if dot > comma {
			return domain.LocaleUS
		}
		return domain.LocaleEU
	case dot > -1:
		if len(cleaned[dot+1:]) > 2 {
			return domain.LocaleEU
		}
		return domain.LocaleUS
	case comma > -1:
		if len(cleaned[comma+1:]) > 2 {
			return domain.LocaleUS
		}
		return domain.LocaleEU
	}
	return domain.LocaleUnknown
}

func normalize(cleaned string, locale domain.Locale) string {
	if cleaned == "" {
		return "0"
	}

	switch locale {
	case domain.LocaleUS:
		return strings.ReplaceAll(cleaned, ",", "")
	case domain.LocaleEU:
		if comma := strings.LastIndexByte(cleaned, ','); comma > -1 {
			return commaAsDecimal(cleaned, comma)
		}
		return strings.ReplaceAll(cleaned, ".", "")
	}

	dot := strings.LastIndexByte(cleaned, '.')
	comma := strings.LastIndexByte(cleaned, ',')
	switch {
	case dot > comma:
		return strings.ReplaceAll(cleaned, ",", "")
	case comma > -1:
		return commaAsDecimal(cleaned, comma)
	}
	return strings.NewReplacer(".", "", ",", "").Replace(cleaned)
}

func commaAsDecimal(s string, comma int) string {
	whole := strings.ReplaceAll(s[:comma], ".", "")
	return whole + "." + s[comma+1:]
}

// toNumeric converts the longest numeric prefix of s, so "1.2.3" is 1.2.
func toNumeric(s string) float64 {
	m := numericPrefix.FindString(s)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}

func extractCurrency(s string) string {
	for _, p := range currencyPatterns {
		found := p.re.FindString(s)
		if found == "" {
			continue
		}
		if p.code != "" {
			return p.code
		}
		return strings.ToUpper(found)
	}
	return ""
}
