package price

import (
	"math"
	"strconv"
	"strings"

	"github.com/niksmo/pc-catalog/internal/core/domain"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	usGroupSep = groupSeparator(message.NewPrinter(language.English))
	euGroupSep = groupSeparator(message.NewPrinter(language.German))
)

// groupSeparator returns the thousands separator the printer uses.
func groupSeparator(p *message.Printer) string {
	return strings.Trim(p.Sprintf("%d", 1000), "0123456789")
}

// FormatPrice renders value rounded to cents with locale grouping,
// "1,234.56" for US and "1.234,56" for EU. A zero fraction is omitted.
// Negative and non-finite values render as "0".
func FormatPrice(value float64, locale domain.Locale) string {
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return "0"
	}

	rounded := math.Round(value*100) / 100
	fixed := strconv.FormatFloat(rounded, 'f', 2, 64)
	whole, frac, _ := strings.Cut(fixed, ".")

	groupSep, decimalSep := usGroupSep, "."
	if locale == domain.LocaleEU {
		groupSep, decimalSep = euGroupSep, ","
	}

	grouped := groupDigits(whole, groupSep)

	if frac == "00" {
		return grouped
	}
	return grouped + decimalSep + frac
}

// FormatMoney is [FormatPrice] followed by the currency code,
// IQD when currency is empty.
func FormatMoney(value float64, currency string, locale domain.Locale) string {
	if currency == "" {
		currency = domain.DefaultCurrency
	}
	return FormatPrice(value, locale) + " " + currency
}

// CalculateDiscount returns the whole percent saved, or 0 when there is
// no genuine discount.
func CalculateDiscount(original, sale float64) int {
	if !isDiscount(original, sale) {
		return 0
	}
	return int(math.Round((original - sale) / original * 100))
}

// CalculateSavings returns original minus sale, or 0 when there is
// no genuine discount.
func CalculateSavings(original, sale float64) float64 {
	if !isDiscount(original, sale) {
		return 0
	}
	return original - sale
}

func isDiscount(original, sale float64) bool {
	if math.IsNaN(original) || math.IsNaN(sale) {
		return false
	}
	return original > 0 && sale > 0 && original > sale
}

// groupDigits inserts sep between every three digits from the right.
func groupDigits(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	head := len(digits) % 3
	if head == 0 {
		head = 3
	}
	b.WriteString(digits[:head])
	for i := head; i < len(digits); i += 3 {
		b.WriteString(sep)
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
