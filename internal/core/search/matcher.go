// Package search decides whether a product satisfies a free-text query
// and how well its title matches it.
package search

import (
	"regexp"
	"strings"
)

var (
	qualifierGap = regexp.MustCompile(`(?i)(\w+)\s+(xt|ti|super|pro|max|plus)(\b|$)`)
	brandGap     = regexp.MustCompile(`(?i)(rtx|gtx|rx)\s+(\d+)`)
)

type input struct {
	query  string
	text   string
	tokens []string
}

// A strategy reports whether the lower-cased text satisfies the query.
type strategy func(input) bool

// Tried in order, the first success wins.
var strategies = []strategy{
	exactSubstring,
	joinedSubstring,
	singleTokenBoundary,
	allTokens,
}

// Matches reports whether haystack satisfies query.
// A blank query matches everything.
func Matches(query, haystack string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}

	in := input{
		query:  q,
		text:   strings.ToLower(haystack),
		tokens: Tokenize(q),
	}

	for _, s := range strategies {
		if s(in) {
			return true
		}
	}
	return false
}

// Tokenize splits s on whitespace, dropping empty tokens.
func Tokenize(s string) []string {
	return strings.Fields(s)
}

// JoinModelTokens closes the gap in model names, so
// "7800 XT" becomes "7800XT" and "RTX 4060" becomes "RTX4060".
func JoinModelTokens(s string) string {
	s = qualifierGap.ReplaceAllString(s, "${1}${2}${3}")
	return brandGap.ReplaceAllString(s, "${1}${2}")
}

func exactSubstring(in input) bool {
	return strings.Contains(in.text, in.query)
}

func joinedSubstring(in input) bool {
	return strings.Contains(JoinModelTokens(in.text), JoinModelTokens(in.query))
}

func singleTokenBoundary(in input) bool {
	if len(in.tokens) != 1 {
		return false
	}
	tok := regexp.QuoteMeta(in.tokens[0])

	return matchPattern(`(?i)\b`+tok+`\b`, in.text) ||
		matchPattern(`(?i)(^|[^a-z0-9])`+tok+`([^a-z0-9]|$)`, in.text)
}

// allTokens is plain containment, so "ram" is found inside "cream".
func allTokens(in input) bool {
	for _, tok := range in.tokens {
		if !strings.Contains(in.text, tok) {
			return false
		}
	}
	return true
}

func matchPattern(pattern, s string) bool {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}
