package search

import (
	"regexp"
	"strings"
)

const (
	phraseScore    = 100
	wordScore      = 50
	substringScore = 10
	proximityScore = 25

	// Windows span the query tokens plus this many extra title words.
	proximitySlack = 2
	// Proximity is only rewarded for short queries.
	proximityMaxTokens = 2
)

var whitespace = regexp.MustCompile(`\s+`)

// Score ranks how well title matches query. Higher is better.
// A blank query scores zero.
func Score(title, query string) int {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}
	t := strings.ToLower(title)

	var score int
	if strings.Contains(t, q) {
		score += phraseScore
	}

	tokens := Tokenize(q)
	for _, tok := range tokens {
		switch {
		case matchPattern(`(?i)\b`+regexp.QuoteMeta(tok)+`\b`, t):
			score += wordScore
		case strings.Contains(t, tok):
			score += substringScore
		}
	}

	if len(tokens) <= proximityMaxTokens && hasCloseWindow(whitespace.Split(t, -1), tokens) {
		score += proximityScore
	}
	return score
}

// hasCloseWindow reports whether some run of len(tokens)+proximitySlack
// consecutive words contains every token as a substring of one of its words.
func hasCloseWindow(words, tokens []string) bool {
	for i := range words {
		end := min(i+len(tokens)+proximitySlack, len(words))
		if windowContainsAll(words[i:end], tokens) {
			return true
		}
	}
	return false
}

func windowContainsAll(window, tokens []string) bool {
	for _, tok := range tokens {
		found := false
		for _, w := range window {
			if strings.Contains(w, tok) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
