package search

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes free text for comparison: lowercase, strip
// characters that are neither alphanumeric nor whitespace, collapse
// whitespace runs, trim ends.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	lastSpace := false
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			lastSpace = true
		}
	}

	return strings.TrimRight(b.String(), " ")
}

// Tokenize splits the normalized form of text into a set of tokens.
// Duplicates collapse; iteration order is unspecified and must not matter,
// since scoring only counts overlaps.
func Tokenize(text string) map[string]struct{} {
	fields := strings.Fields(Normalize(text))
	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		tokens[f] = struct{}{}
	}
	return tokens
}

// overlap counts tokens present in both sets.
func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			n++
		}
	}
	return n
}
