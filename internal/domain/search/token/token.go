package token

import (
	"strings"
	"unicode"
)

// Tokenize normalizes free text into an ordered list of lowercase word tokens.
// Letters, digits, underscore and hyphen are word characters; every maximal run
// of anything else separates tokens. Total over any input: punctuation-only or
// empty text yields an empty (zero-length) sequence, never [""].
func Tokenize(text string) []string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Fields(b.String())
}

// Join renders a token sequence back to the canonical space-joined form.
func Join(tokens []string) string {
	return strings.Join(tokens, " ")
}

// Set builds a membership set over a token sequence.
func Set(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
