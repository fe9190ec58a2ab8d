package assistant

import "strings"

// Normalize lowercases ASCII letters, trims surrounding whitespace and
// collapses internal whitespace runs to a single space. Digits, hyphens
// and commas are kept intact because the date parser needs them.
// Normalize is idempotent.
func Normalize(text string) string {
	lowered := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, text)
	return strings.Join(strings.Fields(lowered), " ")
}
