package catalog

import (
	"strings"
	"unicode"
)

// Clean removes hyphens and whitespace from a scanned string.
func Clean(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Normalize cleans s and lowercases it. Two keys with the same normalized
// form are indistinguishable to a case-insensitive lookup.
func Normalize(s string) string {
	return strings.ToLower(Clean(s))
}
