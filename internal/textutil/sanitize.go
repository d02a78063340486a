package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize applies NFKC normalization and collapses interior whitespace so
// visually identical titles hash and compare identically.
func Normalize(text string) string {
	normalized := norm.NFKC.String(text)
	fields := strings.FieldsFunc(normalized, unicode.IsSpace)
	return strings.Join(fields, " ")
}

// Truncate shortens text to at most limit runes, appending an ellipsis when
// anything was cut. Limit values below 4 return the text unchanged.
func Truncate(text string, limit int) string {
	if limit < 4 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit-3])) + "..."
}
