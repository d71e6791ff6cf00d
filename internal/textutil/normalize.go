// Package textutil provides the text normalization shared by keyword
// matching and refreshment classification.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize removes diacritical marks: the string is decomposed into base
// characters plus combining marks and the marks are dropped. Idempotent;
// case and whitespace are left untouched.
func Normalize(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}

// Fold lower-cases s for case-insensitive matching.
func Fold(s string) string {
	return strings.ToLower(s)
}

// CollapseWhitespace replaces every run of whitespace with a single space
// and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
