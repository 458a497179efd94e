// Package normalize canonicalizes user input before it is stored or compared.
package normalize

import (
	"strings"
	"unicode"

	"github.com/samber/lo"
)

// Email returns a normalized form of an email address suitable for
// storage and comparisons. Normalization trims surrounding whitespace
// and lower-cases the address.
func Email(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// Blank reports whether s has no visible characters.
func Blank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}

// IDs splits a comma separated id list, dropping empty entries and duplicates
// while keeping first-seen order.
func IDs(csv string) []string {
	parts := lo.Map(strings.Split(csv, ","), func(p string, _ int) string {
		return strings.TrimSpace(p)
	})
	return lo.Uniq(lo.Compact(parts))
}
