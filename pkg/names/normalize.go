// Package names resolves proposal authors to CPF taxpayer identifiers using
// the council-member lookup table.
package names

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize cleans an author name for comparison against the lookup table:
// accents are folded, letters are upper-cased, punctuation becomes a space
// and runs of whitespace collapse to one space.
func Normalize(name string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, name)
	if err != nil {
		folded = name
	}

	var builder strings.Builder
	builder.Grow(len(folded))
	pendingSpace := false
	for _, r := range folded {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingSpace = builder.Len() > 0
			continue
		}
		if pendingSpace {
			builder.WriteByte(' ')
			pendingSpace = false
		}
		builder.WriteRune(unicode.ToUpper(r))
	}
	return builder.String()
}

// SplitAuthors splits a comma-separated author field into its names, in order.
// Names are returned as written; empty entries are kept so that callers see
// every position of the original field.
func SplitAuthors(field string) []string {
	return strings.Split(field, ",")
}
