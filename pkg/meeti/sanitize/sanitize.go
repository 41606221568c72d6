// Package sanitize normalizes user-supplied text fields before they are
// persisted.
package sanitize

import (
	"strings"
	"unicode"
)

// Clean strips control characters and collapses runs of whitespace into
// single spaces, trimming the ends.
func Clean(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		// Tabs and newlines are both control and space; they collapse,
		// so the space check must come first.
		case unicode.IsSpace(r):
			space = true
		case unicode.IsControl(r):
			// dropped
		default:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
