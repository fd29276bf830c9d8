package textitems

import (
	"strings"

	"golang.org/x/text/width"
)

// ExtractNumeric keeps only the ASCII and fullwidth digits of s and returns
// them as ASCII digits.
func ExtractNumeric(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= '０' && r <= '９':
			b.WriteString(width.Narrow.String(string(r)))
		}
	}
	return b.String()
}
