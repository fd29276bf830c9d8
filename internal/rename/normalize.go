// Package rename turns a user-typed name into a safe file name and moves an
// invoice into the renamed/ and original/ subfolders.
package rename

import "strings"

// reserved characters are replaced by their fullwidth forms so the name stays
// readable on every filesystem
var reserved = map[rune]rune{
	'\\': '＼',
	'/':  '／',
	':':  '：',
	'*':  '＊',
	'?':  '？',
	'<':  '＜',
	'>':  '＞',
	'|':  '｜',
}

// Replacement records one character substituted during normalisation
type Replacement struct {
	From rune `json:"from"`
	To   rune `json:"to"`
}

// NormalizeFilename replaces reserved characters and trims surrounding
// whitespace, then surrounding dots.
func NormalizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if to, ok := reserved[r]; ok {
			b.WriteRune(to)
			continue
		}
		b.WriteRune(r)
	}
	out := strings.TrimSpace(b.String())
	return strings.Trim(out, ".")
}

// Replacements lists the distinct reserved characters found in name, in order
// of first appearance.
func Replacements(name string) []Replacement {
	var out []Replacement
	seen := make(map[rune]bool)
	for _, r := range name {
		to, ok := reserved[r]
		if !ok || seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, Replacement{From: r, To: to})
	}
	return out
}
