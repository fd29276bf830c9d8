package selection

import (
	"math"
	"sort"
	"strings"
)

// DefaultTolerance groups elements whose top edges are this close into one
// line when sorting
const DefaultTolerance = 2.0

// NoElementsText is the combined text of an empty analysis
const NoElementsText = "no elements found in selection"

// Analysis summarises the results of one selection
type Analysis struct {
	Total             int      `json:"total_elements"`
	Text              int      `json:"text_elements"`
	Image             int      `json:"image_elements"`
	Errors            int      `json:"error_elements"`
	CombinedText      string   `json:"combined_text"`
	AverageConfidence float64  `json:"average_confidence"`
	Details           []Result `json:"details,omitempty"`
}

// SortByReadingOrder orders results top to bottom and left to right. Top
// edges are snapped to multiples of tol so slightly misaligned glyphs on one
// line sort by x. ReadingOrder is set to the final index.
func SortByReadingOrder(results []Result, tol float64) []Result {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	line := func(r Result) float64 {
		return math.RoundToEven(r.BBox.Y0/tol) * tol
	}

	sorted := append([]Result(nil), results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		li, lj := line(sorted[i]), line(sorted[j])
		if li != lj {
			return li < lj
		}
		return sorted[i].BBox.X0 < sorted[j].BBox.X0
	})
	for i := range sorted {
		sorted[i].ReadingOrder = i
	}
	return sorted
}

// Combine joins the trimmed non-empty texts with single spaces
func Combine(results []Result) string {
	var parts []string
	for _, r := range results {
		if text := strings.TrimSpace(r.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// Summarize counts results by type and averages their confidence
func Summarize(results []Result) Analysis {
	if len(results) == 0 {
		return Analysis{CombinedText: NoElementsText}
	}

	a := Analysis{
		Total:        len(results),
		CombinedText: Combine(results),
		Details:      results,
	}
	var sum float64
	for _, r := range results {
		switch r.Type {
		case TypeText:
			a.Text++
		case TypeImage:
			a.Image++
		case TypeError, TypeUnknown, TypeDiagnostic:
			a.Errors++
		}
		sum += r.Confidence
	}
	a.AverageConfidence = sum / float64(len(results))
	return a
}

// AddLines appends each trimmed non-empty line of text that list does not
// already hold
func AddLines(list []string, text string) []string {
	seen := make(map[string]bool, len(list))
	for _, item := range list {
		seen[item] = true
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		list = append(list, line)
	}
	return list
}
