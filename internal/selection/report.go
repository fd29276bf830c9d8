package selection

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrhoge/invoice-renamer/internal/geometry"
)

// DiagnosticHeader starts every diagnostic report
const DiagnosticHeader = "[Diagnostics]"

const (
	maxDiagnosticImages = 3
	sampleLength        = 50
	detailTextLength    = 60
	maxBubbleDetails    = 5
)

// Diagnostic describes why a selection produced nothing: where it was
// mapped, what the page holds there and what a direct render looks like
func Diagnostic(ctx context.Context, page Page, rect geometry.Rect, preview geometry.Size, sel geometry.ViewRect) string {
	lines := []string{
		DiagnosticHeader,
		fmt.Sprintf("Selection: %d,%d,%d,%d", sel.X, sel.Y, sel.W, sel.H),
		fmt.Sprintf("Page rect: %s", rect),
		fmt.Sprintf("Preview size: %.0fx%.0f", preview.W, preview.H),
	}

	images, err := page.Images()
	if err != nil {
		lines = append(lines, "Image info error: "+err.Error())
	} else {
		lines = append(lines, fmt.Sprintf("Images on page: %d", len(images)))
	}

	if img, err := page.Render(ctx, rect, 1); err != nil {
		lines = append(lines, "Direct render error: "+truncate(err.Error(), sampleLength))
	} else {
		b := img.Bounds()
		lines = append(lines, fmt.Sprintf("Direct render size: %dx%d", b.Dx(), b.Dy()))
	}

	for i, img := range images {
		if i >= maxDiagnosticImages {
			break
		}
		if img.BBox.IsEmpty() {
			lines = append(lines, fmt.Sprintf("Image %d: placement unknown", i+1))
			continue
		}
		lines = append(lines, fmt.Sprintf("Image %d: %s (intersects: %t)", i+1, img.BBox, rect.Intersects(img.BBox)))
	}

	spans, err := page.Spans(rect)
	if err != nil {
		lines = append(lines, "Text info error: "+err.Error())
		return strings.Join(lines, "\n")
	}
	var texts []string
	for _, s := range spans {
		texts = append(texts, s.Text)
	}
	text := strings.Join(texts, "\n")
	lines = append(lines, fmt.Sprintf("Text length: %d", len([]rune(text))))
	if strings.TrimSpace(text) != "" {
		lines = append(lines, "Text sample: "+truncate(text, sampleLength))
	}
	return strings.Join(lines, "\n")
}

// IsDiagnostic reports whether text is a diagnostic report
func IsDiagnostic(text string) bool {
	return strings.Contains(text, DiagnosticHeader)
}

// FormatBubble renders an analysis for display. Normal mode shows the
// extracted text or hints; debug mode adds statistics and element details.
func FormatBubble(a Analysis, debug bool) string {
	if debug {
		return formatDebug(a)
	}

	var parts []string
	switch combined := strings.TrimSpace(a.CombinedText); {
	case combined != "" && a.Total > 0 && !IsDiagnostic(combined):
		parts = append(parts, "Extracted text:", "", a.CombinedText)
	case combined != "" && a.Total > 0:
		parts = append(parts,
			"Could not extract text.",
			"",
			"Enable debug mode for details.")
	default:
		parts = append(parts,
			"No text detected.",
			"",
			"Try the following:",
			"  - select the whole image",
			"  - select a larger area",
			"  - enable debug mode for details")
	}

	if a.Total > 0 {
		parts = append(parts, "", fmt.Sprintf("Elements: %d text + %d image", a.Text, a.Image))
		if a.AverageConfidence > 0 {
			parts = append(parts, fmt.Sprintf("Confidence: %.0f%%", a.AverageConfidence*100))
		}
	}
	return strings.Join(parts, "\n")
}

func formatDebug(a Analysis) string {
	parts := []string{
		"Analysis details",
		strings.Repeat("=", 40),
		"Statistics:",
		fmt.Sprintf("  - total elements: %d", a.Total),
		fmt.Sprintf("  - text elements: %d", a.Text),
		fmt.Sprintf("  - image elements: %d", a.Image),
	}
	if a.Errors > 0 {
		parts = append(parts, fmt.Sprintf("  - error/diagnostic elements: %d", a.Errors))
	}
	parts = append(parts, fmt.Sprintf("  - average confidence: %.1f%%", a.AverageConfidence*100), "")

	parts = append(parts, "Result:")
	combined := strings.TrimSpace(a.CombinedText)
	switch {
	case a.Total == 0 || combined == "":
		parts = append(parts, "  no text detected")
	case IsDiagnostic(combined):
		parts = append(parts, "  diagnostics only", a.CombinedText)
	default:
		parts = append(parts, "  text extracted from the selection:", fmt.Sprintf("  '%s'", a.CombinedText))
	}
	parts = append(parts, "")

	if len(a.Details) > 0 {
		parts = append(parts, "Elements:")
		for i, r := range a.Details {
			if i >= maxBubbleDetails {
				break
			}
			parts = append(parts,
				fmt.Sprintf("  %d. [%s] method: %s", i+1, r.Type, method(r)),
				fmt.Sprintf("     text: %s", truncate(r.Text, detailTextLength)),
				fmt.Sprintf("     confidence: %.1f%%", r.Confidence*100),
				fmt.Sprintf("     bbox: (%.1f, %.1f, %.1f, %.1f)", r.BBox.X0, r.BBox.Y0, r.BBox.X1, r.BBox.Y1),
				"")
		}
	}
	return strings.TrimRight(strings.Join(parts, "\n"), "\n")
}

func method(r Result) string {
	switch {
	case r.Type == TypeDiagnostic || IsDiagnostic(r.Text):
		return "diagnostics"
	case r.Type == TypeText:
		return "PDF text"
	case r.Source == SourceRender:
		return "direct rendering"
	case r.Source == SourceEmbedded:
		return "embedded image"
	case r.Source != "":
		return r.Source
	default:
		return "unknown"
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
