package pdf

import (
	"context"
	"fmt"
	"image"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/font"
	"golang.org/x/text/width"

	"github.com/mrhoge/invoice-renamer/internal/geometry"
)

// glyphs whose gap to the previous glyph exceeds this share of the font size
// start a new span
const spanGapRatio = 0.3

// baselines closer than this are treated as the same line
const lineTolerance = 2.0

// Page is one page of a Document
type Page struct {
	doc   *Document
	index int
	size  geometry.Size
	rot   int
}

// Index returns the zero-based page index
func (p *Page) Index() int { return p.index }

// Size returns the displayed page size in points
func (p *Page) Size() geometry.Size { return p.size }

// Rotation returns the page rotation in degrees clockwise
func (p *Page) Rotation() int { return p.rot }

// mediaSize is the page size before rotation, the space content streams
// draw in
func (p *Page) mediaSize() geometry.Size { return rotateSize(p.size, p.rot) }

// Render rasterises clip at scale; an empty clip renders the whole page
func (p *Page) Render(ctx context.Context, clip geometry.Rect, scale float64) (image.Image, error) {
	p.doc.mu.Lock()
	r, closed := p.doc.renderer, p.doc.closed
	p.doc.mu.Unlock()
	if closed || r == nil {
		return nil, fmt.Errorf("render page %d: document is closed", p.index+1)
	}
	return r.Render(ctx, p.index, clip, scale)
}

// Spans returns the text runs whose glyph centres fall inside clip, in
// content order. clip and the returned boxes are in displayed page
// coordinates; an empty clip selects the whole page.
func (p *Page) Spans(clip geometry.Rect) (spans []Span, err error) {
	reader := p.doc.textReader()
	if reader == nil {
		return nil, nil
	}

	defer func() {
		if rec := recover(); rec != nil {
			spans, err = nil, fmt.Errorf("page %d text: %v", p.index+1, rec)
		}
	}()

	page := reader.Page(p.index + 1)
	if page.V.IsNull() {
		return nil, nil
	}
	media := p.mediaSize()
	box := mediaBox(page.V, media)
	glyphs := toGlyphs(page.Content().Text, box, media)
	if !clip.IsEmpty() {
		glyphs = clipGlyphs(glyphs, unrotateRect(clip, p.size, p.rot))
	}
	spans = mergeGlyphs(glyphs)
	for i := range spans {
		spans[i].BBox = rotateRect(spans[i].BBox, media, p.rot)
	}
	return spans, nil
}

// Text returns the text inside clip with spans on one baseline joined by a
// space and lines joined by newlines
func (p *Page) Text(clip geometry.Rect) (string, error) {
	spans, err := p.Spans(clip)
	if err != nil {
		return "", err
	}
	return joinLines(spans), nil
}

type glyph struct {
	text string
	font string
	size float64
	box  geometry.Rect
}

// toGlyphs converts text positions from PDF user space (origin bottom-left
// of the media box) to top-left page coordinates.
//
// Fonts without a /Widths array report zero widths, and the text matrix then
// never advances within a string, so every glyph of the string starts at the
// same x. Such glyphs get a width from the font metrics and are laid out one
// after the other.
func toGlyphs(texts []pdf.Text, box geometry.Rect, page geometry.Size) []glyph {
	h := page.H
	if h <= 0 {
		h = box.Height()
	}
	glyphs := make([]glyph, 0, len(texts))

	var prev pdf.Text
	var prevW, shift float64
	for _, t := range texts {
		if t.S == "" {
			continue
		}
		w := t.W
		if w == 0 {
			w = glyphAdvance(t)
			if prevW > 0 && t.Y == prev.Y && t.Font == prev.Font && math.Abs(t.X-prev.X) < prevW {
				shift += prevW
			} else {
				shift = 0
			}
			prev, prevW = t, w
		} else {
			prevW, shift = 0, 0
		}

		baseline := h - (t.Y - box.Y0)
		x := t.X - box.X0 + shift
		glyphs = append(glyphs, glyph{
			text: t.S,
			font: t.Font,
			size: t.FontSize,
			box: geometry.Rect{
				X0: x,
				Y0: baseline - t.FontSize,
				X1: x + w,
				Y1: baseline,
			},
		})
	}
	return glyphs
}

// glyphAdvance estimates the width of t from the standard 14 font metrics,
// or from the East Asian width of each rune for other fonts
func glyphAdvance(t pdf.Text) float64 {
	var units float64
	core := font.IsCoreFont(t.Font)
	for _, r := range t.S {
		switch {
		case core:
			units += float64(font.CharWidth(t.Font, r))
		case isWide(r):
			units += 1000
		default:
			units += 500
		}
	}
	return units / 1000 * t.FontSize
}

func isWide(r rune) bool {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return true
	}
	return false
}

func clipGlyphs(glyphs []glyph, clip geometry.Rect) []glyph {
	out := glyphs[:0:0]
	for _, g := range glyphs {
		cx := (g.box.X0 + g.box.X1) / 2
		cy := (g.box.Y0 + g.box.Y1) / 2
		if cx >= clip.X0 && cx <= clip.X1 && cy >= clip.Y0 && cy <= clip.Y1 {
			out = append(out, g)
		}
	}
	return out
}

// mergeGlyphs joins consecutive glyphs sharing a baseline and font size into
// spans. Empty spans are dropped and span text is trimmed.
func mergeGlyphs(glyphs []glyph) []Span {
	var spans []Span
	var cur *Span
	var sb strings.Builder

	flush := func() {
		if cur == nil {
			return
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			cur.Text = text
			spans = append(spans, *cur)
		}
		cur = nil
		sb.Reset()
	}

	for _, g := range glyphs {
		if cur != nil && continues(*cur, g) {
			sb.WriteString(g.text)
			cur.BBox = cur.BBox.Union(g.box)
			continue
		}
		flush()
		cur = &Span{BBox: g.box, Font: g.font, FontSize: g.size}
		sb.WriteString(g.text)
	}
	flush()
	return spans
}

func continues(s Span, g glyph) bool {
	if math.Abs(s.FontSize-g.size) > 0.01 {
		return false
	}
	if math.Abs(s.BBox.Y1-g.box.Y1) > 0.5 {
		return false
	}
	gap := g.box.X0 - s.BBox.X1
	return gap <= g.size*spanGapRatio && gap >= -g.size
}

// joinLines groups spans by baseline, top to bottom and left to right
func joinLines(spans []Span) string {
	if len(spans) == 0 {
		return ""
	}
	sorted := append([]Span(nil), spans...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if math.Abs(sorted[i].BBox.Y1-sorted[j].BBox.Y1) > lineTolerance {
			return sorted[i].BBox.Y1 < sorted[j].BBox.Y1
		}
		return sorted[i].BBox.X0 < sorted[j].BBox.X0
	})

	var lines []string
	var line []string
	baseline := sorted[0].BBox.Y1
	for _, s := range sorted {
		if math.Abs(s.BBox.Y1-baseline) > lineTolerance {
			lines = append(lines, strings.Join(line, " "))
			line = nil
			baseline = s.BBox.Y1
		}
		line = append(line, s.Text)
	}
	lines = append(lines, strings.Join(line, " "))
	return strings.Join(lines, "\n")
}

// mediaBox returns the page's media box in user space, following inherited
// values up the page tree
func mediaBox(v pdf.Value, size geometry.Size) geometry.Rect {
	for node := v; !node.IsNull(); node = node.Key("Parent") {
		mb := node.Key("MediaBox")
		if mb.Kind() == pdf.Array && mb.Len() == 4 {
			r := geometry.Rect{
				X0: math.Min(mb.Index(0).Float64(), mb.Index(2).Float64()),
				Y0: math.Min(mb.Index(1).Float64(), mb.Index(3).Float64()),
				X1: math.Max(mb.Index(0).Float64(), mb.Index(2).Float64()),
				Y1: math.Max(mb.Index(1).Float64(), mb.Index(3).Float64()),
			}
			if !r.IsEmpty() {
				return r
			}
		}
	}
	return geometry.PageRect(size)
}
