package pdf

import (
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrhoge/invoice-renamer/internal/geometry"
)

func TestToGlyphs_FlipsToTopLeft(t *testing.T) {
	page := geometry.Size{W: 600, H: 800}
	texts := []pdf.Text{
		{Font: "F1", FontSize: 10, X: 100, Y: 700, W: 6, S: "A"},
		{Font: "F1", FontSize: 10, X: 106, Y: 700, W: 6, S: ""},
	}

	glyphs := toGlyphs(texts, geometry.Rect{X1: 600, Y1: 800}, page)
	require.Len(t, glyphs, 1)
	assert.Equal(t, geometry.Rect{X0: 100, Y0: 90, X1: 106, Y1: 100}, glyphs[0].box)
}

func TestToGlyphs_MediaBoxOffset(t *testing.T) {
	page := geometry.Size{W: 600, H: 800}
	box := geometry.Rect{X0: 50, Y0: 100, X1: 650, Y1: 900}
	texts := []pdf.Text{{FontSize: 12, X: 150, Y: 800, W: 7, S: "x"}}

	g := toGlyphs(texts, box, page)[0]
	assert.InDelta(t, 100, g.box.X0, 1e-9)
	assert.InDelta(t, 100, g.box.Y1, 1e-9)
	assert.InDelta(t, 88, g.box.Y0, 1e-9)
}

func TestToGlyphs_ZeroWidthCoreFont(t *testing.T) {
	page := geometry.Size{W: 600, H: 800}
	// without /Widths every glyph of a string reports the string origin
	texts := []pdf.Text{
		{Font: "Helvetica", FontSize: 12, X: 100, Y: 700, S: "N"},
		{Font: "Helvetica", FontSize: 12, X: 100, Y: 700, S: "o"},
		{Font: "Helvetica", FontSize: 12, X: 300, Y: 700, S: "T"},
		{Font: "Helvetica", FontSize: 12, X: 300, Y: 680, S: "T"},
	}

	glyphs := toGlyphs(texts, geometry.Rect{X1: 600, Y1: 800}, page)
	require.Len(t, glyphs, 4)
	// N is 722 and o 556 units wide
	assert.InDelta(t, 100, glyphs[0].box.X0, 1e-9)
	assert.InDelta(t, 108.664, glyphs[0].box.X1, 1e-9)
	assert.InDelta(t, 108.664, glyphs[1].box.X0, 1e-9)
	assert.InDelta(t, 115.336, glyphs[1].box.X1, 1e-9)
	// a new text position starts over
	assert.InDelta(t, 300, glyphs[2].box.X0, 1e-9)
	assert.InDelta(t, 307.332, glyphs[2].box.X1, 1e-9)
	assert.InDelta(t, 300, glyphs[3].box.X0, 1e-9)
}

func TestToGlyphs_ZeroWidthOtherFont(t *testing.T) {
	page := geometry.Size{W: 600, H: 800}
	texts := []pdf.Text{
		{Font: "MS-Mincho", FontSize: 10, X: 50, Y: 700, S: "請"},
		{Font: "MS-Mincho", FontSize: 10, X: 50, Y: 700, S: "A"},
		{Font: "MS-Mincho", FontSize: 10, X: 50, Y: 700, S: "求"},
		{Font: "F2", FontSize: 10, X: 200, Y: 700, W: 4, S: "b"},
	}

	glyphs := toGlyphs(texts, geometry.Rect{X1: 600, Y1: 800}, page)
	require.Len(t, glyphs, 4)
	// wide runes take a full em, others half
	assert.Equal(t, geometry.Rect{X0: 50, Y0: 90, X1: 60, Y1: 100}, glyphs[0].box)
	assert.Equal(t, geometry.Rect{X0: 60, Y0: 90, X1: 65, Y1: 100}, glyphs[1].box)
	assert.Equal(t, geometry.Rect{X0: 65, Y0: 90, X1: 75, Y1: 100}, glyphs[2].box)
	assert.Equal(t, geometry.Rect{X0: 200, Y0: 90, X1: 204, Y1: 100}, glyphs[3].box)
}

func TestGlyphAdvance(t *testing.T) {
	assert.InDelta(t, 6.672, glyphAdvance(pdf.Text{Font: "Helvetica", FontSize: 12, S: "0"}), 1e-9)
	assert.InDelta(t, 7.2, glyphAdvance(pdf.Text{Font: "Courier", FontSize: 12, S: "i"}), 1e-9)
	assert.InDelta(t, 12, glyphAdvance(pdf.Text{Font: "Unknown", FontSize: 12, S: "円"}), 1e-9)
	assert.InDelta(t, 6, glyphAdvance(pdf.Text{Font: "Unknown", FontSize: 12, S: "x"}), 1e-9)
}

func glyphAt(s string, x, baseline, size, w float64) glyph {
	return glyph{
		text: s,
		size: size,
		box:  geometry.Rect{X0: x, Y0: baseline - size, X1: x + w, Y1: baseline},
	}
}

func TestMergeGlyphs(t *testing.T) {
	tests := []struct {
		name   string
		glyphs []glyph
		want   []string
	}{
		{
			name: "adjacent glyphs form one span",
			glyphs: []glyph{
				glyphAt("請", 10, 100, 10, 10),
				glyphAt("求", 20, 100, 10, 10),
				glyphAt("書", 30, 100, 10, 10),
			},
			want: []string{"請求書"},
		},
		{
			name: "wide gap splits",
			glyphs: []glyph{
				glyphAt("A", 10, 100, 10, 6),
				glyphAt("B", 50, 100, 10, 6),
			},
			want: []string{"A", "B"},
		},
		{
			name: "small gap within ratio joins",
			glyphs: []glyph{
				glyphAt("A", 10, 100, 10, 6),
				glyphAt("B", 18.5, 100, 10, 6),
			},
			want: []string{"AB"},
		},
		{
			name: "different baseline splits",
			glyphs: []glyph{
				glyphAt("A", 10, 100, 10, 6),
				glyphAt("B", 16, 120, 10, 6),
			},
			want: []string{"A", "B"},
		},
		{
			name: "different size splits",
			glyphs: []glyph{
				glyphAt("A", 10, 100, 10, 6),
				glyphAt("B", 16, 100, 14, 6),
			},
			want: []string{"A", "B"},
		},
		{
			name: "whitespace only spans are dropped",
			glyphs: []glyph{
				glyphAt(" ", 10, 100, 10, 3),
				glyphAt("X", 100, 100, 10, 6),
				glyphAt(" ", 106, 100, 10, 3),
			},
			want: []string{"X"},
		},
		{
			name:   "no glyphs",
			glyphs: nil,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spans := mergeGlyphs(tt.glyphs)
			var got []string
			for _, s := range spans {
				got = append(got, s.Text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMergeGlyphs_BBoxCoversGlyphs(t *testing.T) {
	spans := mergeGlyphs([]glyph{
		glyphAt("1", 10, 100, 10, 5),
		glyphAt("2", 15, 100, 10, 5),
		glyphAt("3", 20, 100, 10, 5),
	})
	require.Len(t, spans, 1)
	assert.Equal(t, geometry.Rect{X0: 10, Y0: 90, X1: 25, Y1: 100}, spans[0].BBox)
	assert.Equal(t, 10.0, spans[0].FontSize)
}

func TestClipGlyphs_UsesCentre(t *testing.T) {
	glyphs := []glyph{
		glyphAt("in", 10, 20, 10, 10),   // centre (15, 15)
		glyphAt("edge", 45, 20, 10, 10), // centre (50, 15)
		glyphAt("out", 48, 20, 10, 10),  // centre (53, 15)
	}
	clip := geometry.Rect{X0: 0, Y0: 0, X1: 50, Y1: 50}

	got := clipGlyphs(glyphs, clip)
	require.Len(t, got, 2)
	assert.Equal(t, "in", got[0].text)
	assert.Equal(t, "edge", got[1].text)
}

func TestJoinLines(t *testing.T) {
	spans := []Span{
		{Text: "合計", BBox: geometry.Rect{X0: 10, Y0: 190, X1: 30, Y1: 200}},
		{Text: "請求書", BBox: geometry.Rect{X0: 10, Y0: 40, X1: 40, Y1: 50}},
		{Text: "¥1,000", BBox: geometry.Rect{X0: 60, Y0: 191, X1: 90, Y1: 201}},
		{Text: "No.123", BBox: geometry.Rect{X0: 50, Y0: 40, X1: 80, Y1: 50}},
	}

	assert.Equal(t, "請求書 No.123\n合計 ¥1,000", joinLines(spans))
	assert.Empty(t, joinLines(nil))
}

func TestToTopLeft(t *testing.T) {
	page := geometry.Size{W: 600, H: 800}
	media := geometry.Rect{X1: 600, Y1: 800}
	// image drawn 200x100 at (50, 600) in user space
	got := toTopLeft(geometry.Rect{X0: 50, Y0: 600, X1: 250, Y1: 700}, media, page)
	assert.Equal(t, geometry.Rect{X0: 50, Y0: 100, X1: 250, Y1: 200}, got)
}

func TestCTMWalker_ImageBox(t *testing.T) {
	w := &ctmWalker{ctm: geometry.Identity()}
	w.ctm = geometry.Matrix{200, 0, 0, 100, 50, 600}.Multiply(w.ctm)

	assert.Equal(t, geometry.Rect{X0: 50, Y0: 600, X1: 250, Y1: 700}, w.imageBox())
}
