package geometry

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func assertRect(t *testing.T, want, got Rect) {
	t.Helper()
	assert.InDelta(t, want.X0, got.X0, eps, "x0")
	assert.InDelta(t, want.Y0, got.Y0, eps, "y0")
	assert.InDelta(t, want.X1, got.X1, eps, "x1")
	assert.InDelta(t, want.Y1, got.Y1, eps, "y1")
}

func TestViewToPage(t *testing.T) {
	tests := []struct {
		name     string
		sel      ViewRect
		page     Size
		zoom     float64
		preview  Size
		want     Rect
		clipped  bool
		fallback bool
	}{
		{
			name:    "same aspect at zoom 1",
			sel:     ViewRect{X: 100, Y: 100, W: 200, H: 100},
			page:    Size{W: 400, H: 300},
			zoom:    1,
			preview: Size{W: 800, H: 600},
			want:    Rect{X0: 50, Y0: 50, X1: 150, Y1: 100},
		},
		{
			name:    "zoom 1.5 undone",
			sel:     ViewRect{X: 150, Y: 150, W: 300, H: 150},
			page:    Size{W: 400, H: 300},
			zoom:    1.5,
			preview: Size{W: 1200, H: 900},
			want:    Rect{X0: 50, Y0: 50, X1: 150, Y1: 100},
		},
		{
			name:    "portrait page letterboxed horizontally",
			sel:     ViewRect{X: 175, Y: 0, W: 450, H: 600},
			page:    Size{W: 600, H: 800},
			zoom:    1,
			preview: Size{W: 800, H: 600},
			want:    Rect{X0: 0, Y0: 0, X1: 600, Y1: 800},
		},
		{
			name:    "wide page letterboxed vertically",
			sel:     ViewRect{X: 0, Y: 150, W: 800, H: 300},
			page:    Size{W: 800, H: 300},
			zoom:    1,
			preview: Size{W: 800, H: 600},
			want:    Rect{X0: 0, Y0: 0, X1: 800, Y1: 300},
		},
		{
			name:    "truncation toward zero",
			sel:     ViewRect{X: 201, Y: 201, W: 401, H: 201},
			page:    Size{W: 400, H: 300},
			zoom:    2,
			preview: Size{W: 1600, H: 1200},
			want:    Rect{X0: 50, Y0: 50, X1: 150, Y1: 100},
		},
		{
			name:    "clipped to page",
			sel:     ViewRect{X: 700, Y: 500, W: 200, H: 200},
			page:    Size{W: 400, H: 300},
			zoom:    1,
			preview: Size{W: 800, H: 600},
			want:    Rect{X0: 350, Y0: 250, X1: 400, Y1: 300},
			clipped: true,
		},
		{
			name:    "selection in letterbox margin clipped at origin",
			sel:     ViewRect{X: 0, Y: 0, W: 275, H: 150},
			page:    Size{W: 600, H: 800},
			zoom:    1,
			preview: Size{W: 800, H: 600},
			want:    Rect{X0: 0, Y0: 0, X1: 100 * 800.0 / 600.0, Y1: 200},
			clipped: true,
		},
		{
			name:     "outside page falls back",
			sel:      ViewRect{X: 900, Y: 0, W: 50, H: 50},
			page:     Size{W: 400, H: 300},
			zoom:     1,
			preview:  Size{W: 800, H: 600},
			want:     FallbackRect,
			clipped:  true,
			fallback: true,
		},
		{
			name:     "zero zoom falls back",
			sel:      ViewRect{X: 10, Y: 10, W: 50, H: 50},
			page:     Size{W: 400, H: 300},
			zoom:     0,
			preview:  Size{W: 800, H: 600},
			want:     FallbackRect,
			fallback: true,
		},
		{
			name:     "empty preview falls back",
			sel:      ViewRect{X: 10, Y: 10, W: 50, H: 50},
			page:     Size{W: 400, H: 300},
			zoom:     1,
			want:     FallbackRect,
			fallback: true,
		},
		{
			name:     "preview smaller than one pixel after zoom falls back",
			sel:      ViewRect{X: 10, Y: 10, W: 50, H: 50},
			page:     Size{W: 400, H: 300},
			zoom:     4,
			preview:  Size{W: 3, H: 3},
			want:     FallbackRect,
			fallback: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := ViewToPage(tt.sel, tt.page, tt.zoom, tt.preview)
			assertRect(t, tt.want, m.Rect)
			assert.Equal(t, tt.clipped, m.Clipped, "clipped")
			assert.Equal(t, tt.fallback, m.Fallback, "fallback")
			if !m.Fallback {
				assert.True(t, PageRect(tt.page).Contains(m.Rect))
			}
		})
	}
}

func TestViewToPage_ZoomInvariance(t *testing.T) {
	page := Size{W: 400, H: 300}
	base := ViewRect{X: 100, Y: 100, W: 200, H: 100}
	preview := Size{W: 800, H: 600}
	want := ViewToPage(base, page, 1, preview).Rect

	for _, zoom := range []float64{0.25, 0.5, 1.25, 2, 3, 4, 5} {
		sel := ViewRect{
			X: int(float64(base.X) * zoom),
			Y: int(float64(base.Y) * zoom),
			W: int(float64(base.W) * zoom),
			H: int(float64(base.H) * zoom),
		}
		scaled := Size{W: preview.W * zoom, H: preview.H * zoom}
		got := ViewToPage(sel, page, zoom, scaled)
		assert.False(t, got.Fallback)
		assertRect(t, want, got.Rect)
	}
}

func TestViewToPage_RecordsIntermediates(t *testing.T) {
	m := ViewToPage(ViewRect{X: 350, Y: 0, W: 900, H: 1200}, Size{W: 600, H: 800}, 2, Size{W: 1600, H: 1200})

	assert.Equal(t, ViewRect{X: 175, Y: 0, W: 450, H: 600}, m.Selection)
	assert.Equal(t, Size{W: 800, H: 600}, m.Preview)
	assert.InDelta(t, 0.75, m.PageAspect, eps)
	assert.InDelta(t, 800.0/600.0, m.PreviewAspect, eps)
	assert.InDelta(t, 175, m.XOffset, eps)
	assert.Zero(t, m.YOffset)

	p := m.Matrix().Transform(Point{X: 175, Y: 600})
	assert.InDelta(t, 0, p.X, eps)
	assert.InDelta(t, 800, p.Y, eps)
}

func TestPageToView_RoundTrip(t *testing.T) {
	page := Size{W: 400, H: 300}
	r := Rect{X0: 50, Y0: 50, X1: 150, Y1: 100}

	tests := []struct {
		zoom    float64
		preview Size
		want    ViewRect
	}{
		{1, Size{W: 800, H: 600}, ViewRect{X: 100, Y: 100, W: 200, H: 100}},
		{2, Size{W: 1600, H: 1200}, ViewRect{X: 200, Y: 200, W: 400, H: 200}},
		{0.5, Size{W: 400, H: 300}, ViewRect{X: 50, Y: 50, W: 100, H: 50}},
	}

	for _, tt := range tests {
		v := PageToView(r, page, tt.zoom, tt.preview)
		assert.Equal(t, tt.want, v)
		assertRect(t, r, ViewToPage(v, page, tt.zoom, tt.preview).Rect)
	}

	assert.Equal(t, ViewRect{}, PageToView(r, page, 0, Size{W: 800, H: 600}))
}

func TestRect(t *testing.T) {
	a := Rect{X0: 0, Y0: 0, X1: 10, Y1: 10}
	b := Rect{X0: 5, Y0: 5, X1: 15, Y1: 15}
	c := Rect{X0: 10, Y0: 0, X1: 20, Y1: 10}

	assert.True(t, a.Intersects(b))
	assert.False(t, a.Intersects(c), "touching edges do not intersect")
	assert.Equal(t, Rect{X0: 5, Y0: 5, X1: 10, Y1: 10}, a.Intersect(b))
	assert.True(t, a.Intersect(c).IsEmpty())
	assert.Equal(t, Rect{X0: 0, Y0: 0, X1: 15, Y1: 15}, a.Union(b))
	assert.Equal(t, a, Rect{}.Union(a))
	assert.True(t, a.Contains(Rect{X0: 1, Y0: 1, X1: 9, Y1: 9}))
	assert.False(t, a.Contains(b))
	assert.Equal(t, Rect{X0: 5, Y0: 5, X1: 10, Y1: 10}, b.Clip(a))
	assert.Equal(t, 10.0, a.Width())
	assert.Equal(t, 10.0, a.Height())
	assert.Equal(t, "(0.00, 0.00, 10.00, 10.00)", a.String())
}

func TestValidSelection(t *testing.T) {
	assert.True(t, ValidSelection(ViewRect{W: 11, H: 11}))
	assert.False(t, ValidSelection(ViewRect{W: 10, H: 50}))
	assert.False(t, ValidSelection(ViewRect{W: 50, H: 10}))
}

func TestPixelRect(t *testing.T) {
	r := Rect{X0: 10.4, Y0: 20.6, X1: 30.2, Y1: 40.9}
	assert.Equal(t, image.Rect(20, 41, 61, 82), PixelRect(r, 2))
	assert.Equal(t, image.Rect(10, 20, 31, 41), PixelRect(r, 1))
}

func TestFitAndDisplaySize(t *testing.T) {
	img := Size{W: 1190, H: 1684}
	viewport := Size{W: 595, H: 1000}

	fit := FitScale(viewport, img)
	assert.InDelta(t, 0.5, fit, eps)

	w, h := DisplaySize(img, viewport, 2)
	assert.Equal(t, 1190, w)
	assert.Equal(t, 1684, h)

	assert.Zero(t, FitScale(Size{}, img))
}

func TestMatrix(t *testing.T) {
	m := Translate(10, 20).Multiply(Scale(2, 3))
	p := m.Transform(Point{X: 1, Y: 1})
	assert.Equal(t, Point{X: 22, Y: 63}, p)

	inv, err := m.Inverse()
	require.NoError(t, err)
	back := inv.Transform(p)
	assert.InDelta(t, 1, back.X, eps)
	assert.InDelta(t, 1, back.Y, eps)

	assert.Equal(t, m, Identity().Multiply(m))

	_, err = Scale(0, 1).Inverse()
	assert.ErrorIs(t, err, ErrSingular)

	flipped := Scale(1, -1).TransformRect(Rect{X0: 0, Y0: 10, X1: 5, Y1: 20})
	assert.Equal(t, Rect{X0: 0, Y0: -20, X1: 5, Y1: -10}, flipped)
}

func TestZoom(t *testing.T) {
	z := NewZoom()
	assert.Equal(t, 100, z.Percent())

	assert.True(t, z.In())
	assert.Equal(t, 1.25, z.Scale)
	for z.In() {
	}
	assert.Equal(t, MaxZoom, z.Scale)
	assert.False(t, z.In())

	z.Reset()
	for z.Out() {
	}
	assert.Equal(t, MinZoom, z.Scale)
	assert.Equal(t, 25, z.Percent())
}

func TestPager(t *testing.T) {
	p := Pager{Total: 3}
	assert.False(t, p.Prev())
	assert.True(t, p.Next())
	assert.True(t, p.Next())
	assert.False(t, p.Next())
	assert.Equal(t, 2, p.Current)
	assert.True(t, p.HasPrev())

	z := NewZoom()
	z.In()
	assert.Equal(t, "3/3 (125%)", p.Label(z))
	assert.Equal(t, "1/1 (100%)", Pager{}.Label(NewZoom()))
}
