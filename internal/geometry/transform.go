package geometry

import "math"

// Mapping records every intermediate value of one view-to-page transform so
// callers can log or report how a selection was interpreted.
type Mapping struct {
	Zoom          float64  `json:"zoom"`
	Selection     ViewRect `json:"selection"` // selection with zoom undone
	Preview       Size     `json:"preview"`   // preview size with zoom undone
	PageAspect    float64  `json:"page_aspect"`
	PreviewAspect float64  `json:"preview_aspect"`
	Scale         float64  `json:"scale"` // page points per unzoomed preview pixel
	XOffset       float64  `json:"x_offset"`
	YOffset       float64  `json:"y_offset"`
	Clipped       bool     `json:"clipped"`
	Fallback      bool     `json:"fallback"`
	Rect          Rect     `json:"rect"`
}

// Matrix returns the affine transform from unzoomed preview pixels to page
// points for this mapping.
func (m Mapping) Matrix() Matrix {
	return Translate(-m.XOffset, -m.YOffset).Multiply(Scale(m.Scale, m.Scale))
}

// letterbox fits a page into a preview area preserving aspect ratio and
// returns the scale (page units per preview pixel) and the centring offsets.
func letterbox(page Size, pw, ph float64) (scale, xOff, yOff float64) {
	pageAspect := page.W / page.H
	previewAspect := pw / ph
	if pageAspect > previewAspect {
		scale = page.W / pw
		dispH := page.H / scale
		return scale, 0, (ph - dispH) / 2
	}
	scale = page.H / ph
	dispW := page.W / scale
	return scale, (pw - dispW) / 2, 0
}

// ViewToPage maps a selection made on a preview of the given size at the
// given zoom to a rectangle on the page.
//
// Zoom is undone with truncation toward zero on every input. Coordinates
// falling outside the page are clipped; if nothing of the selection remains
// the FallbackRect is returned with Fallback set.
func ViewToPage(sel ViewRect, page Size, zoom float64, preview Size) Mapping {
	m := Mapping{Zoom: zoom}
	if zoom <= 0 || page.IsZero() || preview.IsZero() {
		m.Fallback = true
		m.Rect = FallbackRect
		return m
	}

	m.Selection = ViewRect{
		X: int(float64(sel.X) / zoom),
		Y: int(float64(sel.Y) / zoom),
		W: int(float64(sel.W) / zoom),
		H: int(float64(sel.H) / zoom),
	}
	pw := float64(int(preview.W / zoom))
	ph := float64(int(preview.H / zoom))
	m.Preview = Size{W: pw, H: ph}
	if pw <= 0 || ph <= 0 {
		m.Fallback = true
		m.Rect = FallbackRect
		return m
	}

	m.PageAspect = page.W / page.H
	m.PreviewAspect = pw / ph
	m.Scale, m.XOffset, m.YOffset = letterbox(page, pw, ph)

	ax, ay := float64(m.Selection.X), float64(m.Selection.Y)
	aw, ah := float64(m.Selection.W), float64(m.Selection.H)
	r := Rect{
		X0: (ax - m.XOffset) * m.Scale,
		Y0: (ay - m.YOffset) * m.Scale,
		X1: (ax + aw - m.XOffset) * m.Scale,
		Y1: (ay + ah - m.YOffset) * m.Scale,
	}

	if r.X0 < 0 || r.Y0 < 0 || r.X1 > page.W || r.Y1 > page.H {
		m.Clipped = true
		r.X0 = math.Max(0, r.X0)
		r.Y0 = math.Max(0, r.Y0)
		r.X1 = math.Min(page.W, r.X1)
		r.Y1 = math.Min(page.H, r.Y1)
	}

	if r.IsEmpty() {
		m.Fallback = true
		r = FallbackRect
	}
	m.Rect = r
	return m
}

// PageToView maps a page rectangle back onto the zoomed preview. It is the
// inverse of ViewToPage without the input truncation and is used to place
// overlays over the preview.
func PageToView(r Rect, page Size, zoom float64, preview Size) ViewRect {
	if zoom <= 0 || page.IsZero() || preview.IsZero() {
		return ViewRect{}
	}
	pw, ph := preview.W/zoom, preview.H/zoom
	scale, xOff, yOff := letterbox(page, pw, ph)

	toPage := Scale(1/zoom, 1/zoom).
		Multiply(Translate(-xOff, -yOff)).
		Multiply(Scale(scale, scale))
	toView, err := toPage.Inverse()
	if err != nil {
		return ViewRect{}
	}

	v := toView.TransformRect(r)
	x0, y0 := math.Round(v.X0), math.Round(v.Y0)
	x1, y1 := math.Round(v.X1), math.Round(v.Y1)
	return ViewRect{X: int(x0), Y: int(y0), W: int(x1 - x0), H: int(y1 - y0)}
}

// FitScale returns the factor that fits an image inside a viewport while
// preserving its aspect ratio.
func FitScale(viewport, img Size) float64 {
	if viewport.IsZero() || img.IsZero() {
		return 0
	}
	return math.Min(viewport.W/img.W, viewport.H/img.H)
}

// DisplaySize returns the on-screen size of an image fitted to the viewport
// and then zoomed.
func DisplaySize(img, viewport Size, zoom float64) (w, h int) {
	final := FitScale(viewport, img) * zoom
	return int(img.W * final), int(img.H * final)
}
