// Package geometry maps selections made on a zoomed page preview to PDF page
// coordinates and to raster pixels.
//
// Page space has its origin at the top-left corner of the page, y grows
// downward and the unit is the PDF point. View space is the integer pixel
// grid of the preview widget at the current zoom.
package geometry

import (
	"fmt"
	"image"
	"math"
)

// Size is a width/height pair
type Size struct {
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// IsZero reports whether either dimension is non-positive
func (s Size) IsZero() bool {
	return s.W <= 0 || s.H <= 0
}

// ViewRect is an integer rectangle in preview widget coordinates
type ViewRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"width"`
	H int `json:"height"`
}

// Rect is a rectangle in page space
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// FallbackRect is returned when a selection cannot be mapped onto the page
var FallbackRect = Rect{X0: 10, Y0: 10, X1: 50, Y1: 50}

// PageRect returns the full page rectangle for a page size
func PageRect(page Size) Rect {
	return Rect{X1: page.W, Y1: page.H}
}

func (r Rect) Width() float64  { return r.X1 - r.X0 }
func (r Rect) Height() float64 { return r.Y1 - r.Y0 }

// IsEmpty reports whether the rectangle encloses no area
func (r Rect) IsEmpty() bool {
	return r.X1 <= r.X0 || r.Y1 <= r.Y0
}

// Intersects reports whether r and o share a non-empty area
func (r Rect) Intersects(o Rect) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return false
	}
	return r.X0 < o.X1 && o.X0 < r.X1 && r.Y0 < o.Y1 && o.Y0 < r.Y1
}

// Intersect returns the overlap of r and o. The result may be empty.
func (r Rect) Intersect(o Rect) Rect {
	return Rect{
		X0: math.Max(r.X0, o.X0),
		Y0: math.Max(r.Y0, o.Y0),
		X1: math.Min(r.X1, o.X1),
		Y1: math.Min(r.Y1, o.Y1),
	}
}

// Contains reports whether o lies entirely inside r
func (r Rect) Contains(o Rect) bool {
	return o.X0 >= r.X0 && o.Y0 >= r.Y0 && o.X1 <= r.X1 && o.Y1 <= r.Y1
}

// Clip restricts r to bounds
func (r Rect) Clip(bounds Rect) Rect {
	return r.Intersect(bounds)
}

// Union returns the smallest rectangle enclosing r and o
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	return Rect{
		X0: math.Min(r.X0, o.X0),
		Y0: math.Min(r.Y0, o.Y0),
		X1: math.Max(r.X1, o.X1),
		Y1: math.Max(r.Y1, o.Y1),
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f, %.2f)", r.X0, r.Y0, r.X1, r.Y1)
}

func (v ViewRect) String() string {
	return fmt.Sprintf("(%d, %d, %dx%d)", v.X, v.Y, v.W, v.H)
}

// ValidSelection reports whether a drag is large enough to analyze
func ValidSelection(v ViewRect) bool {
	return v.W > 10 && v.H > 10
}

// PixelRect converts a page rectangle to raster pixels at the given render
// scale. The result covers every pixel the rectangle touches.
func PixelRect(r Rect, scale float64) image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X0*scale)),
		int(math.Floor(r.Y0*scale)),
		int(math.Ceil(r.X1*scale)),
		int(math.Ceil(r.Y1*scale)),
	)
}
