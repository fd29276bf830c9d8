package geometry

import (
	"fmt"
	"math"
)

const (
	MinZoom     = 0.25
	MaxZoom     = 5.0
	ZoomStep    = 0.25
	DefaultZoom = 1.0
)

// Zoom is the preview zoom state. The zero value is not usable; use NewZoom.
type Zoom struct {
	Scale float64 `json:"scale"`
}

func NewZoom() Zoom {
	return Zoom{Scale: DefaultZoom}
}

// In increases the zoom by one step, up to MaxZoom. It reports whether the
// scale changed.
func (z *Zoom) In() bool {
	if z.Scale >= MaxZoom {
		return false
	}
	z.Scale = math.Min(z.Scale+ZoomStep, MaxZoom)
	return true
}

// Out decreases the zoom by one step, down to MinZoom
func (z *Zoom) Out() bool {
	if z.Scale <= MinZoom {
		return false
	}
	z.Scale = math.Max(z.Scale-ZoomStep, MinZoom)
	return true
}

func (z *Zoom) Reset() {
	z.Scale = DefaultZoom
}

// Percent returns the zoom as a truncated percentage
func (z Zoom) Percent() int {
	return int(z.Scale * 100)
}

// Pager tracks the current page of a document. Current is zero-based.
type Pager struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

func (p Pager) HasNext() bool { return p.Current < p.Total-1 }
func (p Pager) HasPrev() bool { return p.Current > 0 }

// Next advances one page and reports whether it moved
func (p *Pager) Next() bool {
	if !p.HasNext() {
		return false
	}
	p.Current++
	return true
}

// Prev goes back one page and reports whether it moved
func (p *Pager) Prev() bool {
	if !p.HasPrev() {
		return false
	}
	p.Current--
	return true
}

// Label renders the page indicator shown next to the preview
func (p Pager) Label(z Zoom) string {
	total := p.Total
	if total < 1 {
		total = 1
	}
	return fmt.Sprintf("%d/%d (%d%%)", p.Current+1, total, z.Percent())
}
