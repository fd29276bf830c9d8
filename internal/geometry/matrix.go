package geometry

import (
	"errors"
	"math"
)

// ErrSingular is returned when inverting a matrix with no inverse
var ErrSingular = errors.New("matrix singular")

// Matrix is an affine transform [a b c d e f] applied to row vectors:
// x' = a*x + c*y + e, y' = b*x + d*y + f.
type Matrix [6]float64

// Point is a position in a 2D coordinate space
type Point struct{ X, Y float64 }

func Identity() Matrix { return Matrix{1, 0, 0, 1, 0, 0} }

func Translate(tx, ty float64) Matrix { return Matrix{1, 0, 0, 1, tx, ty} }

func Scale(sx, sy float64) Matrix { return Matrix{sx, 0, 0, sy, 0, 0} }

// Multiply returns the transform that applies m first and then o
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		m[0]*o[0] + m[1]*o[2],
		m[0]*o[1] + m[1]*o[3],
		m[2]*o[0] + m[3]*o[2],
		m[2]*o[1] + m[3]*o[3],
		m[4]*o[0] + m[5]*o[2] + o[4],
		m[4]*o[1] + m[5]*o[3] + o[5],
	}
}

func (m Matrix) Transform(p Point) Point {
	return Point{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// TransformRect maps both corners of r and returns their bounding box
func (m Matrix) TransformRect(r Rect) Rect {
	a := m.Transform(Point{r.X0, r.Y0})
	b := m.Transform(Point{r.X1, r.Y1})
	c := m.Transform(Point{r.X0, r.Y1})
	d := m.Transform(Point{r.X1, r.Y0})
	return Rect{
		X0: math.Min(math.Min(a.X, b.X), math.Min(c.X, d.X)),
		Y0: math.Min(math.Min(a.Y, b.Y), math.Min(c.Y, d.Y)),
		X1: math.Max(math.Max(a.X, b.X), math.Max(c.X, d.X)),
		Y1: math.Max(math.Max(a.Y, b.Y), math.Max(c.Y, d.Y)),
	}
}

func (m Matrix) Inverse() (Matrix, error) {
	det := m[0]*m[3] - m[1]*m[2]
	if math.Abs(det) < 1e-10 {
		return Matrix{}, ErrSingular
	}
	return Matrix{
		m[3] / det,
		-m[1] / det,
		-m[2] / det,
		m[0] / det,
		(m[2]*m[5] - m[3]*m[4]) / det,
		(m[1]*m[4] - m[0]*m[5]) / det,
	}, nil
}
