package pdf

import "github.com/mrhoge/invoice-renamer/internal/geometry"

// normalizeRotation maps a /Rotate value onto 0, 90, 180 or 270
func normalizeRotation(rot int) int {
	rot %= 360
	if rot < 0 {
		rot += 360
	}
	return rot / 90 * 90
}

// rotateSize returns size as seen after rotating by rot degrees
func rotateSize(size geometry.Size, rot int) geometry.Size {
	if rot%180 != 0 {
		return geometry.Size{W: size.H, H: size.W}
	}
	return size
}

// rotateRect turns r, given in top-left coordinates of a page of the given
// size, clockwise by rot degrees into the coordinates of the rotated page
func rotateRect(r geometry.Rect, size geometry.Size, rot int) geometry.Rect {
	switch rot {
	case 90:
		return geometry.Rect{X0: size.H - r.Y1, Y0: r.X0, X1: size.H - r.Y0, Y1: r.X1}
	case 180:
		return geometry.Rect{X0: size.W - r.X1, Y0: size.H - r.Y1, X1: size.W - r.X0, Y1: size.H - r.Y0}
	case 270:
		return geometry.Rect{X0: r.Y0, Y0: size.W - r.X1, X1: r.Y1, Y1: size.W - r.X0}
	default:
		return r
	}
}

// unrotateRect maps r from the rotated page back onto the unrotated one
func unrotateRect(r geometry.Rect, rotated geometry.Size, rot int) geometry.Rect {
	return rotateRect(r, rotated, (360-rot)%360)
}
