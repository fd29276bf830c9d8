package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mrhoge/invoice-renamer/internal/geometry"
)

func TestNormalizeRotation(t *testing.T) {
	tests := map[int]int{0: 0, 90: 90, 180: 180, 270: 270, 360: 0, 450: 90, -90: 270, -180: 180, 45: 0}
	for in, want := range tests {
		assert.Equal(t, want, normalizeRotation(in), "rotation %d", in)
	}
}

func TestRotateSize(t *testing.T) {
	letter := geometry.Size{W: 612, H: 792}
	assert.Equal(t, letter, rotateSize(letter, 0))
	assert.Equal(t, geometry.Size{W: 792, H: 612}, rotateSize(letter, 90))
	assert.Equal(t, letter, rotateSize(letter, 180))
	assert.Equal(t, geometry.Size{W: 792, H: 612}, rotateSize(letter, 270))
}

func TestRotateRect(t *testing.T) {
	size := geometry.Size{W: 600, H: 800}
	// a box near the top left corner of the unrotated page
	r := geometry.Rect{X0: 10, Y0: 20, X1: 110, Y1: 70}

	tests := []struct {
		rot  int
		want geometry.Rect
	}{
		{rot: 0, want: r},
		// top left moves to the top right
		{rot: 90, want: geometry.Rect{X0: 730, Y0: 10, X1: 780, Y1: 110}},
		// to the bottom right
		{rot: 180, want: geometry.Rect{X0: 490, Y0: 730, X1: 590, Y1: 780}},
		// to the bottom left
		{rot: 270, want: geometry.Rect{X0: 20, Y0: 490, X1: 70, Y1: 590}},
	}

	for _, tt := range tests {
		got := rotateRect(r, size, tt.rot)
		assert.Equal(t, tt.want, got, "rotation %d", tt.rot)
		assert.Equal(t, r, unrotateRect(got, rotateSize(size, tt.rot), tt.rot), "round trip %d", tt.rot)
	}
}
