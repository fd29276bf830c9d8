package pdf

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrhoge/invoice-renamer/internal/geometry"
)

func TestCrop(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	img.Set(21, 11, color.RGBA{R: 255, A: 255})

	got, err := crop(img, geometry.Rect{X0: 10.5, Y0: 5.5, X1: 20, Y1: 10}, 2)
	require.NoError(t, err)
	// floor(21), floor(11), ceil(40), ceil(20)
	assert.Equal(t, image.Pt(19, 9), got.Bounds().Size())
	r, _, _, _ := got.At(got.Bounds().Min.X, got.Bounds().Min.Y).RGBA()
	assert.NotZero(t, r, "the marked pixel should sit at the crop origin")
}

func TestCrop_ClampsAndRejectsOutside(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))

	got, err := crop(img, geometry.Rect{X0: 40, Y0: 40, X1: 80, Y1: 80}, 2)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(20, 20), got.Bounds().Size())

	_, err = crop(img, geometry.Rect{X0: 60, Y0: 60, X1: 90, Y1: 90}, 2)
	assert.Error(t, err)
}

func TestPdftoppmArgs(t *testing.T) {
	r := &PdftoppmRenderer{path: "/tmp/in.pdf", binary: "pdftoppm"}

	full := r.args(0, geometry.Rect{}, 2, "/tmp/out/page")
	assert.Equal(t, []string{"-q", "-png", "-singlefile", "-r", "144", "-f", "1", "-l", "1", "/tmp/in.pdf", "/tmp/out/page"}, full)

	clipped := r.args(2, geometry.Rect{X0: 10, Y0: 20, X1: 60, Y1: 45}, 1.5, "/tmp/out/page")
	assert.Equal(t, []string{
		"-q", "-png", "-singlefile", "-r", "108", "-f", "3", "-l", "3",
		"-x", "15", "-y", "30", "-W", "75", "-H", "38",
		"/tmp/in.pdf", "/tmp/out/page",
	}, clipped)
}

func TestNewRenderer_UnknownHandler(t *testing.T) {
	_, err := NewRenderer("/tmp/in.pdf", "ghostscript", "")
	assert.Error(t, err)
}

func TestNewPdftoppmRenderer_MissingBinary(t *testing.T) {
	_, err := NewPdftoppmRenderer("/tmp/in.pdf", "/nonexistent/bin/pdftoppm")
	assert.Error(t, err)
}
