package ocr

import (
	"image"
	"image/color"
	"math"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/math/f64"
	"github.com/disintegration/imaging"
)

const (
	// MaxPixels is the size above which images are shrunk before OCR
	MaxPixels    = 4_000_000
	maxDimension = 2000
	minVariant   = 100
)

// Variant is one preprocessed version of the input image
type Variant struct {
	Name  string
	Image image.Image
}

// Variants returns the image versions tried for every config, in order:
// original, grayscale, doubled contrast around the mean grey level and, for
// small images, an upscaled copy.
func Variants(img image.Image) []Variant {
	gray := effect.Grayscale(img)
	out := []Variant{
		{Name: "original", Image: img},
		{Name: "grayscale", Image: gray},
		{Name: "contrast", Image: contrast(gray, 2.0)},
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > 0 && h > 0 && (w < minVariant || h < minVariant) {
		factor := math.Max(2, float64(minVariant)/float64(min(w, h)))
		out = append(out, Variant{
			Name:  "resized",
			Image: imaging.Resize(img, int(float64(w)*factor), int(float64(h)*factor), imaging.Lanczos),
		})
	}
	return out
}

// contrast moves every level of a grey image factor times further from the
// mean level. A factor of 1 returns a copy.
func contrast(gray *image.RGBA, factor float64) *image.RGBA {
	mean := math.Round(meanLevel(gray))
	lookup := make([]uint8, 256)
	for i := range lookup {
		lookup[i] = uint8(math.Round(f64.Clamp(mean+factor*(float64(i)-mean), 0, 255)))
	}
	return adjust.Apply(gray, func(c color.RGBA) color.RGBA {
		return color.RGBA{lookup[c.R], lookup[c.G], lookup[c.B], c.A}
	})
}

// meanLevel averages the red channel, which equals the others on grey images
func meanLevel(gray *image.RGBA) float64 {
	b := gray.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return 0
	}
	var sum int
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := gray.Pix[gray.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			sum += int(row[x*4])
		}
	}
	return float64(sum) / float64(n)
}

// Shrink fits images larger than MaxPixels into a 2000x2000 box, keeping the
// aspect ratio. Smaller images are returned as is.
func Shrink(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w*h <= MaxPixels {
		return img
	}
	ratio := math.Min(float64(maxDimension)/float64(w), float64(maxDimension)/float64(h))
	return imaging.Resize(img, int(float64(w)*ratio), int(float64(h)*ratio), imaging.Lanczos)
}

// simplePreprocess converts to grayscale and upscales images narrower than
// 100 or shorter than 30 pixels
func simplePreprocess(img image.Image) image.Image {
	gray := imaging.Grayscale(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return gray
	}
	if w < 100 || h < 30 {
		scale := math.Max(100/float64(w), 30/float64(h))
		return imaging.Resize(gray, int(float64(w)*scale), int(float64(h)*scale), imaging.Lanczos)
	}
	return gray
}
