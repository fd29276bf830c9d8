package pdf

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"

	"github.com/mrhoge/invoice-renamer/internal/config"
	"github.com/mrhoge/invoice-renamer/internal/geometry"
)

// pointsPerInch converts render scale to DPI
const pointsPerInch = 72.0

// Renderer rasterises pages. Page indexes are zero-based and an empty clip
// renders the whole page.
type Renderer interface {
	Render(ctx context.Context, page int, clip geometry.Rect, scale float64) (image.Image, error)
	Close() error
}

// NewRenderer creates the renderer for handler
func NewRenderer(path, handler, pdftoppmPath string) (Renderer, error) {
	switch config.NormalizeHandler(handler) {
	case config.HandlerMuPDF:
		return NewMuPDFRenderer(path)
	case config.HandlerPdftoppm:
		return NewPdftoppmRenderer(path, pdftoppmPath)
	default:
		return nil, fmt.Errorf("unknown pdf handler %q", handler)
	}
}

// MuPDFRenderer renders through MuPDF
type MuPDFRenderer struct {
	mu  sync.Mutex
	doc *fitz.Document
}

// NewMuPDFRenderer opens path with MuPDF
func NewMuPDFRenderer(path string) (*MuPDFRenderer, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("mupdf open: %w", err)
	}
	return &MuPDFRenderer{doc: doc}, nil
}

// Render renders the page at 72*scale DPI and crops it to clip
func (r *MuPDFRenderer) Render(ctx context.Context, page int, clip geometry.Rect, scale float64) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if scale <= 0 {
		return nil, fmt.Errorf("invalid render scale %.2f", scale)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.doc == nil {
		return nil, fmt.Errorf("mupdf: document is closed")
	}

	img, err := r.doc.ImageDPI(page, pointsPerInch*scale)
	if err != nil {
		return nil, fmt.Errorf("mupdf render page %d: %w", page+1, err)
	}
	if clip.IsEmpty() {
		return img, nil
	}
	return crop(img, clip, scale)
}

// Close releases the MuPDF document
func (r *MuPDFRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.doc == nil {
		return nil
	}
	err := r.doc.Close()
	r.doc = nil
	return err
}

// crop cuts the pixels covered by clip out of a full page raster
func crop(img image.Image, clip geometry.Rect, scale float64) (image.Image, error) {
	bounds := img.Bounds()
	px := geometry.PixelRect(clip, scale).Add(bounds.Min).Intersect(bounds)
	if px.Empty() {
		return nil, fmt.Errorf("clip %s lies outside the page", clip)
	}
	return imaging.Crop(img, px), nil
}
