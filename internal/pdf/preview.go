package pdf

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"

	"github.com/mrhoge/invoice-renamer/internal/geometry"
)

// PreviewScale is the zoom of page previews
const PreviewScale = 2.0

// Preview is a PNG encoded page raster
type Preview struct {
	PNG    []byte  `json:"-"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Scale  float64 `json:"scale"`
	Page   int     `json:"page"`
}

// Previewer renders page previews and keeps the most recent ones
type Previewer struct {
	cache *LRUCache[*Preview]
}

// NewPreviewer creates a previewer caching up to capacity pages
func NewPreviewer(capacity int) *Previewer {
	return &Previewer{cache: NewLRUCache[*Preview](capacity)}
}

// Preview returns page of doc rendered at PreviewScale. Entries are keyed by
// path, modification time, page and scale so a rewritten file is rendered
// again.
func (p *Previewer) Preview(ctx context.Context, doc *Document, page int) (*Preview, error) {
	key := previewKey(doc.Path(), page, PreviewScale)
	if cached, ok := p.cache.Get(key); ok {
		return cached, nil
	}

	pg, err := doc.Page(page)
	if err != nil {
		return nil, err
	}
	img, err := pg.Render(ctx, geometry.Rect{}, PreviewScale)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode preview: %w", err)
	}

	b := img.Bounds()
	preview := &Preview{
		PNG:    buf.Bytes(),
		Width:  b.Dx(),
		Height: b.Dy(),
		Scale:  PreviewScale,
		Page:   page,
	}
	p.cache.Put(key, preview)
	return preview, nil
}

// Stats returns the cache statistics
func (p *Previewer) Stats() CacheStats {
	return p.cache.Stats()
}

func previewKey(path string, page int, scale float64) string {
	var mtime int64
	if info, err := os.Stat(path); err == nil {
		mtime = info.ModTime().UnixNano()
	}
	return fmt.Sprintf("%s|%d|%d|%.2f", path, mtime, page, scale)
}
