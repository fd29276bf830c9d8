package pdf

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"strconv"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	_ "golang.org/x/image/tiff"

	"github.com/mrhoge/invoice-renamer/internal/geometry"
)

// placement is where an image XObject is drawn on the page
type placement struct {
	name string
	box  geometry.Rect
}

// Images returns the embedded images of the page with their placement boxes
// in displayed top-left page coordinates. Images that are never drawn
// directly by the page content stream get an empty box.
func (p *Page) Images() ([]EmbeddedImage, error) {
	extracted, err := p.extractImages()
	if err != nil {
		return nil, err
	}
	if len(extracted) == 0 {
		return nil, nil
	}

	placements, err := p.placements()
	if err != nil {
		p.doc.logger.WithError(err).WithField("page", p.index+1).Debug("Image placement unavailable")
	}

	byName := make(map[string]EmbeddedImage, len(extracted))
	var order []string
	for _, img := range extracted {
		if _, dup := byName[img.Name]; !dup {
			order = append(order, img.Name)
		}
		byName[img.Name] = img
	}

	var images []EmbeddedImage
	placed := make(map[string]bool)
	for _, pl := range placements {
		img, ok := byName[pl.name]
		if !ok {
			continue
		}
		img.Index = len(images)
		img.BBox = pl.box
		images = append(images, img)
		placed[pl.name] = true
	}
	for _, name := range order {
		if placed[name] {
			continue
		}
		img := byName[name]
		img.Index = len(images)
		images = append(images, img)
	}
	return images, nil
}

// extractImages reads the raw image streams of the page through pdfcpu
func (p *Page) extractImages() ([]EmbeddedImage, error) {
	f, err := os.Open(p.doc.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p.doc.path, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	var images []EmbeddedImage
	pages := []string{strconv.Itoa(p.index + 1)}
	err = api.ExtractImages(f, pages, func(img model.Image, _ bool, _ int) error {
		data, err := io.ReadAll(img)
		if err != nil {
			return fmt.Errorf("read image %s: %w", img.Name, err)
		}
		images = append(images, EmbeddedImage{
			Name:     img.Name,
			Width:    img.Width,
			Height:   img.Height,
			FileType: img.FileType,
			Data:     data,
		})
		return nil
	}, conf)
	if err != nil {
		return nil, fmt.Errorf("extract images from page %d: %w", p.index+1, err)
	}
	return images, nil
}

// placements walks the page content stream tracking the transformation
// matrix and records where each image XObject is painted
func (p *Page) placements() (out []placement, err error) {
	reader := p.doc.textReader()
	if reader == nil {
		return nil, fmt.Errorf("content stream unavailable")
	}

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("content stream: %v", rec)
		}
	}()

	page := reader.Page(p.index + 1)
	if page.V.IsNull() {
		return nil, nil
	}
	xobjects := page.Resources().Key("XObject")
	media := p.mediaSize()
	box := mediaBox(page.V, media)

	contents := page.V.Key("Contents")
	streams := []pdf.Value{contents}
	if contents.Kind() == pdf.Array {
		streams = streams[:0]
		for i := 0; i < contents.Len(); i++ {
			streams = append(streams, contents.Index(i))
		}
	}

	w := &ctmWalker{ctm: geometry.Identity()}
	for _, strm := range streams {
		if strm.IsNull() {
			continue
		}
		pdf.Interpret(strm, func(stk *pdf.Stack, op string) {
			name, ok := w.step(stk, op)
			if !ok {
				return
			}
			if xobjects.Key(name).Key("Subtype").Name() != "Image" {
				return
			}
			r := toTopLeft(w.imageBox(), box, media)
			out = append(out, placement{name: name, box: rotateRect(r, media, p.rot)})
		})
	}
	return out, nil
}

// ctmWalker tracks the graphics state operators that move images
type ctmWalker struct {
	ctm   geometry.Matrix
	stack []geometry.Matrix
}

// step applies one content stream operator, consuming its operands. It
// returns the XObject name when op paints one.
func (w *ctmWalker) step(stk *pdf.Stack, op string) (string, bool) {
	args := make([]pdf.Value, stk.Len())
	for i := len(args) - 1; i >= 0; i-- {
		args[i] = stk.Pop()
	}

	switch op {
	case "q":
		w.stack = append(w.stack, w.ctm)
	case "Q":
		if n := len(w.stack); n > 0 {
			w.ctm = w.stack[n-1]
			w.stack = w.stack[:n-1]
		}
	case "cm":
		if len(args) != 6 {
			return "", false
		}
		var m geometry.Matrix
		for i, a := range args {
			m[i] = a.Float64()
		}
		w.ctm = m.Multiply(w.ctm)
	case "Do":
		if len(args) != 1 {
			return "", false
		}
		return args[0].Name(), true
	}
	return "", false
}

// imageBox is the unit square mapped through the current matrix
func (w *ctmWalker) imageBox() geometry.Rect {
	return w.ctm.TransformRect(geometry.Rect{X1: 1, Y1: 1})
}

func toTopLeft(r, box geometry.Rect, page geometry.Size) geometry.Rect {
	h := page.H
	if h <= 0 {
		h = box.Height()
	}
	return geometry.Rect{
		X0: r.X0 - box.X0,
		Y0: h - (r.Y1 - box.Y0),
		X1: r.X1 - box.X0,
		Y1: h - (r.Y0 - box.Y0),
	}
}

// Decode decodes the image data. JPEG, PNG and TIFF streams are supported.
func (e EmbeddedImage) Decode() (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(e.Data))
	if err != nil {
		return nil, fmt.Errorf("decode %s (%s): %w", e.Name, e.FileType, err)
	}
	return img, nil
}
