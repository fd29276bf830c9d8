// Package pdf opens invoice PDFs and exposes what the selection analyzer
// needs from a page: its size, positioned text, embedded images and a raster
// of any region.
//
// Structure and page geometry come from pdfcpu, positioned text from
// ledongthuc/pdf and rasters from the configured renderer (MuPDF through
// go-fitz, or the poppler pdftoppm binary).
package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"

	"github.com/mrhoge/invoice-renamer/internal/config"
	apperrors "github.com/mrhoge/invoice-renamer/internal/errors"
	"github.com/mrhoge/invoice-renamer/internal/geometry"
	"github.com/mrhoge/invoice-renamer/internal/logging"
)

// Options controls how a document is opened
type Options struct {
	MaxFileSize  int64
	Handler      string
	PdftoppmPath string
	Logger       logrus.FieldLogger
}

// Document is an opened PDF. Page indexes are zero-based.
type Document struct {
	path    string
	size    int64
	sizes   []geometry.Size
	rots    []int
	handler string
	logger  logrus.FieldLogger

	mu       sync.Mutex
	closed   bool
	file     *os.File
	text     *pdf.Reader
	renderer Renderer
}

// Load validates path, reads the document structure and prepares text
// extraction and rendering.
func Load(path string, opts Options) (*Document, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	info, err := NewValidator(opts.MaxFileSize).CheckFile(path)
	if err != nil {
		return nil, err
	}

	sizes, rots, err := readPageSizes(path)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		path:   path,
		size:   info.Size(),
		sizes:  sizes,
		rots:   rots,
		logger: logger.WithField("file", filepath.Base(path)),
	}

	f, reader, err := openText(path)
	if err != nil {
		doc.logger.WithError(err).Warn("Text layer unavailable, continuing without positioned text")
	} else {
		doc.file = f
		doc.text = reader
	}

	doc.handler = config.NormalizeHandler(opts.Handler)
	renderer, err := NewRenderer(path, doc.handler, opts.PdftoppmPath)
	if err != nil && doc.handler != config.HandlerMuPDF {
		apperrors.Handle(doc.logger, err, apperrors.KindPDFHandlerError, "falling back to "+config.HandlerMuPDF)
		doc.handler = config.HandlerMuPDF
		renderer, err = NewRenderer(path, doc.handler, "")
	}
	if err != nil {
		doc.closeText()
		return nil, apperrors.Wrap(apperrors.KindPDFHandlerError, "load", err).WithFile(path)
	}
	doc.renderer = renderer

	doc.logger.WithFields(logrus.Fields{
		"pages":   len(sizes),
		"handler": doc.handler,
	}).Info("PDF loaded")
	return doc, nil
}

// readPageSizes returns the displayed size of every page, with width and
// height swapped for pages rotated by 90 or 270 degrees, and the rotations
func readPageSizes(path string) ([]geometry.Size, []int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ClassifyFile(err), "load", err).WithFile(path)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		kind := apperrors.KindFileCorrupted
		if apperrors.ClassifyPDF(err) == apperrors.KindPDFPasswordProtected {
			kind = apperrors.KindPDFPasswordProtected
		}
		return nil, nil, apperrors.Wrap(kind, "load", err).WithFile(path)
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return nil, nil, apperrors.Wrap(apperrors.KindFileCorrupted, "load", err).WithFile(path)
	}
	if ctx.PageCount == 0 {
		return nil, nil, apperrors.New(apperrors.KindFileCorrupted, "document has no pages").WithFile(path)
	}

	boundaries, err := ctx.PageBoundaries(nil)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.KindFileCorrupted, "load", err).WithFile(path)
	}

	sizes := make([]geometry.Size, len(boundaries))
	rots := make([]int, len(boundaries))
	for i, pb := range boundaries {
		d := pb.MediaBox().Dimensions()
		rots[i] = normalizeRotation(pb.Rot)
		sizes[i] = rotateSize(geometry.Size{W: d.Width, H: d.Height}, rots[i])
	}
	return sizes, rots, nil
}

// openText opens the text layer; the library panics on some malformed files
func openText(path string) (f *os.File, r *pdf.Reader, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			if f != nil {
				f.Close()
			}
			f, r, err = nil, nil, fmt.Errorf("text layer: %v", rec)
		}
	}()
	return pdf.Open(path)
}

// Path returns the file the document was loaded from
func (d *Document) Path() string { return d.path }

// Size returns the file size in bytes
func (d *Document) Size() int64 { return d.size }

// Handler returns the renderer in use
func (d *Document) Handler() string { return d.handler }

// PageCount returns the number of pages
func (d *Document) PageCount() int { return len(d.sizes) }

// PageSize returns the displayed size of page i in points
func (d *Document) PageSize(i int) (geometry.Size, error) {
	if err := d.checkPage(i); err != nil {
		return geometry.Size{}, err
	}
	return d.sizes[i], nil
}

// Page returns page i
func (d *Document) Page(i int) (*Page, error) {
	if err := d.checkPage(i); err != nil {
		return nil, err
	}
	return &Page{doc: d, index: i, size: d.sizes[i], rot: d.rots[i]}, nil
}

// Text returns the text of page i, one line per baseline
func (d *Document) Text(i int) (string, error) {
	p, err := d.Page(i)
	if err != nil {
		return "", err
	}
	return p.Text(geometry.Rect{})
}

// AllText returns the text of every page joined by newlines. Pages whose
// text cannot be read contribute an empty string.
func (d *Document) AllText() string {
	pages := make([]string, len(d.sizes))
	for i := range d.sizes {
		text, err := d.Text(i)
		if err != nil {
			d.logger.WithError(err).WithField("page", i+1).Warn("Failed to extract page text")
			continue
		}
		pages[i] = text
	}
	return strings.Join(pages, "\n")
}

// Info summarises the document
func (d *Document) Info() Info {
	return Info{
		Path:      d.path,
		Name:      filepath.Base(d.path),
		Size:      d.size,
		Pages:     len(d.sizes),
		PageSizes: append([]geometry.Size(nil), d.sizes...),
		Handler:   d.handler,
	}
}

// Close releases the file handles and the renderer. It is safe to call more
// than once.
func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	var err error
	if d.renderer != nil {
		err = d.renderer.Close()
	}
	d.closeTextLocked()
	d.logger.Debug("PDF closed")
	return err
}

func (d *Document) closeText() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closeTextLocked()
}

func (d *Document) closeTextLocked() {
	if d.file != nil {
		d.file.Close()
		d.file = nil
	}
	d.text = nil
}

func (d *Document) checkPage(i int) error {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return apperrors.New(apperrors.KindPDFHandlerError, "document is closed").WithFile(d.path)
	}
	if i < 0 || i >= len(d.sizes) {
		return fmt.Errorf("page %d out of range (document has %d pages)", i+1, len(d.sizes))
	}
	return nil
}

// textReader returns the text layer or nil when it is unavailable
func (d *Document) textReader() *pdf.Reader {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}
