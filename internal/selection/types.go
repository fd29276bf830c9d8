// Package selection turns a rectangle dragged on a page preview into the text
// found there, reading the PDF text layer first and falling back to OCR of
// the rendered region and of embedded images.
package selection

import (
	"context"
	"fmt"
	"image"

	"github.com/mrhoge/invoice-renamer/internal/geometry"
	"github.com/mrhoge/invoice-renamer/internal/ocr"
	"github.com/mrhoge/invoice-renamer/internal/pdf"
)

// ElementType classifies a Result
type ElementType string

const (
	TypeText              ElementType = "text"
	TypeImage             ElementType = "image"
	TypeImageFallback     ElementType = ocr.StageFallback
	TypeImagePreprocessed ElementType = ocr.StagePreprocessed
	TypeImageNoText       ElementType = ocr.StageNoText
	TypeDiagnostic        ElementType = "diagnostic"
	TypeError             ElementType = "error"
	TypeUnknown           ElementType = "unknown"
)

// Sources recorded on results
const (
	SourceText     = "pdf_text"
	SourceRender   = "direct_rendering"
	SourceEmbedded = "embedded_image"
)

// Result is one element found in a selection
type Result struct {
	Text         string        `json:"text"`
	Type         ElementType   `json:"type"`
	Confidence   float64       `json:"confidence"`
	BBox         geometry.Rect `json:"bbox"`
	ReadingOrder int           `json:"reading_order"`
	Source       string        `json:"source,omitempty"`
}

// Selection is a drag on the preview of one page
type Selection struct {
	Rect geometry.ViewRect `json:"rect"`
	Page int               `json:"page"`
	Path string            `json:"path"`
}

// Params describes the preview the selection was made on
type Params struct {
	Zoom     float64       `json:"zoom"`
	Preview  geometry.Size `json:"preview"`
	Language string        `json:"language"`
}

// DefaultParams returns a 800x600 preview at 100% with Japanese and English OCR
func DefaultParams() Params {
	return Params{
		Zoom:     1.0,
		Preview:  geometry.Size{W: 800, H: 600},
		Language: ocr.LangJapaneseEnglish,
	}
}

func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.Zoom <= 0 {
		p.Zoom = d.Zoom
	}
	if p.Preview.IsZero() {
		p.Preview = d.Preview
	}
	if p.Language == "" {
		p.Language = d.Language
	}
	return p
}

// Page is the part of a PDF page the analyzer reads
type Page interface {
	Size() geometry.Size
	Spans(clip geometry.Rect) ([]pdf.Span, error)
	Render(ctx context.Context, clip geometry.Rect, scale float64) (image.Image, error)
	Images() ([]pdf.EmbeddedImage, error)
}

// Document gives access to pages by zero-based index
type Document interface {
	Page(i int) (Page, error)
	Close() error
}

// Loader opens the document a selection refers to
type Loader func(path string) (Document, error)

// PDFLoader opens documents with the pdf package
func PDFLoader(opts pdf.Options) Loader {
	return func(path string) (Document, error) {
		doc, err := pdf.Load(path, opts)
		if err != nil {
			return nil, err
		}
		return pdfDocument{doc: doc, owned: true}, nil
	}
}

// OpenDocument wraps an already loaded document. Closing the wrapper leaves
// the document open.
func OpenDocument(doc *pdf.Document) Loader {
	return func(path string) (Document, error) {
		if path != doc.Path() {
			return nil, fmt.Errorf("selection refers to %s but %s is open", path, doc.Path())
		}
		return pdfDocument{doc: doc}, nil
	}
}

type pdfDocument struct {
	doc   *pdf.Document
	owned bool
}

func (d pdfDocument) Page(i int) (Page, error) {
	p, err := d.doc.Page(i)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (d pdfDocument) Close() error {
	if !d.owned {
		return nil
	}
	return d.doc.Close()
}
