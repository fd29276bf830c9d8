package selection

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/sirupsen/logrus"

	apperrors "github.com/mrhoge/invoice-renamer/internal/errors"
	"github.com/mrhoge/invoice-renamer/internal/geometry"
	"github.com/mrhoge/invoice-renamer/internal/ocr"
)

const (
	renderScale      = 2.0
	quickRenderScale = 1.5

	// renders encoding to fewer PNG bytes are blank
	minRenderBytes = 500
	// embedded images smaller than this are decoration
	minEmbeddedBytes = 1000
	maxEmbedded      = 3

	// with more candidates than this under memory pressure only the first
	// reducedCandidates are recognised
	maxCandidates     = 5
	reducedCandidates = 3

	confidenceText  = 1.0
	confidenceOCR   = 0.9
	confidenceQuick = 0.8
)

// NoTextQuick is the diagnostic text of an empty quick analysis
const NoTextQuick = "No text found in the selection."

// Config tunes an Analyzer
type Config struct {
	Tolerance   float64
	MemoryLimit float64
	Memory      MemoryUsage
}

// Analyzer extracts text from page selections
type Analyzer struct {
	load        Loader
	recognizer  *ocr.Recognizer
	logger      logrus.FieldLogger
	tolerance   float64
	memoryLimit float64
	memory      MemoryUsage
}

// NewAnalyzer creates an analyzer. A zero Config uses the default tolerance
// and memory limit and reads system memory use.
func NewAnalyzer(load Loader, recognizer *ocr.Recognizer, logger logrus.FieldLogger, cfg Config) *Analyzer {
	a := &Analyzer{
		load:        load,
		recognizer:  recognizer,
		logger:      logger,
		tolerance:   cfg.Tolerance,
		memoryLimit: cfg.MemoryLimit,
		memory:      cfg.Memory,
	}
	if a.tolerance <= 0 {
		a.tolerance = DefaultTolerance
	}
	if a.memoryLimit <= 0 {
		a.memoryLimit = DefaultMemoryLimit
	}
	if a.memory == nil {
		a.memory = SystemMemory
	}
	return a
}

type candidate struct {
	img    image.Image
	bbox   geometry.Rect
	source string
}

// Analyze returns the elements found in sel. The result is never empty:
// when nothing is found it holds a diagnostic element and any failure is
// reported as a single error element.
func (a *Analyzer) Analyze(ctx context.Context, sel Selection, params Params, quick bool) []Result {
	results, err := a.analyze(ctx, sel, params.withDefaults(), quick)
	if err != nil {
		a.logger.WithError(err).WithField("file", sel.Path).Error("Selection analysis failed")
		return []Result{{Text: "analysis error: " + err.Error(), Type: TypeError}}
	}
	return results
}

func (a *Analyzer) analyze(ctx context.Context, sel Selection, params Params, quick bool) ([]Result, error) {
	if a.memoryHigh() {
		a.logger.Warn("Switching to quick mode because memory use is high")
		quick = true
	}

	doc, err := a.load(sel.Path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	page, err := doc.Page(sel.Page)
	if err != nil {
		return nil, err
	}

	mapping := geometry.ViewToPage(sel.Rect, page.Size(), params.Zoom, params.Preview)
	rect := mapping.Rect

	log := a.logger.WithFields(logrus.Fields{"page": sel.Page + 1, "quick": quick})
	if !quick {
		log.WithFields(logrus.Fields{
			"selection": sel.Rect.String(),
			"preview":   fmt.Sprintf("%.0fx%.0f", params.Preview.W, params.Preview.H),
			"zoom":      params.Zoom,
			"rect":      rect.String(),
			"page_size": fmt.Sprintf("%.1fx%.1f", page.Size().W, page.Size().H),
			"clipped":   mapping.Clipped,
			"fallback":  mapping.Fallback,
		}).Info("Analyzing selection")
	}

	results := a.textResults(page, rect, log)
	if len(results) > 0 {
		if !quick {
			log.WithField("spans", len(results)).Info("Text layer found, skipping OCR")
		}
	} else {
		candidates := a.candidates(ctx, page, rect, quick, log)
		ocrResults, err := a.recognize(ctx, candidates, params.Language, quick, log)
		if err != nil {
			return nil, err
		}
		results = ocrResults
	}

	results = SortByReadingOrder(results, a.tolerance)
	if len(results) == 0 {
		text := NoTextQuick
		if !quick {
			text = Diagnostic(ctx, page, rect, params.Preview, sel.Rect)
		}
		results = []Result{{Text: text, Type: TypeDiagnostic, BBox: rect}}
	}
	return results, nil
}

func (a *Analyzer) textResults(page Page, rect geometry.Rect, log logrus.FieldLogger) []Result {
	spans, err := page.Spans(rect)
	if err != nil {
		log.WithError(err).Error("Failed to extract text spans")
		return nil
	}

	var results []Result
	for _, s := range spans {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		results = append(results, Result{
			Text:       text,
			Type:       TypeText,
			Confidence: confidenceText,
			BBox:       s.BBox,
			Source:     SourceText,
		})
	}
	return results
}

// candidates collects the images to recognise: the selection rendered
// directly and, outside quick mode, embedded images overlapping it
func (a *Analyzer) candidates(ctx context.Context, page Page, rect geometry.Rect, quick bool, log logrus.FieldLogger) []candidate {
	var out []candidate

	scale := renderScale
	if quick {
		scale = quickRenderScale
	}
	if img, err := page.Render(ctx, rect, scale); err != nil {
		log.WithError(err).Warn("Direct rendering failed")
	} else if n := pngSize(img); n > minRenderBytes {
		out = append(out, candidate{img: img, bbox: rect, source: SourceRender})
	} else {
		log.WithField("bytes", n).Debug("Direct rendering is blank")
	}

	if quick {
		return out
	}

	images, err := page.Images()
	if err != nil {
		log.WithError(err).Warn("Failed to list embedded images")
		return out
	}
	for i, emb := range images {
		if i >= maxEmbedded {
			break
		}
		if !rect.Intersects(emb.BBox) || len(emb.Data) <= minEmbeddedBytes {
			continue
		}
		img, err := emb.Decode()
		if err != nil {
			log.WithError(err).WithField("image", i+1).Warn("Failed to decode embedded image")
			continue
		}
		out = append(out, candidate{img: img, bbox: emb.BBox, source: SourceEmbedded})
	}
	log.WithField("candidates", len(out)).Info("Collected image candidates")
	return out
}

func (a *Analyzer) recognize(ctx context.Context, candidates []candidate, language string, quick bool, log logrus.FieldLogger) ([]Result, error) {
	if len(candidates) > maxCandidates && a.memoryHigh() {
		log.Warn("Limiting OCR because memory use is high")
		candidates = candidates[:reducedCandidates]
	}

	confidence := confidenceOCR
	if quick {
		confidence = confidenceQuick
	}

	var results []Result
	for i, c := range candidates {
		img := ocr.Shrink(c.img)
		if img.Bounds() != c.img.Bounds() {
			log.WithField("size", c.img.Bounds().Size().String()).Warn("Image too large, resized for OCR")
		}

		text, err := a.recognizer.Simple(ctx, img, language, quick)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, apperrors.Wrap(apperrors.KindOperationCancelled, "analyze", ctxErr)
			}
			if !quick {
				apperrors.Handle(log, err, apperrors.ClassifyOCR(err), fmt.Sprintf("candidate %d", i+1))
			}
			fb := a.recognizer.Fallback(ctx, img)
			results = append(results, Result{
				Text:       fb.Text,
				Type:       ElementType(fb.Stage),
				Confidence: fb.Confidence,
				BBox:       c.bbox,
				Source:     fb.Source,
			})
			continue
		}

		if text = strings.TrimSpace(text); text == "" {
			if !quick {
				log.WithField("candidate", i+1).Info("OCR returned no text")
			}
			continue
		}
		results = append(results, Result{
			Text:       text,
			Type:       TypeImage,
			Confidence: confidence,
			BBox:       c.bbox,
			Source:     c.source,
		})
	}
	return results, nil
}

func pngSize(img image.Image) int {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return 0
	}
	return buf.Len()
}
