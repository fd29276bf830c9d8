package selection

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrhoge/invoice-renamer/internal/geometry"
	"github.com/mrhoge/invoice-renamer/internal/logging"
	"github.com/mrhoge/invoice-renamer/internal/ocr"
	"github.com/mrhoge/invoice-renamer/internal/pdf"
)

// testdata/invoice.pdf: page 1 is US letter with two Helvetica lines at the
// top and a grey image at (300, 192)-(500, 292); page 2 is rotated by 90
// degrees with "Rotated" near the top right of the rotated page
const invoiceFixture = "testdata/invoice.pdf"

func newPDFAnalyzer(engine *fakeEngine) *Analyzer {
	logger := logging.Discard()
	return NewAnalyzer(PDFLoader(pdf.Options{MaxFileSize: 1 << 20}), ocr.NewRecognizer(engine, logger), logger, Config{
		Memory: func() (float64, error) { return 10, nil },
	})
}

// a preview the size of the page at 100% maps view pixels onto points
func pageParams(size geometry.Size) Params {
	return Params{Zoom: 1, Preview: size, Language: ocr.LangEnglish}
}

func TestAnalyze_PDFTextLayer(t *testing.T) {
	engine := &fakeEngine{respond: func(ocr.Request) (string, error) { return "ocr", nil }}
	sel := Selection{Rect: geometry.ViewRect{X: 140, Y: 115, W: 160, H: 20}, Path: invoiceFixture}

	results := newPDFAnalyzer(engine).Analyze(context.Background(), sel, pageParams(geometry.Size{W: 612, H: 792}), false)

	require.Len(t, results, 1)
	assert.Equal(t, "No 12345", results[0].Text)
	assert.Equal(t, TypeText, results[0].Type)
	assert.Equal(t, SourceText, results[0].Source)
	assert.Equal(t, 1.0, results[0].Confidence)
	assert.Empty(t, engine.calls)
}

func TestAnalyze_PDFRotatedPage(t *testing.T) {
	engine := &fakeEngine{respond: func(ocr.Request) (string, error) { return "ocr", nil }}
	sel := Selection{Rect: geometry.ViewRect{X: 650, Y: 90, W: 40, H: 60}, Page: 1, Path: invoiceFixture}

	results := newPDFAnalyzer(engine).Analyze(context.Background(), sel, pageParams(geometry.Size{W: 792, H: 612}), false)

	require.Len(t, results, 1)
	assert.Equal(t, "Rotated", results[0].Text)
	assert.Equal(t, TypeText, results[0].Type)
}

func TestAnalyze_PDFImageRegion(t *testing.T) {
	engine := &fakeEngine{respond: func(ocr.Request) (string, error) { return "Total 10,000", nil }}
	sel := Selection{Rect: geometry.ViewRect{X: 300, Y: 192, W: 200, H: 100}, Path: invoiceFixture}

	results := newPDFAnalyzer(engine).Analyze(context.Background(), sel, pageParams(geometry.Size{W: 612, H: 792}), false)

	require.NotEmpty(t, results)
	assert.NotEmpty(t, engine.calls)
	for _, r := range results {
		assert.Equal(t, TypeImage, r.Type)
		assert.Equal(t, "Total 10,000", r.Text)
		assert.True(t, r.BBox.Intersects(geometry.Rect{X0: 300, Y0: 192, X1: 500, Y1: 292}))
	}
}

func TestAnalyze_PDFMissingFile(t *testing.T) {
	engine := &fakeEngine{respond: func(ocr.Request) (string, error) { return "", nil }}
	sel := Selection{Rect: geometry.ViewRect{X: 0, Y: 0, W: 10, H: 10}, Path: "testdata/missing.pdf"}

	results := newPDFAnalyzer(engine).Analyze(context.Background(), sel, Params{}, false)

	require.Len(t, results, 1)
	assert.Equal(t, TypeError, results[0].Type)
}
