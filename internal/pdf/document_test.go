package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrhoge/invoice-renamer/internal/geometry"
)

// testdata/invoice.pdf has three pages:
//  1. Helvetica without /Widths: "Invoice No 12345" at (100, 662), "Total
//     10,000" at (100, 632) and a 64x32 grey image drawn at 300,500 200x100
//  2. the same media box rotated by 90 degrees with "Rotated" at (100, 662)
//  3. Courier with /Widths: "Invoice No 12345" at (100, 662)
const fixture = "testdata/invoice.pdf"

func loadFixture(t *testing.T) *Document {
	t.Helper()
	doc, err := Load(fixture, Options{MaxFileSize: 1 << 20})
	require.NoError(t, err)
	t.Cleanup(func() { doc.Close() })
	return doc
}

func fixturePage(t *testing.T, doc *Document, i int) *Page {
	t.Helper()
	page, err := doc.Page(i)
	require.NoError(t, err)
	return page
}

func TestLoad_Fixture(t *testing.T) {
	doc := loadFixture(t)

	assert.Equal(t, 3, doc.PageCount())
	size, err := doc.PageSize(0)
	require.NoError(t, err)
	assert.Equal(t, geometry.Size{W: 612, H: 792}, size)

	info := doc.Info()
	assert.Equal(t, "invoice.pdf", info.Name)
	assert.Equal(t, 3, info.Pages)
	assert.Positive(t, info.Size)

	_, err = doc.Page(3)
	assert.Error(t, err)
}

func TestLoad_RotatedPageSize(t *testing.T) {
	doc := loadFixture(t)

	page := fixturePage(t, doc, 1)
	assert.Equal(t, 90, page.Rotation())
	assert.Equal(t, geometry.Size{W: 792, H: 612}, page.Size())
}

func TestDocument_Metadata(t *testing.T) {
	meta := loadFixture(t).Metadata()

	assert.Equal(t, "Test Invoice", meta.Title)
	assert.Equal(t, "ACME Corporation", meta.Author)
	assert.Equal(t, "invoice fixtures", meta.Producer)
	assert.Equal(t, "D:20250616120000Z", meta.Created)
}

func TestDocument_Text(t *testing.T) {
	doc := loadFixture(t)

	text, err := doc.Text(0)
	require.NoError(t, err)
	assert.Equal(t, "Invoice No 12345\nTotal 10,000", text)
	assert.Contains(t, doc.AllText(), "Rotated")
}

func TestPage_Spans_FontWithoutWidths(t *testing.T) {
	page := fixturePage(t, loadFixture(t), 0)

	spans, err := page.Spans(geometry.Rect{})
	require.NoError(t, err)
	require.Len(t, spans, 2)

	first := spans[0]
	assert.Equal(t, "Invoice No 12345", first.Text)
	assert.Equal(t, "Helvetica", first.Font)
	assert.InDelta(t, 100, first.BBox.X0, 0.01)
	// Helvetica advances: Invoice 3168, spaces 278, No 1278, digits 556 each
	assert.InDelta(t, 193.384, first.BBox.X1, 0.01)
	assert.InDelta(t, 118, first.BBox.Y0, 0.01)
	assert.InDelta(t, 130, first.BBox.Y1, 0.01)

	// right half of the first line only
	clipped, err := page.Text(geometry.Rect{X0: 140, Y0: 115, X1: 300, Y1: 135})
	require.NoError(t, err)
	assert.Equal(t, "No 12345", clipped)
}

func TestPage_Spans_FontWithWidths(t *testing.T) {
	page := fixturePage(t, loadFixture(t), 2)

	spans, err := page.Spans(geometry.Rect{})
	require.NoError(t, err)
	require.Len(t, spans, 1)
	assert.Equal(t, "Courier", spans[0].Font)
	assert.InDelta(t, 215.2, spans[0].BBox.X1, 0.01)

	clipped, err := page.Text(geometry.Rect{X0: 155, Y0: 115, X1: 300, Y1: 135})
	require.NoError(t, err)
	assert.Equal(t, "No 12345", clipped)
}

func TestPage_Spans_Rotated(t *testing.T) {
	page := fixturePage(t, loadFixture(t), 1)

	spans, err := page.Spans(geometry.Rect{})
	require.NoError(t, err)
	require.Len(t, spans, 1)
	// the line at y 130 from the top of the unrotated page lands 130 from
	// the right edge of the rotated one
	box := spans[0].BBox
	assert.InDelta(t, 662, box.X0, 0.01)
	assert.InDelta(t, 674, box.X1, 0.01)
	assert.InDelta(t, 100, box.Y0, 0.01)
	assert.InDelta(t, 142.024, box.Y1, 0.01)

	text, err := page.Text(geometry.Rect{X0: 650, Y0: 90, X1: 690, Y1: 150})
	require.NoError(t, err)
	assert.Equal(t, "Rotated", text)

	empty, err := page.Text(geometry.Rect{X0: 90, Y0: 650, X1: 150, Y1: 690})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestPage_Images(t *testing.T) {
	page := fixturePage(t, loadFixture(t), 0)

	images, err := page.Images()
	require.NoError(t, err)
	require.Len(t, images, 1)

	img := images[0]
	assert.Equal(t, "Im1", img.Name)
	assert.Equal(t, 64, img.Width)
	assert.Equal(t, 32, img.Height)
	assert.Equal(t, geometry.Rect{X0: 300, Y0: 192, X1: 500, Y1: 292}, img.BBox)
	assert.NotEmpty(t, img.Data)

	decoded, err := img.Decode()
	require.NoError(t, err)
	assert.Equal(t, 64, decoded.Bounds().Dx())
	assert.Equal(t, 32, decoded.Bounds().Dy())

	none, err := fixturePage(t, page.doc, 2).Images()
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPage_Render(t *testing.T) {
	doc := loadFixture(t)
	ctx := context.Background()

	clip, err := fixturePage(t, doc, 0).Render(ctx, geometry.Rect{X0: 300, Y0: 192, X1: 500, Y1: 292}, 2)
	require.NoError(t, err)
	assert.Equal(t, 400, clip.Bounds().Dx())
	assert.Equal(t, 200, clip.Bounds().Dy())

	full, err := fixturePage(t, doc, 1).Render(ctx, geometry.Rect{}, 1)
	require.NoError(t, err)
	assert.Greater(t, full.Bounds().Dx(), full.Bounds().Dy(), "rotated page renders landscape")

	require.NoError(t, doc.Close())
	_, err = doc.Page(0)
	assert.Error(t, err)
}

func TestPreviewer_Fixture(t *testing.T) {
	doc := loadFixture(t)
	previewer := NewPreviewer(4)

	first, err := previewer.Preview(context.Background(), doc, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1224, first.Width, 1)
	assert.InDelta(t, 1584, first.Height, 1)
	assert.NotEmpty(t, first.PNG)

	again, err := previewer.Preview(context.Background(), doc, 0)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, int64(1), previewer.Stats().Hits)
}
