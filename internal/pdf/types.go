package pdf

import "github.com/mrhoge/invoice-renamer/internal/geometry"

// Span is a run of text on one baseline, in top-left page coordinates
type Span struct {
	Text     string        `json:"text"`
	BBox     geometry.Rect `json:"bbox"`
	Font     string        `json:"font,omitempty"`
	FontSize float64       `json:"size"`
}

// EmbeddedImage is an image XObject drawn on a page
type EmbeddedImage struct {
	Index    int           `json:"index"`
	Name     string        `json:"name"`
	BBox     geometry.Rect `json:"bbox"`
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	FileType string        `json:"file_type"`
	Data     []byte        `json:"-"`
}

// FileInfo describes a PDF in the invoice folder
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// Info summarises an opened document
type Info struct {
	Path      string          `json:"path"`
	Name      string          `json:"name"`
	Size      int64           `json:"size"`
	Pages     int             `json:"pages"`
	PageSizes []geometry.Size `json:"page_sizes"`
	Handler   string          `json:"handler"`
}
