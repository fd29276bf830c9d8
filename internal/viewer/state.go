package viewer

import (
	"github.com/mrhoge/invoice-renamer/internal/geometry"
	"github.com/mrhoge/invoice-renamer/internal/selection"
)

// State is a snapshot of a Session
type State struct {
	Folder   string         `json:"folder,omitempty"`
	Files    []string       `json:"files"`
	File     string         `json:"file,omitempty"`
	Page     int            `json:"page"`
	Pages    int            `json:"pages"`
	PageSize *geometry.Size `json:"page_size,omitempty"`
	Zoom     float64        `json:"zoom"`
	Label    string         `json:"label,omitempty"`
	Filename string         `json:"filename"`
	Text     string         `json:"text,omitempty"`
	Items    []string       `json:"items"`
}

// Display is the size of the zoomed preview in a viewport
type Display struct {
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Label  string  `json:"label"`
	Zoom   float64 `json:"zoom"`
}

// SelectResult is the outcome of a selection
type SelectResult struct {
	Results  []selection.Result `json:"results"`
	Analysis selection.Analysis `json:"analysis"`
	Bubble   string             `json:"bubble"`
	Items    []string           `json:"items,omitempty"`
}

func (s *Session) stateLocked() *State {
	st := &State{
		Folder:   s.folder,
		Files:    append([]string{}, s.files...),
		File:     s.name,
		Zoom:     s.zoom.Scale,
		Filename: s.filename,
		Text:     s.text,
		Items:    append([]string{}, s.items...),
	}
	if s.doc != nil {
		st.Page = s.pager.Current
		st.Pages = s.pager.Total
		st.Label = s.pager.Label(s.zoom)
		if size, err := s.doc.PageSize(s.pager.Current); err == nil {
			st.PageSize = &size
		}
	}
	return st
}
