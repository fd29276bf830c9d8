// Package viewer holds the state of one headless invoice renaming session:
// the open folder and document, page and zoom, the filename being built and
// the items offered for it.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	apperrors "github.com/mrhoge/invoice-renamer/internal/errors"
	"github.com/mrhoge/invoice-renamer/internal/folder"
	"github.com/mrhoge/invoice-renamer/internal/geometry"
	"github.com/mrhoge/invoice-renamer/internal/ocr"
	"github.com/mrhoge/invoice-renamer/internal/pdf"
	"github.com/mrhoge/invoice-renamer/internal/rename"
	"github.com/mrhoge/invoice-renamer/internal/selection"
	"github.com/mrhoge/invoice-renamer/internal/textitems"
)

var (
	ErrNoFolder          = errors.New("no folder is open")
	ErrNoDocument        = errors.New("no PDF is open")
	ErrSelectionTooSmall = errors.New("selection must be larger than 10x10 pixels")
	ErrEmptyItem         = errors.New("item is empty")
)

// Options configures a Session
type Options struct {
	PDF          pdf.Options
	Language     string
	Tolerance    float64
	MemoryLimit  float64
	Engine       ocr.Engine
	Store        *folder.Store
	Accounts     []string
	PreviewCache int
	Logger       logrus.FieldLogger
}

// Session is a single user's viewer state. It is safe for concurrent use.
type Session struct {
	opts       Options
	logger     logrus.FieldLogger
	recognizer *ocr.Recognizer
	renamer    *rename.Renamer
	previewer  *pdf.Previewer

	mu       sync.Mutex
	folder   string
	files    []string
	doc      *pdf.Document
	name     string
	pager    geometry.Pager
	zoom     geometry.Zoom
	filename string
	text     string
	items    []string
}

// New creates a session with no folder open
func New(opts Options) *Session {
	if opts.Language == "" {
		opts.Language = ocr.LangJapaneseEnglish
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	opts.PDF.Logger = logger
	return &Session{
		opts:       opts,
		logger:     logger,
		recognizer: ocr.NewRecognizer(opts.Engine, logger),
		renamer:    rename.NewRenamer(logger),
		previewer:  pdf.NewPreviewer(opts.PreviewCache),
		zoom:       geometry.NewZoom(),
	}
}

// Restore reopens the folder remembered from the last session. It returns
// false when there is none or it no longer validates.
func (s *Session) Restore() bool {
	if s.opts.Store == nil {
		return false
	}
	last := s.opts.Store.LastFolder()
	if last == "" {
		return false
	}
	if _, err := s.OpenFolder(last); err != nil {
		s.logger.WithError(err).WithField("folder", last).Warn("Could not restore last folder")
		return false
	}
	return true
}

// OpenFolder makes dir the current folder and lists its PDFs. The choice is
// remembered for the next session.
func (s *Session) OpenFolder(dir string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve folder: %w", err)
	}
	if err := folder.ValidateLastFolder(abs); err != nil {
		return nil, fmt.Errorf("%s: %w", abs, err)
	}
	files, err := folder.ListPDFs(abs)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ClassifyFile(err), "open folder", err).WithFile(abs)
	}

	s.mu.Lock()
	s.closeDocumentLocked()
	s.folder = abs
	s.files = files
	s.mu.Unlock()

	if s.opts.Store != nil {
		if err := s.opts.Store.SaveLastFolder(abs); err != nil {
			s.logger.WithError(err).Warn("Failed to remember folder")
		}
	}
	s.logger.WithFields(logrus.Fields{"folder": abs, "files": len(files)}).Info("Folder opened")
	return append([]string(nil), files...), nil
}

// Files returns the PDFs of the current folder
func (s *Session) Files() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.files...)
}

// Refresh lists the folder again
func (s *Session) Refresh() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refreshLocked(); err != nil {
		return nil, err
	}
	return append([]string(nil), s.files...), nil
}

func (s *Session) refreshLocked() error {
	if s.folder == "" {
		return ErrNoFolder
	}
	files, err := folder.ListPDFs(s.folder)
	if err != nil {
		return apperrors.Wrap(apperrors.ClassifyFile(err), "list folder", err).WithFile(s.folder)
	}
	s.files = files
	return nil
}

// Open loads name from the current folder, shows its first page at 100%
// and clears the filename buffer
func (s *Session) Open(name string) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.folder == "" {
		return nil, ErrNoFolder
	}
	guard, err := folder.NewGuard(s.folder)
	if err != nil {
		return nil, err
	}
	path, err := guard.Resolve(name)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindFilePermissionDenied, "open", err).WithFile(name)
	}

	doc, err := pdf.Load(path, s.opts.PDF)
	if err != nil {
		s.closeDocumentLocked()
		return nil, err
	}

	s.closeDocumentLocked()
	s.doc = doc
	s.name = filepath.Base(path)
	s.pager = geometry.Pager{Total: doc.PageCount()}
	s.zoom.Reset()
	s.filename = ""
	s.loadPageLocked()

	s.logger.WithField("file", s.name).Info("PDF opened")
	return s.stateLocked(), nil
}

// loadPageLocked refreshes the page text and the items derived from it
func (s *Session) loadPageLocked() {
	text, err := s.doc.Text(s.pager.Current)
	if err != nil {
		s.logger.WithError(err).WithField("page", s.pager.Current+1).Warn("Failed to read page text")
		text = ""
	}
	s.text = text
	s.items = textitems.Extract(text)
}

// Next moves to the next page
func (s *Session) Next() (*State, error) {
	return s.movePage((*geometry.Pager).Next)
}

// Prev moves to the previous page
func (s *Session) Prev() (*State, error) {
	return s.movePage((*geometry.Pager).Prev)
}

func (s *Session) movePage(move func(*geometry.Pager) bool) (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, ErrNoDocument
	}
	if move(&s.pager) {
		s.loadPageLocked()
		s.logger.WithField("page", s.pager.Label(s.zoom)).Info("Page changed")
	}
	return s.stateLocked(), nil
}

// ZoomIn, ZoomOut and ZoomReset change the preview zoom
func (s *Session) ZoomIn() *State    { return s.changeZoom((*geometry.Zoom).In) }
func (s *Session) ZoomOut() *State   { return s.changeZoom((*geometry.Zoom).Out) }
func (s *Session) ZoomReset() *State { return s.changeZoom(resetZoom) }

func resetZoom(z *geometry.Zoom) bool {
	z.Reset()
	return true
}

func (s *Session) changeZoom(change func(*geometry.Zoom) bool) *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if change(&s.zoom) {
		s.logger.WithField("zoom", s.zoom.Scale).Debug("Zoom changed")
	}
	return s.stateLocked()
}

// Display computes the preview size for a viewport at the current zoom
func (s *Session) Display(viewport geometry.Size) (*Display, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, ErrNoDocument
	}
	size, err := s.doc.PageSize(s.pager.Current)
	if err != nil {
		return nil, err
	}
	img := geometry.Size{W: size.W * pdf.PreviewScale, H: size.H * pdf.PreviewScale}
	w, h := geometry.DisplaySize(img, viewport, s.zoom.Scale)
	return &Display{
		Width:  w,
		Height: h,
		Label:  s.pager.Label(s.zoom),
		Zoom:   s.zoom.Scale,
	}, nil
}

// Document describes the open PDF
func (s *Session) Document() (pdf.Info, pdf.Metadata, error) {
	s.mu.Lock()
	doc := s.doc
	s.mu.Unlock()
	if doc == nil {
		return pdf.Info{}, pdf.Metadata{}, ErrNoDocument
	}
	return doc.Info(), doc.Metadata(), nil
}

// FolderStats describes the PDFs of the current folder
func (s *Session) FolderStats() (*pdf.FolderStats, error) {
	s.mu.Lock()
	dir, files := s.folder, append([]string(nil), s.files...)
	s.mu.Unlock()
	if dir == "" {
		return nil, ErrNoFolder
	}
	return pdf.StatFolder(dir, files)
}

// Preview renders the current page
func (s *Session) Preview(ctx context.Context) (*pdf.Preview, error) {
	s.mu.Lock()
	doc, page := s.doc, s.pager.Current
	s.mu.Unlock()
	if doc == nil {
		return nil, ErrNoDocument
	}
	return s.previewer.Preview(ctx, doc, page)
}

// PreviewStats returns the preview cache statistics
func (s *Session) PreviewStats() pdf.CacheStats {
	return s.previewer.Stats()
}

// AddItem appends item to the filename, optionally normalising dates
func (s *Session) AddItem(item string, formatDate bool) (string, error) {
	item = strings.TrimSpace(item)
	if item == "" {
		return "", ErrEmptyItem
	}
	if formatDate {
		formatted := textitems.FormatDate(item)
		if formatted != item {
			s.logger.WithFields(logrus.Fields{"from": item, "to": formatted}).Info("Date formatted")
		}
		item = formatted
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.filename = textitems.AppendItem(s.filename, item)
	return s.filename, nil
}

// AddAccount appends an account title to the filename
func (s *Session) AddAccount(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrEmptyItem
	}
	if !s.knownAccount(title) {
		s.logger.WithField("account", title).Warn("Account title is not in the list")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.filename = textitems.AppendItem(s.filename, title)
	return s.filename, nil
}

func (s *Session) knownAccount(title string) bool {
	for _, a := range s.opts.Accounts {
		if a == title {
			return true
		}
	}
	return false
}

// Accounts returns the account titles offered for filenames
func (s *Session) Accounts() []string {
	return append([]string(nil), s.opts.Accounts...)
}

// SetFilename replaces the filename buffer
func (s *Session) SetFilename(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filename = strings.TrimSpace(name)
	return s.filename
}

// ResetFilename puts the current file name back into the buffer
func (s *Session) ResetFilename() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.name == "" {
		return "", ErrNoDocument
	}
	s.filename = s.name
	return s.filename, nil
}

// Select analyses a selection on the current page. Selections of 10x10
// pixels or less are rejected. Debug selections run the full analysis;
// others use quick mode. Extracted lines are added to the item list.
func (s *Session) Select(ctx context.Context, rect geometry.ViewRect, preview geometry.Size, language string, debug bool) (*SelectResult, error) {
	if !geometry.ValidSelection(rect) {
		return nil, ErrSelectionTooSmall
	}

	s.mu.Lock()
	doc, page, zoom := s.doc, s.pager.Current, s.zoom.Scale
	s.mu.Unlock()
	if doc == nil {
		return nil, ErrNoDocument
	}
	if language == "" {
		language = s.opts.Language
	}

	analyzer := selection.NewAnalyzer(selection.OpenDocument(doc), s.recognizer, s.logger,
		selection.Config{Tolerance: s.opts.Tolerance, MemoryLimit: s.opts.MemoryLimit})
	sel := selection.Selection{Rect: rect, Page: page, Path: doc.Path()}
	params := selection.Params{Zoom: zoom, Preview: preview, Language: language}

	s.logger.WithFields(logrus.Fields{
		"selection": rect.String(),
		"zoom":      zoom,
		"debug":     debug,
	}).Info("Analyzing selection")

	results := analyzer.Analyze(ctx, sel, params, !debug)
	analysis := selection.Summarize(results)
	out := &SelectResult{
		Results:  results,
		Analysis: analysis,
		Bubble:   selection.FormatBubble(analysis, debug),
	}

	combined := strings.TrimSpace(analysis.CombinedText)
	if combined != "" && !selection.IsDiagnostic(combined) && !hasError(results) {
		s.mu.Lock()
		if s.doc == doc {
			s.items = selection.AddLines(s.items, combined)
		}
		out.Items = append([]string(nil), s.items...)
		s.mu.Unlock()
	}
	return out, nil
}

// regionScale is the render zoom for thorough region OCR
const regionScale = 2.0

// Recognize renders a selection and runs the thorough OCR search on it,
// regardless of any text layer
func (s *Session) Recognize(ctx context.Context, rect geometry.ViewRect, preview geometry.Size, language string) (*ocr.BestResult, error) {
	if !geometry.ValidSelection(rect) {
		return nil, ErrSelectionTooSmall
	}

	s.mu.Lock()
	doc, index, zoom := s.doc, s.pager.Current, s.zoom.Scale
	s.mu.Unlock()
	if doc == nil {
		return nil, ErrNoDocument
	}
	if language == "" {
		language = s.opts.Language
	}

	page, err := doc.Page(index)
	if err != nil {
		return nil, err
	}
	mapping := geometry.ViewToPage(rect, page.Size(), zoom, preview)
	img, err := page.Render(ctx, mapping.Rect, regionScale)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindPDFHandlerError, "render region", err).WithPage(index + 1)
	}

	res, err := s.recognizer.Best(ctx, img, language)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ClassifyOCR(err), "recognize region", err).WithPage(index + 1)
	}
	s.logger.WithFields(logrus.Fields{
		"region":  mapping.Rect.String(),
		"score":   res.Score,
		"variant": res.Variant,
	}).Info("Region recognized")
	return res, nil
}

func hasError(results []selection.Result) bool {
	for _, r := range results {
		if r.Type == selection.TypeError {
			return true
		}
	}
	return false
}

// Rename moves the open file into original/ and a copy named after the
// filename buffer into renamed/. The document is closed before the move and
// the session is cleared afterwards.
func (s *Session) Rename(ctx context.Context) (*rename.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, ErrNoDocument
	}

	req := rename.Request{
		Path:    s.doc.Path(),
		Folder:  s.folder,
		NewName: s.filename,
	}
	res, err := s.renamer.Rename(ctx, req, func() error {
		return s.doc.Close()
	})
	if err != nil {
		return nil, err
	}

	s.closeDocumentLocked()
	if err := s.refreshLocked(); err != nil {
		s.logger.WithError(err).Warn("Failed to list folder after rename")
	}
	return res, nil
}

// Backup copies every PDF of the folder into work/
func (s *Session) Backup() (*rename.BackupResult, error) {
	s.mu.Lock()
	dir := s.folder
	s.mu.Unlock()
	if dir == "" {
		return nil, ErrNoFolder
	}
	return rename.Backup(dir, s.logger)
}

// State returns a snapshot of the session
func (s *Session) State() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Close releases the open document
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeDocumentLocked()
	return nil
}

func (s *Session) closeDocumentLocked() {
	if s.doc != nil {
		if err := s.doc.Close(); err != nil {
			s.logger.WithError(err).Warn("Failed to close PDF")
		}
	}
	s.doc = nil
	s.name = ""
	s.pager = geometry.Pager{}
	s.filename = ""
	s.text = ""
	s.items = nil
}
