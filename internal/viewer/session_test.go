package viewer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrhoge/invoice-renamer/internal/folder"
	"github.com/mrhoge/invoice-renamer/internal/geometry"
	"github.com/mrhoge/invoice-renamer/internal/logging"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte("%PDF-1.4\n"+n), 0o600))
	}
}

func newSession(t *testing.T, store *folder.Store) *Session {
	t.Helper()
	s := New(Options{
		Store:    store,
		Accounts: []string{"通信費", "消耗品費"},
		Logger:   logging.Discard(),
	})
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSession_OpenFolder(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.pdf", "a.PDF", "notes.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o750))

	stateDir := t.TempDir()
	store := folder.NewStore(stateDir, logging.Discard())
	s := newSession(t, store)

	files, err := s.OpenFolder(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.PDF", "b.pdf"}, files)
	assert.Equal(t, files, s.Files())
	assert.Equal(t, dir, store.LastFolder())

	st := s.State()
	assert.Equal(t, dir, st.Folder)
	assert.Empty(t, st.File)
	assert.Equal(t, 0, st.Pages)

	writeFiles(t, dir, "c.pdf")
	files, err = s.Refresh()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.PDF", "b.pdf", "c.pdf"}, files)
}

func TestSession_OpenFolderRejects(t *testing.T) {
	s := newSession(t, nil)

	_, err := s.OpenFolder(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, folder.ErrNotExist)

	file := filepath.Join(t.TempDir(), "x.pdf")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	_, err = s.OpenFolder(file)
	assert.ErrorIs(t, err, folder.ErrNotDirectory)

	_, err = s.Refresh()
	assert.ErrorIs(t, err, ErrNoFolder)
}

func TestSession_Restore(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "invoice.pdf")
	stateDir := t.TempDir()

	first := newSession(t, folder.NewStore(stateDir, logging.Discard()))
	_, err := first.OpenFolder(dir)
	require.NoError(t, err)

	second := newSession(t, folder.NewStore(stateDir, logging.Discard()))
	require.True(t, second.Restore())
	assert.Equal(t, []string{"invoice.pdf"}, second.Files())

	empty := newSession(t, folder.NewStore(t.TempDir(), logging.Discard()))
	assert.False(t, empty.Restore())
	assert.False(t, newSession(t, nil).Restore())
}

func TestSession_RequiresDocument(t *testing.T) {
	s := newSession(t, nil)
	ctx := context.Background()

	_, err := s.Open("a.pdf")
	assert.ErrorIs(t, err, ErrNoFolder)

	_, err = s.Next()
	assert.ErrorIs(t, err, ErrNoDocument)
	_, err = s.Prev()
	assert.ErrorIs(t, err, ErrNoDocument)
	_, err = s.Display(geometry.Size{W: 800, H: 600})
	assert.ErrorIs(t, err, ErrNoDocument)
	_, err = s.Preview(ctx)
	assert.ErrorIs(t, err, ErrNoDocument)
	_, err = s.ResetFilename()
	assert.ErrorIs(t, err, ErrNoDocument)
	_, err = s.Rename(ctx)
	assert.ErrorIs(t, err, ErrNoDocument)
	_, err = s.Select(ctx, geometry.ViewRect{X: 0, Y: 0, W: 50, H: 50}, geometry.Size{W: 800, H: 600}, "", false)
	assert.ErrorIs(t, err, ErrNoDocument)
	_, err = s.Backup()
	assert.ErrorIs(t, err, ErrNoFolder)
}

func TestSession_OpenRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.pdf"), []byte("not a pdf at all"), 0o600))

	s := newSession(t, nil)
	_, err := s.OpenFolder(dir)
	require.NoError(t, err)

	_, err = s.Open("broken.pdf")
	assert.Error(t, err)
	_, err = s.Open("../outside.pdf")
	assert.Error(t, err)
	_, err = s.Open("missing.pdf")
	assert.Error(t, err)

	assert.Empty(t, s.State().File)
}

func TestSession_SelectTooSmall(t *testing.T) {
	s := newSession(t, nil)
	for _, r := range []geometry.ViewRect{
		{X: 0, Y: 0, W: 10, H: 50},
		{X: 0, Y: 0, W: 50, H: 10},
		{X: 5, Y: 5, W: 3, H: 3},
	} {
		_, err := s.Select(context.Background(), r, geometry.Size{W: 800, H: 600}, "", false)
		assert.ErrorIs(t, err, ErrSelectionTooSmall, r.String())
	}
}

func TestSession_FilenameBuffer(t *testing.T) {
	s := newSession(t, nil)

	name, err := s.AddItem("株式会社テスト", false)
	require.NoError(t, err)
	assert.Equal(t, "株式会社テスト", name)

	name, err = s.AddItem("令和7年6月16日", true)
	require.NoError(t, err)
	assert.Equal(t, "株式会社テスト_2025-06-16", name)

	name, err = s.AddAccount("通信費")
	require.NoError(t, err)
	assert.Equal(t, "株式会社テスト_2025-06-16_通信費", name)

	name, err = s.AddAccount("未登録の科目")
	require.NoError(t, err)
	assert.Equal(t, "株式会社テスト_2025-06-16_通信費_未登録の科目", name)

	_, err = s.AddItem("   ", false)
	assert.ErrorIs(t, err, ErrEmptyItem)
	_, err = s.AddAccount("")
	assert.ErrorIs(t, err, ErrEmptyItem)

	assert.Equal(t, "manual", s.SetFilename("  manual "))
	assert.Equal(t, "manual", s.State().Filename)
	assert.Equal(t, []string{"通信費", "消耗品費"}, s.Accounts())
}

func TestSession_Zoom(t *testing.T) {
	s := newSession(t, nil)
	assert.Equal(t, 1.25, s.ZoomIn().Zoom)
	assert.Equal(t, 1.5, s.ZoomIn().Zoom)
	assert.Equal(t, 1.25, s.ZoomOut().Zoom)
	assert.Equal(t, 1.0, s.ZoomReset().Zoom)

	for i := 0; i < 10; i++ {
		s.ZoomOut()
	}
	assert.Equal(t, geometry.MinZoom, s.State().Zoom)
}

func TestSession_Backup(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.pdf", "b.pdf")

	s := newSession(t, nil)
	_, err := s.OpenFolder(dir)
	require.NoError(t, err)

	res, err := s.Backup()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, res.Copied)
	assert.FileExists(t, filepath.Join(dir, "work", "a.pdf"))
	assert.FileExists(t, filepath.Join(dir, "work", "b.pdf"))
}
