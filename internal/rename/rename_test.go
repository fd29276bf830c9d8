package rename

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mrhoge/invoice-renamer/internal/errors"
	"github.com/mrhoge/invoice-renamer/internal/logging"
)

func TestNormalizeFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "2024-01-02_会議費", "2024-01-02_会議費"},
		{"reserved", `a\b/c:d*e?f<g>h|i`, "a＼b／c：d＊e？f＜g＞h｜i"},
		{"quote kept", `say "hi"`, `say "hi"`},
		{"whitespace trimmed", "  name  ", "name"},
		{"dots trimmed", "..name..", "name"},
		{"dots then spaces", " .name. ", "name"},
		{"only dots", "...", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeFilename(tt.in))
		})
	}
}

func TestReplacements(t *testing.T) {
	got := Replacements("a/b/c:d")
	assert.Equal(t, []Replacement{{From: '/', To: '／'}, {From: ':', To: '：'}}, got)
	assert.Empty(t, Replacements("clean"))
}

func TestTargetName(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  error
	}{
		{"invoice", "invoice.pdf", nil},
		{"invoice.PDF", "invoice.pdf", nil},
		{"a/b.pdf", "a／b.pdf", nil},
		{"  ", "", ErrEmptyName},
		{".pdf", "", ErrEmptyName},
	}

	for _, tt := range tests {
		got, err := TargetName(tt.in)
		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func newFixture(t *testing.T) (dir, src string) {
	t.Helper()
	dir = t.TempDir()
	src = filepath.Join(dir, "scan001.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4 test"), 0o600))
	mtime := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(src, mtime, mtime))
	return dir, src
}

func TestRename(t *testing.T) {
	dir, src := newFixture(t)
	r := NewRenamer(logging.Discard())

	closed := false
	res, err := r.Rename(context.Background(), Request{
		Path:    src,
		Folder:  dir,
		NewName: "2024-03-15_会議費/打合せ",
	}, func() error {
		closed = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, closed)

	assert.Equal(t, "scan001.pdf", res.OriginalName)
	assert.Equal(t, "2024-03-15_会議費／打合せ.pdf", res.NewName)
	assert.True(t, res.Normalized)
	assert.Equal(t, filepath.Join(dir, RenamedDir, res.NewName), res.RenamedDest)
	assert.Equal(t, filepath.Join(dir, OriginalDir, "scan001.pdf"), res.OriginalDest)

	assert.NoFileExists(t, src)
	assert.FileExists(t, res.OriginalDest)

	data, err := os.ReadFile(res.RenamedDest)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 test", string(data))

	info, err := os.Stat(res.RenamedDest)
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)))
}

func TestRename_OriginalCollisionGetsTimestamp(t *testing.T) {
	dir, src := newFixture(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, OriginalDir), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, OriginalDir, "scan001.pdf"), []byte("old"), 0o600))

	r := NewRenamer(logging.Discard())
	r.now = func() time.Time { return time.Date(2025, 1, 16, 9, 8, 7, 0, time.Local) }

	res, err := r.Rename(context.Background(), Request{Path: src, Folder: dir, NewName: "new"}, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, OriginalDir, "scan001_20250116_090807.pdf"), res.OriginalDest)
	assert.False(t, res.Normalized)

	old, err := os.ReadFile(filepath.Join(dir, OriginalDir, "scan001.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "old", string(old))
}

func TestRename_Rejections(t *testing.T) {
	t.Run("unchanged", func(t *testing.T) {
		dir, src := newFixture(t)
		_, err := NewRenamer(logging.Discard()).Rename(context.Background(),
			Request{Path: src, Folder: dir, NewName: "scan001.pdf"}, nil)
		assert.ErrorIs(t, err, ErrUnchanged)
		assert.FileExists(t, src)
	})

	t.Run("empty", func(t *testing.T) {
		dir, src := newFixture(t)
		_, err := NewRenamer(logging.Discard()).Rename(context.Background(),
			Request{Path: src, Folder: dir, NewName: " .. "}, nil)
		assert.ErrorIs(t, err, ErrEmptyName)
	})

	t.Run("duplicate in renamed", func(t *testing.T) {
		dir, src := newFixture(t)
		require.NoError(t, os.MkdirAll(filepath.Join(dir, RenamedDir), 0o750))
		require.NoError(t, os.WriteFile(filepath.Join(dir, RenamedDir, "taken.pdf"), nil, 0o600))

		_, err := NewRenamer(logging.Discard()).Rename(context.Background(),
			Request{Path: src, Folder: dir, NewName: "taken"}, nil)
		assert.ErrorIs(t, err, ErrExists)
		assert.FileExists(t, src)
	})

	t.Run("missing file", func(t *testing.T) {
		dir := t.TempDir()
		_, err := NewRenamer(logging.Discard()).Rename(context.Background(),
			Request{Path: filepath.Join(dir, "gone.pdf"), Folder: dir, NewName: "x"}, nil)
		var appErr *apperrors.Error
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperrors.KindFileNotFound, appErr.Kind)
	})

	t.Run("missing folder", func(t *testing.T) {
		_, src := newFixture(t)
		_, err := NewRenamer(logging.Discard()).Rename(context.Background(),
			Request{Path: src, Folder: filepath.Join(t.TempDir(), "nope"), NewName: "x"}, nil)
		assert.Equal(t, apperrors.KindFileNotFound, apperrors.KindOf(err))
	})

	t.Run("cancelled", func(t *testing.T) {
		dir, src := newFixture(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewRenamer(logging.Discard()).Rename(ctx,
			Request{Path: src, Folder: dir, NewName: "x"}, nil)
		assert.Equal(t, apperrors.KindOperationCancelled, apperrors.KindOf(err))
		assert.FileExists(t, src)
	})
}

func TestBackup(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.pdf", "B.PDF", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o600))
	}

	res, err := Backup(dir, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, WorkDir), res.WorkDir)
	assert.Equal(t, []string{"B.PDF", "a.pdf"}, res.Copied)
	assert.True(t, res.Failed.Empty())
	assert.FileExists(t, filepath.Join(dir, WorkDir, "a.pdf"))
	assert.NoFileExists(t, filepath.Join(dir, WorkDir, "notes.txt"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("updated"), 0o600))
	_, err = Backup(dir, logging.Discard())
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, WorkDir, "a.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "updated", string(data))
}

func TestBackup_NotADirectory(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file.pdf")
	require.NoError(t, os.WriteFile(file, nil, 0o600))

	_, err := Backup(file, logging.Discard())
	assert.Error(t, err)
}
