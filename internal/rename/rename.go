package rename

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"

	apperrors "github.com/mrhoge/invoice-renamer/internal/errors"
)

const (
	OriginalDir = "original"
	RenamedDir  = "renamed"

	lockName        = ".invoice-renamer.lock"
	timestampLayout = "20060102_150405"
)

var (
	ErrEmptyName = errors.New("file name is empty")
	ErrUnchanged = errors.New("file name is unchanged")
	ErrExists    = errors.New("a file with the same name already exists in renamed/")
	ErrBusy      = errors.New("another rename is in progress in this folder")
)

// Request describes one rename
type Request struct {
	Path    string `json:"path"`
	Folder  string `json:"folder"`
	NewName string `json:"new_name"`
}

// Result reports where the file ended up
type Result struct {
	OriginalName string        `json:"original_name"`
	NewName      string        `json:"new_name"`
	OriginalDest string        `json:"original_dest"`
	RenamedDest  string        `json:"renamed_dest"`
	Normalized   bool          `json:"normalized"`
	Replaced     []Replacement `json:"replaced,omitempty"`
}

// Renamer performs renames inside an invoice folder
type Renamer struct {
	logger logrus.FieldLogger
	now    func() time.Time
}

// NewRenamer creates a renamer
func NewRenamer(logger logrus.FieldLogger) *Renamer {
	return &Renamer{logger: logger, now: time.Now}
}

// TargetName derives the final file name from user input: a trailing .pdf is
// dropped, the rest normalised and .pdf appended again.
func TargetName(input string) (string, error) {
	name := strings.TrimSpace(input)
	if strings.HasSuffix(strings.ToLower(name), ".pdf") {
		name = name[:len(name)-len(".pdf")]
	}
	name = NormalizeFilename(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name + ".pdf", nil
}

// Rename copies req.Path into renamed/<new name> and moves the source into
// original/. beforeMove runs between the two steps so the caller can release
// any handle on the source file; it may be nil.
func (r *Renamer) Rename(ctx context.Context, req Request, beforeMove func() error) (*Result, error) {
	if _, err := os.Stat(req.Path); err != nil {
		return nil, apperrors.Wrap(apperrors.ClassifyFile(err), "rename", err).WithFile(req.Path)
	}
	if info, err := os.Stat(req.Folder); err != nil || !info.IsDir() {
		if err == nil {
			err = fmt.Errorf("not a directory: %s", req.Folder)
		}
		return nil, apperrors.Wrap(apperrors.KindFileNotFound, "rename", err).WithFile(req.Folder)
	}

	newName, err := TargetName(req.NewName)
	if err != nil {
		return nil, err
	}
	oldName := filepath.Base(req.Path)
	if newName == oldName {
		return nil, ErrUnchanged
	}

	lock := flock.New(filepath.Join(req.Folder, lockName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire folder lock: %w", err)
	}
	if !locked {
		return nil, ErrBusy
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			r.logger.WithError(err).Warn("Failed to release folder lock")
		}
	}()

	originalDir := filepath.Join(req.Folder, OriginalDir)
	renamedDir := filepath.Join(req.Folder, RenamedDir)
	for _, dir := range []string{originalDir, renamedDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, apperrors.Wrap(apperrors.ClassifyFile(err), "rename", err).WithFile(dir)
		}
	}

	renamedDest := filepath.Join(renamedDir, newName)
	if _, err := os.Stat(renamedDest); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, newName)
	}

	originalDest := filepath.Join(originalDir, oldName)
	if _, err := os.Stat(originalDest); err == nil {
		ext := filepath.Ext(oldName)
		stem := strings.TrimSuffix(oldName, ext)
		originalDest = filepath.Join(originalDir, stem+"_"+r.now().Format(timestampLayout)+ext)
	}

	if err := ctx.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindOperationCancelled, "rename", err)
	}

	if err := CopyFile(req.Path, renamedDest); err != nil {
		return nil, apperrors.Wrap(apperrors.ClassifyFile(err), "copy", err).WithFile(renamedDest)
	}

	if beforeMove != nil {
		if err := beforeMove(); err != nil {
			r.logger.WithError(err).Warn("Failed to release document before move")
		}
	}

	if err := moveFile(req.Path, originalDest); err != nil {
		return nil, apperrors.Wrap(apperrors.ClassifyFile(err), "move", err).WithFile(originalDest)
	}

	r.logger.WithFields(logrus.Fields{
		"from":     oldName,
		"renamed":  renamedDest,
		"original": originalDest,
	}).Info("File renamed")

	replaced := Replacements(req.NewName)
	return &Result{
		OriginalName: oldName,
		NewName:      newName,
		OriginalDest: originalDest,
		RenamedDest:  renamedDest,
		Normalized:   len(replaced) > 0,
		Replaced:     replaced,
	}, nil
}

// CopyFile copies src to dst and carries the modification time over to both
// access and modification time of the copy.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}
	if err := CopyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}
