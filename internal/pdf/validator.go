package pdf

import (
	"fmt"
	"os"

	apperrors "github.com/mrhoge/invoice-renamer/internal/errors"
)

// Validator runs the file level checks done before a PDF is parsed
type Validator struct {
	maxFileSize int64
}

// NewValidator creates a new PDF validator with the specified constraints
func NewValidator(maxFileSize int64) *Validator {
	return &Validator{
		maxFileSize: maxFileSize,
	}
}

// CheckFile validates path in a fixed order so that each failure maps to
// one error kind: missing, directory, empty, unreadable, too large.
func (v *Validator) CheckFile(path string) (os.FileInfo, error) {
	if path == "" {
		return nil, apperrors.New(apperrors.KindFileNotFound, "path cannot be empty")
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, apperrors.Wrap(apperrors.KindFileNotFound, "load", err).WithFile(path)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ClassifyFile(err), "load", err).WithFile(path)
	}

	if info.IsDir() {
		return nil, apperrors.New(apperrors.KindFileUnsupportedFormat,
			fmt.Sprintf("path is a directory, not a file: %s", path)).WithFile(path)
	}

	if info.Size() == 0 {
		return nil, apperrors.New(apperrors.KindFileCorrupted, "file is empty (0 bytes)").WithFile(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.KindFilePermissionDenied, "load", err).WithFile(path)
	}
	f.Close()

	if v.maxFileSize > 0 && info.Size() > v.maxFileSize {
		return nil, apperrors.New(apperrors.KindFileUnsupportedFormat,
			fmt.Sprintf("file too large: %d bytes (max: %d bytes)", info.Size(), v.maxFileSize)).WithFile(path)
	}

	return info, nil
}

// IsValidPDF performs a quick check to see if a file passes the file checks
func (v *Validator) IsValidPDF(path string) bool {
	_, err := v.CheckFile(path)
	return err == nil
}
