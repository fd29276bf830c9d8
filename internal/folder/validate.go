// Package folder validates and remembers the invoice folder and keeps file
// access inside it.
package folder

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ErrEmptyPath     = errors.New("folder path is empty")
	ErrRelativePath  = errors.New("folder path is not absolute")
	ErrDangerousChar = errors.New("folder path contains control characters")
	ErrNotExist      = errors.New("folder does not exist")
	ErrNotDirectory  = errors.New("folder path is not a directory")
	ErrNotReadable   = errors.New("folder is not readable")
)

// dangerousChars never appear in a folder picked by a user; their presence
// means the saved state was tampered with
const dangerousChars = "\x00\n\r\t"

// ValidateLastFolder checks a remembered folder before it is reopened. Each
// failure returns a distinct sentinel error.
func ValidateLastFolder(path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrEmptyPath
	}
	if !filepath.IsAbs(path) {
		return ErrRelativePath
	}
	if strings.ContainsAny(path, dangerousChars) {
		return ErrDangerousChar
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotExist
		}
		return ErrNotReadable
	}
	if !info.IsDir() {
		return ErrNotDirectory
	}

	dir, err := os.Open(path)
	if err != nil {
		return ErrNotReadable
	}
	defer dir.Close()
	if _, err := dir.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		return ErrNotReadable
	}
	return nil
}

// ListPDFs returns the names of the PDF files directly inside dir, sorted.
// The extension match is case-insensitive.
func ListPDFs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
