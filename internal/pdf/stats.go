package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// FolderStats summarises the PDFs of an invoice folder
type FolderStats struct {
	Directory        string     `json:"directory"`
	Files            []FileInfo `json:"files"`
	TotalFiles       int        `json:"total_files"`
	TotalSize        int64      `json:"total_size"`
	AverageFileSize  int64      `json:"average_file_size"`
	LargestFileName  string     `json:"largest_file_name,omitempty"`
	LargestFileSize  int64      `json:"largest_file_size"`
	SmallestFileName string     `json:"smallest_file_name,omitempty"`
	SmallestFileSize int64      `json:"smallest_file_size"`
}

// StatFolder describes the named files of dir. Files that vanished since
// they were listed are skipped.
func StatFolder(dir string, names []string) (*FolderStats, error) {
	if dir == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}

	stats := &FolderStats{Directory: dir, Files: make([]FileInfo, 0, len(names))}
	for _, name := range names {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}

		stats.Files = append(stats.Files, FileInfo{
			Path:         path,
			Name:         name,
			Size:         info.Size(),
			ModifiedTime: info.ModTime().Format("2006-01-02 15:04:05"),
		})
		stats.TotalSize += info.Size()

		if stats.LargestFileName == "" || info.Size() > stats.LargestFileSize {
			stats.LargestFileSize = info.Size()
			stats.LargestFileName = name
		}
		if stats.SmallestFileName == "" || info.Size() < stats.SmallestFileSize {
			stats.SmallestFileSize = info.Size()
			stats.SmallestFileName = name
		}
	}

	stats.TotalFiles = len(stats.Files)
	if stats.TotalFiles > 0 {
		stats.AverageFileSize = stats.TotalSize / int64(stats.TotalFiles)
	}
	return stats, nil
}

// Metadata is the document information dictionary
type Metadata struct {
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	Subject  string `json:"subject,omitempty"`
	Producer string `json:"producer,omitempty"`
	Created  string `json:"created,omitempty"`
}

// Metadata reads the Info dictionary. Missing or unreadable entries are left
// empty.
func (d *Document) Metadata() (meta Metadata) {
	r := d.textReader()
	if r == nil {
		return meta
	}

	// ledongthuc/pdf panics on some malformed trailers
	defer func() {
		if rec := recover(); rec != nil {
			d.logger.WithField("panic", rec).Debug("Metadata extraction failed")
		}
	}()

	trailer := r.Trailer()
	if trailer.IsNull() {
		return meta
	}
	info := trailer.Key("Info")
	if info.IsNull() {
		return meta
	}

	meta.Title = infoString(info, "Title")
	meta.Author = infoString(info, "Author")
	meta.Subject = infoString(info, "Subject")
	meta.Producer = infoString(info, "Producer")
	meta.Created = infoString(info, "CreationDate")
	return meta
}

func infoString(info pdf.Value, key string) string {
	v := info.Key(key)
	if v.IsNull() {
		return ""
	}
	return strings.TrimSpace(v.Text())
}
