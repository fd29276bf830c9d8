package pdf

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStatFolder(t *testing.T) {
	dir := t.TempDir()
	sizes := map[string]int{"a.pdf": 100, "b.pdf": 300, "c.pdf": 200}
	for name, size := range sizes {
		if err := os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0o644); err != nil {
			t.Fatalf("failed to create test file %s: %v", name, err)
		}
	}

	stats, err := StatFolder(dir, []string{"a.pdf", "b.pdf", "c.pdf", "gone.pdf"})
	if err != nil {
		t.Fatalf("StatFolder() error = %v", err)
	}

	if stats.TotalFiles != 3 {
		t.Errorf("TotalFiles = %d, want 3", stats.TotalFiles)
	}
	if stats.TotalSize != 600 {
		t.Errorf("TotalSize = %d, want 600", stats.TotalSize)
	}
	if stats.AverageFileSize != 200 {
		t.Errorf("AverageFileSize = %d, want 200", stats.AverageFileSize)
	}
	if stats.LargestFileName != "b.pdf" || stats.LargestFileSize != 300 {
		t.Errorf("largest = %s (%d), want b.pdf (300)", stats.LargestFileName, stats.LargestFileSize)
	}
	if stats.SmallestFileName != "a.pdf" || stats.SmallestFileSize != 100 {
		t.Errorf("smallest = %s (%d), want a.pdf (100)", stats.SmallestFileName, stats.SmallestFileSize)
	}
	if stats.Files[0].Name != "a.pdf" || stats.Files[0].Path != filepath.Join(dir, "a.pdf") {
		t.Errorf("unexpected first file: %+v", stats.Files[0])
	}
}

func TestStatFolder_Empty(t *testing.T) {
	stats, err := StatFolder(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("StatFolder() error = %v", err)
	}
	if stats.TotalFiles != 0 || stats.AverageFileSize != 0 || stats.LargestFileName != "" {
		t.Errorf("expected empty stats, got %+v", stats)
	}

	if _, err := StatFolder("", nil); err == nil {
		t.Error("expected error for empty directory")
	}
}
