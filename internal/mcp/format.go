package mcp

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mrhoge/invoice-renamer/internal/ocr"
	"github.com/mrhoge/invoice-renamer/internal/pdf"
	"github.com/mrhoge/invoice-renamer/internal/rename"
	"github.com/mrhoge/invoice-renamer/internal/viewer"
)

// maxListedFiles limits the folder listing in server info
const maxListedFiles = 10

func formatFolder(stats *pdf.FolderStats) string {
	if stats.TotalFiles == 0 {
		return fmt.Sprintf("No PDF files found in folder: %s", stats.Directory)
	}

	text := fmt.Sprintf("Found %d PDF file(s) in folder: %s\n", stats.TotalFiles, stats.Directory)
	text += fmt.Sprintf("Total size: %d bytes\n", stats.TotalSize)
	text += "\nFiles:\n"
	for i, file := range stats.Files {
		text += fmt.Sprintf("%d. %s (%d bytes, modified %s)\n", i+1, file.Name, file.Size, file.ModifiedTime)
	}
	return text
}

func formatOpened(state *viewer.State, info pdf.Info, meta pdf.Metadata) string {
	text := fmt.Sprintf("Opened PDF: %s\n", state.File)
	text += fmt.Sprintf("Pages: %d\n", info.Pages)
	text += fmt.Sprintf("Size: %d bytes\n", info.Size)
	text += fmt.Sprintf("Renderer: %s\n", info.Handler)
	if meta.Title != "" {
		text += fmt.Sprintf("Title: %s\n", meta.Title)
	}
	if meta.Producer != "" {
		text += fmt.Sprintf("Producer: %s\n", meta.Producer)
	}
	if meta.Created != "" {
		text += fmt.Sprintf("Created: %s\n", meta.Created)
	}
	text += "\n" + formatPageText(state)
	return text
}

func formatState(state *viewer.State) string {
	text := ""
	if state.Folder != "" {
		text += fmt.Sprintf("Folder: %s (%d PDF file(s))\n", state.Folder, len(state.Files))
	} else {
		text += "Folder: none\n"
	}
	if state.File == "" {
		text += "File: none\n"
		text += fmt.Sprintf("Zoom: %.0f%%\n", state.Zoom*100)
		return text
	}
	text += fmt.Sprintf("File: %s\n", state.File)
	text += fmt.Sprintf("%s\n", state.Label)
	if state.PageSize != nil {
		text += fmt.Sprintf("Page size: %.1fx%.1f pt\n", state.PageSize.W, state.PageSize.H)
	}
	text += fmt.Sprintf("Filename: %s\n", state.Filename)
	return text
}

func formatPageText(state *viewer.State) string {
	text := fmt.Sprintf("%s\n", state.Label)
	if strings.TrimSpace(state.Text) == "" {
		text += "\nNo text layer on this page. Select a region to run OCR.\n"
	} else {
		text += "\nText:\n" + state.Text + "\n"
	}
	if len(state.Items) > 0 {
		text += "\n" + formatList("Items", state.Items)
	}
	return text
}

func formatList(title string, items []string) string {
	if len(items) == 0 {
		return fmt.Sprintf("%s: none\n", title)
	}
	text := fmt.Sprintf("%s:\n", title)
	for i, item := range items {
		text += fmt.Sprintf("%d. %s\n", i+1, item)
	}
	return text
}

func formatSelection(result *viewer.SelectResult) string {
	text := result.Bubble + "\n"
	if len(result.Items) > 0 {
		text += "\n" + formatList("Items", result.Items)
	}
	return text
}

func formatRecognition(result *ocr.BestResult) string {
	if result.Failed {
		return "OCR failed for the region: " + result.Note
	}
	if result.Text == "" {
		return "No text recognized in the region."
	}
	text := "Recognized text:\n\n" + result.Text + "\n\n"
	text += fmt.Sprintf("Score: %.1f\n", result.Score)
	text += fmt.Sprintf("Confidence: %.0f%%\n", result.Confidence*100)
	text += fmt.Sprintf("Image variant: %s\n", result.Variant)
	return text
}

func formatRename(result *rename.Result, remaining []string) string {
	text := fmt.Sprintf("Renamed %s to %s\n", result.OriginalName, result.NewName)
	text += fmt.Sprintf("Renamed copy: %s\n", result.RenamedDest)
	text += fmt.Sprintf("Original moved to: %s\n", result.OriginalDest)
	if result.Normalized {
		var pairs []string
		for _, r := range result.Replaced {
			pairs = append(pairs, fmt.Sprintf("%c → %c", r.From, r.To))
		}
		text += "Characters not allowed in filenames were replaced"
		if len(pairs) > 0 {
			text += ": " + strings.Join(pairs, ", ")
		}
		text += "\n"
	}
	text += fmt.Sprintf("\n%d PDF file(s) left in the folder\n", len(remaining))
	return text
}

func formatBackup(result *rename.BackupResult) string {
	text := fmt.Sprintf("Backed up %d file(s) to %s\n", len(result.Copied), result.WorkDir)
	if result.Failed != nil && !result.Failed.Empty() {
		text += result.Failed.Summary() + "\n"
		for _, err := range append(result.Failed.Errors, result.Failed.Warnings...) {
			text += fmt.Sprintf("  - %s: %v\n", filepath.Base(err.FilePath), err)
		}
	}
	return text
}

func (s *Server) formatServerInfo() string {
	cfg := s.config
	text := fmt.Sprintf("%s v%s - Server Information\n", cfg.ServerName, cfg.Version)
	text += fmt.Sprintf("Mode: %s\n", cfg.Mode)
	text += fmt.Sprintf("Max File Size: %d MB\n", cfg.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("PDF renderer: %s\n", cfg.PDF.Handler)
	text += fmt.Sprintf("OCR language: %s\n", cfg.OCR.Language)
	text += fmt.Sprintf("Reading order tolerance: %.1f\n", cfg.Tolerance())

	stats := s.session.PreviewStats()
	text += fmt.Sprintf("\nPreview cache: %d/%d pages, %d hits, %d misses (%.1f%% hit rate)\n",
		stats.Size, stats.Capacity, stats.Hits, stats.Misses, stats.HitRate)

	state := s.session.State()
	if state.Folder == "" {
		text += "\nFolder: none open\n"
		return text
	}
	text += fmt.Sprintf("\nFolder: %s (%d PDF files)\n", state.Folder, len(state.Files))
	for i, name := range state.Files {
		if i >= maxListedFiles {
			text += fmt.Sprintf("   ... and %d more files\n", len(state.Files)-maxListedFiles)
			break
		}
		text += fmt.Sprintf("   %d. %s\n", i+1, name)
	}
	if state.File != "" {
		text += fmt.Sprintf("Open file: %s (%s)\n", state.File, state.Label)
	}
	return text
}
