// Package ocr recognises text in rendered page regions. It decides which
// Tesseract settings and image variants to try and scores the results; the
// recognition itself is delegated to an Engine.
package ocr

import (
	"context"
	"image"
	"strings"
)

// Language settings accepted by the recognizer
const (
	LangJapaneseEnglish = "jpn+eng"
	LangJapanese        = "jpn"
	LangEnglish         = "eng"
	LangAuto            = "auto"
)

// Page segmentation modes used here
const (
	PSMAuto        = 3
	PSMSingleBlock = 6
	PSMSingleLine  = 7
	PSMSingleWord  = 8
)

// Request holds the per-call engine settings
type Request struct {
	Languages      []string
	PSM            int
	PreserveSpaces bool
	Whitelist      string
	Blacklist      string
}

// Engine recognises the text of a single image. Implementations must be safe
// for concurrent use.
type Engine interface {
	Recognize(ctx context.Context, img image.Image, req Request) (string, error)
}

// SplitLanguages turns "jpn+eng" into {"jpn", "eng"}
func SplitLanguages(lang string) []string {
	var out []string
	for _, l := range strings.Split(lang, "+") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
