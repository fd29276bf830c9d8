package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract runs recognition through the native Tesseract library. A new
// client is created per call since gosseract clients are not goroutine safe.
type Tesseract struct {
	tessdataPrefix string
}

// NewTesseract creates an engine. An empty prefix uses Tesseract's default
// tessdata location.
func NewTesseract(tessdataPrefix string) *Tesseract {
	return &Tesseract{tessdataPrefix: tessdataPrefix}
}

// Recognize implements Engine
func (t *Tesseract) Recognize(ctx context.Context, img image.Image, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode image: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.tessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.tessdataPrefix); err != nil {
			return "", fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(req.Languages...); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}
	if req.PSM > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(req.PSM)); err != nil {
			return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
		}
	}
	if req.PreserveSpaces {
		if err := client.SetVariable(gosseract.SettableVariable("preserve_interword_spaces"), "1"); err != nil {
			return "", fmt.Errorf("failed to set variable: %w", err)
		}
	}
	if req.Whitelist != "" {
		if err := client.SetWhitelist(req.Whitelist); err != nil {
			return "", fmt.Errorf("failed to set whitelist: %w", err)
		}
	}
	if req.Blacklist != "" {
		if err := client.SetBlacklist(req.Blacklist); err != nil {
			return "", fmt.Errorf("failed to set blacklist: %w", err)
		}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract OCR failed: %w", err)
	}
	return text, nil
}
