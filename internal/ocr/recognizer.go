package ocr

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// EarlyExitScore ends the thorough search once a result scores above it
const EarlyExitScore = 50

// Fallback stages, in the order they are tried
const (
	StageFallback     = "image_fallback"
	StagePreprocessed = "image_preprocessed"
	StageNoText       = "image_no_text"
)

// BestResult is the outcome of the thorough search
type BestResult struct {
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
	Config     Config  `json:"config"`
	Variant    string  `json:"variant"`
	// Failed is set when no engine attempt succeeded; Note then describes
	// the image instead of Text.
	Failed bool   `json:"failed,omitempty"`
	Note   string `json:"note,omitempty"`
}

// FallbackResult is what the fallback chain managed to recover
type FallbackResult struct {
	Text       string  `json:"text"`
	Stage      string  `json:"stage"`
	Confidence float64 `json:"confidence"`
	Source     string  `json:"source"`
}

// Recognizer chooses settings and image variants for an Engine
type Recognizer struct {
	engine Engine
	logger logrus.FieldLogger
}

// NewRecognizer creates a recognizer
func NewRecognizer(engine Engine, logger logrus.FieldLogger) *Recognizer {
	return &Recognizer{engine: engine, logger: logger}
}

// Best tries every config for the language against every image variant and
// keeps the highest scoring filtered text. Variants of one config run
// concurrently; the search stops after the first config that produced a score
// above EarlyExitScore. Engine errors for single attempts are skipped; when
// every attempt fails the result is marked Failed with a note on the image.
func (r *Recognizer) Best(ctx context.Context, img image.Image, language string) (*BestResult, error) {
	variants := Variants(Shrink(img))
	best := &BestResult{}
	succeeded := false

	for i, cfg := range ConfigsFor(language) {
		texts := make([]string, len(variants))
		ok := make([]bool, len(variants))
		g, gctx := errgroup.WithContext(ctx)
		for j, v := range variants {
			g.Go(func() error {
				text, err := r.engine.Recognize(gctx, v.Image, cfg.Request())
				if err != nil {
					if gctx.Err() != nil {
						return gctx.Err()
					}
					r.logger.WithError(err).WithFields(logrus.Fields{
						"config":  i + 1,
						"variant": v.Name,
					}).Debug("OCR attempt failed")
					return nil
				}
				texts[j] = FilterInvalid(strings.TrimSpace(text))
				ok[j] = true
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for _, done := range ok {
			succeeded = succeeded || done
		}

		for j, text := range texts {
			if text == "" {
				continue
			}
			score := Score(text, cfg)
			if score > best.Score {
				*best = BestResult{Text: text, Score: score, Config: cfg, Variant: variants[j].Name}
				r.logger.WithFields(logrus.Fields{
					"score":   score,
					"config":  i + 1,
					"variant": variants[j].Name,
				}).Debug("New best OCR result")
				if score > EarlyExitScore {
					break
				}
			}
		}
		if best.Score > EarlyExitScore {
			break
		}
	}

	if !succeeded {
		b := img.Bounds()
		best.Failed = true
		best.Note = failedNote(b.Dx(), b.Dy())
		r.logger.WithField("variants", len(variants)).Warn("Every OCR attempt failed")
	}
	best.Confidence = Confidence(best.Score)
	return best, nil
}

// Simple is the single-pass recognition used for interactive selections.
// Quick mode skips the engine blacklist. "auto" tries Japanese and English
// first and falls back to English when no Japanese is found; "jpn+eng" output
// without Japanese is retried with Japanese only.
func (r *Recognizer) Simple(ctx context.Context, img image.Image, language string, quick bool) (string, error) {
	req := Request{PSM: PSMSingleBlock, PreserveSpaces: true}
	if !quick {
		req.Blacklist = engineBlacklist
	}

	if language == LangAuto {
		return r.auto(ctx, img, req, quick)
	}

	req.Languages = SplitLanguages(language)
	text, err := r.engine.Recognize(ctx, img, req)
	if err != nil {
		return "", err
	}

	if language == LangJapaneseEnglish && (strings.TrimSpace(text) == "" || !ContainsJapanese(text)) {
		jpn, err := r.engine.Recognize(ctx, img, Request{Languages: []string{LangJapanese}, PSM: PSMSingleBlock})
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(jpn) != "" && ContainsJapanese(jpn) {
			if !quick {
				r.logger.WithField("text", preview(jpn, 50)).Info("Retried with Japanese only")
			}
			text = jpn
		}
	}
	return text, nil
}

func (r *Recognizer) auto(ctx context.Context, img image.Image, req Request, quick bool) (string, error) {
	req.Languages = SplitLanguages(LangJapaneseEnglish)
	jpn, err := r.engine.Recognize(ctx, img, req)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(jpn) != "" && ContainsJapanese(jpn) {
		if !quick {
			r.logger.WithField("text", preview(jpn, 50)).Info("Japanese detected")
		}
		return jpn, nil
	}

	req.Languages = []string{LangEnglish}
	eng, err := r.engine.Recognize(ctx, img, req)
	if err != nil {
		return "", err
	}
	if !quick {
		r.logger.WithField("text", preview(eng, 50)).Info("Falling back to English")
	}
	if strings.TrimSpace(eng) != "" {
		return eng, nil
	}
	return jpn, nil
}

// Fallback recovers what it can after Simple failed: simpler segmentation
// modes first, then a grayscale upscaled copy, and finally a placeholder
// describing the image.
func (r *Recognizer) Fallback(ctx context.Context, img image.Image) *FallbackResult {
	langs := SplitLanguages(LangJapaneseEnglish)
	for _, psm := range []int{PSMSingleWord, PSMSingleLine, PSMSingleBlock, PSMAuto} {
		text, err := r.engine.Recognize(ctx, img, Request{Languages: langs, PSM: psm})
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			r.logger.WithField("psm", psm).Debug("OCR fallback succeeded")
			return &FallbackResult{Text: text, Stage: StageFallback, Confidence: 0.3, Source: "OCR_fallback"}
		}
	}

	text, err := r.engine.Recognize(ctx, simplePreprocess(img), Request{Languages: langs, PSM: PSMSingleBlock})
	if err == nil {
		if text = strings.TrimSpace(text); text != "" {
			return &FallbackResult{Text: text, Stage: StagePreprocessed, Confidence: 0.2, Source: "OCR_preprocessed"}
		}
	}

	b := img.Bounds()
	return &FallbackResult{
		Text:       failedNote(b.Dx(), b.Dy()),
		Stage:      StageNoText,
		Confidence: 0,
		Source:     "fallback_image_only",
	}
}

func failedNote(w, h int) string {
	return fmt.Sprintf("image element (OCR failed) - size %dx%d", w, h)
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
