package ocr

import (
	"regexp"
	"strings"
)

// InvalidChars never occur in invoices and are dropped from OCR output
const InvalidChars = "§°¢£¤¥¦©«®±²³´µ¶·¸¹º»¼½¾¿"

// blacklist passed to the engine in normal mode
const engineBlacklist = "§°¢£¤¥¦©«®±²³´µ¶·¸¹º»¼½¾"

var (
	symbolRunRe = regexp.MustCompile(`[|§°]{2,}`)
	alnumRe     = regexp.MustCompile(`[a-zA-Z0-9]`)
)

// FilterInvalid removes noise from OCR output: invalid characters, runs of
// bars, and lines with neither Japanese nor ASCII alphanumerics.
func FilterInvalid(text string) string {
	if text == "" {
		return text
	}

	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(InvalidChars, r) {
			return -1
		}
		return r
	}, text)
	cleaned = symbolRunRe.ReplaceAllString(cleaned, "")

	var lines []string
	for _, line := range strings.Split(cleaned, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if ContainsJapanese(line) || alnumRe.MatchString(line) {
			lines = append(lines, line)
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// ContainsJapanese reports whether text has hiragana, katakana, CJK
// ideographs or halfwidth katakana
func ContainsJapanese(text string) bool {
	for _, r := range text {
		switch {
		case isKana(r),
			r >= 0x4E00 && r <= 0x9FAF,
			r >= 0x3400 && r <= 0x4DBF,
			r >= 0xFF66 && r <= 0xFF9D:
			return true
		}
	}
	return false
}
