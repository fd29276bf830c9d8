package ocr

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

var (
	amountRe = regexp.MustCompile(`\p{Nd}+[,.]?\p{Nd}*\s*[円¥$€]`)
	dateRe   = regexp.MustCompile(`\p{Nd}{4}[-/年]\p{Nd}{1,2}[-/月]\p{Nd}{1,2}`)

	invoiceWords = []string{"請求書", "領収書", "invoice", "receipt", "合計", "total", "税込", "税抜"}
)

// penalised characters, including the vertical bar
const noisyChars = "§|°¢£¤¥¦©«®±²³´µ¶·¸¹º»¼½¾¿"

// Score rates how plausible a recognised text is for an invoice. Higher is
// better; the result is never negative.
func Score(text string, cfg Config) float64 {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	compact := strings.NewReplacer(" ", "", "\n", "").Replace(text)
	score := math.Min(float64(len([]rune(compact))), 20)

	var japanese, digits, letters, noisy int
	for _, r := range text {
		switch {
		case isKana(r) || (r >= 0x4E00 && r <= 0x9FAF):
			japanese++
		case unicode.IsDigit(r):
			digits++
		case r < unicode.MaxASCII && unicode.IsLetter(r):
			letters++
		}
		if strings.ContainsRune(noisyChars, r) {
			noisy++
		}
	}
	if japanese > 0 && strings.Contains(cfg.Lang, LangJapanese) {
		score += float64(japanese) * 2
	}
	score += float64(digits) * 1.5
	score += float64(letters)

	if amountRe.MatchString(text) {
		score += 15
	}
	if dateRe.MatchString(text) {
		score += 10
	}
	lower := strings.ToLower(text)
	for _, w := range invoiceWords {
		if strings.Contains(lower, w) {
			score += 8
		}
	}

	score -= float64(noisy) * 0.5

	unique := make(map[rune]struct{})
	for _, r := range compact {
		unique[r] = struct{}{}
	}
	if len(unique) > 5 {
		score += math.Min(float64(len(unique)-5), 10)
	}

	return math.Max(score, 0)
}

// Confidence maps a score onto [0, 1]
func Confidence(score float64) float64 {
	return math.Min(score/20, 1)
}

func isKana(r rune) bool {
	return (r >= 0x3040 && r <= 0x309F) || (r >= 0x30A0 && r <= 0x30FF)
}
