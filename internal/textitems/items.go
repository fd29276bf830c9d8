// Package textitems picks filename-worthy items out of invoice text: dates,
// invoice numbers, amounts and company names.
package textitems

import (
	"regexp"
	"strings"
)

var (
	datePattern    = regexp.MustCompile(`\p{Nd}{4}[-/年]\p{Nd}{1,2}[-/月]\p{Nd}{1,2}`)
	invoicePattern = regexp.MustCompile(`(請求書|インボイス|[Ii]nvoice)[-\s]?(No|NO|番号)?\.?\s*[\p{L}\p{N}_\-]+`)
	amountPattern  = regexp.MustCompile(`[\p{Nd},]+`)

	amountKeywords  = []string{"合計", "金額", "総額"}
	companyKeywords = []string{"株式会社", "有限会社", "合同会社", "Co., Ltd."}
)

// Extract returns the meaningful items found in text, in the order dates,
// invoice-number lines, amount lines, company lines, without duplicates.
func Extract(text string) []string {
	lines := Lines(text)
	if len(lines) == 0 {
		return []string{}
	}

	var dates, invoices, amounts, companies []string
	for _, line := range lines {
		dates = append(dates, datePattern.FindAllString(line, -1)...)

		if invoicePattern.MatchString(line) {
			invoices = append(invoices, line)
		}

		if isAmountLine(line) && amountPattern.MatchString(line) {
			amounts = append(amounts, line)
		}

		if len([]rune(line)) > 3 && containsAny(line, companyKeywords) {
			companies = append(companies, line)
		}
	}

	items := make([]string, 0, len(dates)+len(invoices)+len(amounts)+len(companies))
	seen := make(map[string]bool)
	for _, group := range [][]string{dates, invoices, amounts, companies} {
		for _, item := range group {
			if seen[item] {
				continue
			}
			seen[item] = true
			items = append(items, item)
		}
	}
	return items
}

// Lines splits text into trimmed, non-empty lines
func Lines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// AppendItem joins item onto the filename being built
func AppendItem(current, item string) string {
	if current == "" {
		return item
	}
	return current + "_" + item
}

func isAmountLine(line string) bool {
	lower := strings.ToLower(line)
	if strings.Contains(lower, "total") || strings.Contains(lower, "amount") {
		return true
	}
	return containsAny(line, amountKeywords)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
