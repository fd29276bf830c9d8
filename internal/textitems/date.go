package textitems

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// Start years of the Japanese eras, year 1 of each era
var eraStartYears = map[string]int{
	"令和": 2019,
	"平成": 1989,
	"昭和": 1926,
	"大正": 1912,
	"明治": 1868,
}

type dateRule struct {
	re      *regexp.Regexp
	convert func(groups []string) (string, bool)
}

var (
	isoDate = regexp.MustCompile(`\p{Nd}{4}-\p{Nd}{2}-\p{Nd}{2}`)

	dateRules = []dateRule{
		{
			re: regexp.MustCompile(`(令和|平成|昭和|大正|明治)(\p{Nd}{1,2}|元)年(\p{Nd}{1,2})月(\p{Nd}{1,2})日?`),
			convert: func(g []string) (string, bool) {
				n := 1
				if g[2] != "元" {
					v, ok := atoi(g[2])
					if !ok {
						return "", false
					}
					n = v
				}
				return ymd(eraStartYears[g[1]]+n-1, g[3], g[4])
			},
		},
		{
			re: regexp.MustCompile(`(\p{Nd}{4})年(\p{Nd}{1,2})月(\p{Nd}{1,2})日?`),
			convert: func(g []string) (string, bool) {
				y, ok := atoi(g[1])
				if !ok {
					return "", false
				}
				return ymd(y, g[2], g[3])
			},
		},
		{
			re: regexp.MustCompile(`(\p{Nd}{4})[/.](\p{Nd}{1,2})[/.](\p{Nd}{1,2})`),
			convert: func(g []string) (string, bool) {
				y, ok := atoi(g[1])
				if !ok {
					return "", false
				}
				return ymd(y, g[2], g[3])
			},
		},
		{
			re: regexp.MustCompile(`(\p{Nd}{2})[/.](\p{Nd}{1,2})[/.](\p{Nd}{1,2})`),
			convert: func(g []string) (string, bool) {
				y, ok := atoi(g[1])
				if !ok {
					return "", false
				}
				return ymd(2000+y, g[2], g[3])
			},
		},
	}
)

// FormatDate rewrites the dates in text as YYYY-MM-DD. All whitespace is
// removed first. The first pattern family that matches wins (Japanese era,
// YYYY年M月D日, YYYY/M/D or YYYY.M.D, YY/M/D or YY.M.D) and every match of it
// is rewritten. Text with no recognisable date is returned without its
// whitespace.
func FormatDate(text string) string {
	cleaned := strings.Join(strings.Fields(text), "")

	for _, p := range dateRules {
		if !p.re.MatchString(cleaned) {
			continue
		}
		return p.re.ReplaceAllStringFunc(cleaned, func(match string) string {
			formatted, ok := p.convert(p.re.FindStringSubmatch(match))
			if !ok {
				return match
			}
			return formatted
		})
	}

	return cleaned
}

// IsISODate reports whether text contains a YYYY-MM-DD date
func IsISODate(text string) bool {
	return isoDate.MatchString(text)
}

func ymd(year int, month, day string) (string, bool) {
	m, ok := atoi(month)
	if !ok {
		return "", false
	}
	d, ok := atoi(day)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%d-%02d-%02d", year, m, d), true
}

// atoi parses a decimal number written in ASCII or fullwidth digits
func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(width.Narrow.String(s))
	if err != nil {
		return 0, false
	}
	return n, true
}
