package source

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

var errEmptyCell = errors.New("empty cell")

// ParseNumber parses a human-formatted numeric cell such as "$1,234.50",
// "(300)", "7%", "1.234,5", "€ 12 000", "100 EUR" or "1.5M". The second
// return value reports whether the cell carried a percent sign.
func ParseNumber(raw string) (float64, bool, error) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "-" || strings.EqualFold(s, "n/a") || strings.EqualFold(s, "na") {
		return 0, false, errEmptyCell
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	if strings.HasSuffix(s, "-") && len(s) > 1 {
		neg = true
		s = s[:len(s)-1]
	}
	pct := strings.Contains(s, "%")

	mantissa, exponent, scale, ok := cleanNumber(s)
	if !ok || mantissa == "" {
		return 0, pct, fmt.Errorf("not a number: %q", raw)
	}

	d, err := decimal.NewFromString(normalizeSeparators(mantissa) + exponent)
	if err != nil {
		return 0, pct, fmt.Errorf("not a number: %q", raw)
	}
	if scale != 0 {
		d = d.Shift(scale)
	}
	if neg {
		d = d.Neg()
	}
	f, _ := d.Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, pct, fmt.Errorf("number out of range: %q", raw)
	}
	return f, pct, nil
}

// currencyCodes are stripped from numeric cells.
var currencyCodes = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true, "CHF": true,
	"CAD": true, "AUD": true, "NZD": true, "CNY": true, "HKD": true,
	"SGD": true, "INR": true, "KRW": true, "SEK": true, "NOK": true,
	"DKK": true, "PLN": true, "BRL": true, "MXN": true, "ZAR": true,
}

// magnitudeSuffixes map a trailing unit to a power of ten.
var magnitudeSuffixes = map[string]int32{
	"K": 3, "M": 6, "MM": 6, "MN": 6, "B": 9, "BN": 9,
}

// cleanNumber splits s into its digit mantissa, an optional "e<exp>" part and
// a magnitude suffix. Symbols and whitespace are dropped. Letters other than
// an exponent, a currency code or a magnitude suffix make the cell invalid.
func cleanNumber(s string) (mantissa, exponent string, scale int32, ok bool) {
	rs := []rune(s)
	var b strings.Builder
	var exp strings.Builder
	inExp, suffixed, sawDigit := false, false, false
	lastDigit := false

	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case unicode.IsDigit(r):
			if suffixed {
				return "", "", 0, false
			}
			if inExp {
				exp.WriteRune(r)
			} else {
				b.WriteRune(r)
			}
			sawDigit, lastDigit = true, true
			continue
		case r == '.' || r == ',':
			if inExp {
				return "", "", 0, false
			}
			b.WriteRune(r)
		case r == '-' || r == '+':
			if inExp {
				if exp.Len() > 1 {
					return "", "", 0, false
				}
				exp.WriteRune(r)
			} else {
				b.WriteRune(r)
			}
		case unicode.IsLetter(r):
			j := i
			for j < len(rs) && unicode.IsLetter(rs[j]) {
				j++
			}
			word := strings.ToUpper(string(rs[i:j]))
			switch {
			case word == "E" && lastDigit && !inExp && exponentFollows(rs[j:]):
				inExp = true
				exp.WriteRune('e')
			case currencyCodes[word]:
			case magnitudeSuffixes[word] != 0 && sawDigit && !suffixed:
				scale, suffixed = magnitudeSuffixes[word], true
			default:
				return "", "", 0, false
			}
			i = j - 1
		}
		lastDigit = false
	}
	return b.String(), exp.String(), scale, true
}

// exponentFollows reports whether rs starts with an optionally signed digit.
func exponentFollows(rs []rune) bool {
	if len(rs) > 0 && (rs[0] == '+' || rs[0] == '-') {
		rs = rs[1:]
	}
	return len(rs) > 0 && unicode.IsDigit(rs[0])
}

// normalizeSeparators rewrites thousands and decimal separators into plain
// "1234.5" form. When both "," and "." occur, the later one is the decimal
// mark. A lone "," followed by exactly three digits groups thousands unless
// the leading group is "0" or longer than three digits.
func normalizeSeparators(s string) string {
	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")
	case lastComma >= 0:
		groups := strings.Split(s, ",")
		thousands := len(groups) > 2
		if !thousands {
			lead := strings.TrimLeft(groups[0], "+-")
			thousands = len(groups[1]) == 3 && lead != "0" && lead != "" && len(lead) <= 3
		}
		if thousands {
			return strings.ReplaceAll(s, ",", "")
		}
		return strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		// "1.234.567" uses dots for grouping.
		return strings.ReplaceAll(s, ".", "")
	}
	return s
}

// NormalizeRate converts a rate cell to the 0..1 scale. Values written with
// a percent sign or greater than one are read as percentages.
func NormalizeRate(v float64, pct bool) float64 {
	if pct || v > 1 {
		return v / 100
	}
	return v
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
	"02.01.2006",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"Jan 2006",
	"January 2006",
	"2006-01",
	"01/2006",
}

// ParseDate parses a date cell in any of the accepted layouts.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, errEmptyCell
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date: %q", raw)
}
