package usecase

import (
	"regexp"
	"strconv"
	"strings"
)

// Package-level compiled regex pattern for performance
var nonPriceCharsRegex = regexp.MustCompile(`[^0-9.,]`)

// ParsePrice turns a free-form price string into a normalized number.
// Input may carry currency symbols, thousands separators, and a decimal
// separator in either the dot-thousands/comma-decimal convention
// ("1.234,56") or the plain form ("1234.56").
//
// Rules:
//   - Everything that is not a digit, dot, or comma is stripped.
//   - If both separator types are present, the rightmost-occurring one is
//     the decimal separator; all other separators are grouping and removed.
//   - If a single separator type occurs exactly once followed by exactly
//     two digits, it is the decimal separator; otherwise it is grouping.
//
// Unparseable input yields 0. Callers reject zero-or-negative prices, so
// this never needs to raise.
func ParsePrice(raw string) float64 {
	cleaned := nonPriceCharsRegex.ReplaceAllString(raw, "")
	if cleaned == "" {
		return 0
	}

	hasDot := strings.Contains(cleaned, ".")
	hasComma := strings.Contains(cleaned, ",")

	switch {
	case hasDot && hasComma:
		decimal := byte(',')
		if strings.LastIndex(cleaned, ".") > strings.LastIndex(cleaned, ",") {
			decimal = '.'
		}
		cleaned = stripGrouping(cleaned, decimal)
	case hasDot:
		cleaned = resolveSingleSeparator(cleaned, '.')
	case hasComma:
		cleaned = resolveSingleSeparator(cleaned, ',')
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

// stripGrouping removes every separator except the last occurrence of the
// decimal one, which is rewritten as a dot.
func stripGrouping(s string, decimal byte) string {
	lastDecimal := strings.LastIndexByte(s, decimal)

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '.' || c == ',' {
			if i == lastDecimal {
				b.WriteByte('.')
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// resolveSingleSeparator decides whether the only separator type present is
// decimal (exactly one occurrence followed by exactly two digits) or
// thousands grouping.
func resolveSingleSeparator(s string, sep byte) string {
	if strings.Count(s, string(sep)) == 1 {
		idx := strings.IndexByte(s, sep)
		if len(s)-idx-1 == 2 {
			return s[:idx] + "." + s[idx+1:]
		}
	}
	return strings.ReplaceAll(s, string(sep), "")
}
