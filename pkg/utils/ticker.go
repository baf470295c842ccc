package utils

import (
	"strings"
	"unicode/utf8"
)

// Exchange suffixes Yahoo Finance uses for non-US listings. A ticker ending in
// one of these is passed through unchanged.
var exchangeSuffixes = []string{
	".TO", ".V", ".L", ".AX", ".NS", ".BO", ".HK", ".DE", ".PA", ".AS", ".SW", ".T",
}

// NormalizeTicker normalizes a user-input ticker: trims whitespace,
// uppercases, and drops a leading "$" (common in pasted lists).
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	return strings.TrimPrefix(ticker, "$")
}

// ToYFinanceTicker converts a US share-class ticker to Yahoo Finance format
// ("BRK.B" → "BRK-B"). Foreign listings keep their exchange suffix.
func ToYFinanceTicker(ticker string) string {
	ticker = NormalizeTicker(ticker)
	for _, sfx := range exchangeSuffixes {
		if strings.HasSuffix(ticker, sfx) && len(ticker) > len(sfx) {
			return ticker
		}
	}
	return strings.ReplaceAll(ticker, ".", "-")
}

// Truncate shortens s to at most max runes, appending "..." when cut.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max]) + "..."
}

// MaskSecret masks a credential for display, keeping the first 8 and last 4 characters.
func MaskSecret(key string) string {
	if len(key) <= 12 {
		return "***"
	}
	return key[:8] + "..." + key[len(key)-4:]
}
