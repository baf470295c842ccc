package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatThousands formats an integer with US thousands separators
// (1234567 → "1,234,567").
func FormatThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatUSD formats a price as "$1,234.56".
func FormatUSD(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	cents := int64(v*100 + 0.5)
	return fmt.Sprintf("%s$%s.%02d", sign, FormatThousands(cents/100), cents%100)
}

// FormatPct formats a percent change with an explicit sign ("+2.46%").
func FormatPct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}
