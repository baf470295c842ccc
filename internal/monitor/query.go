// Package monitor runs the per-vendor pipeline: build search queries from
// a company name, fetch headlines with retry and fallback, score them, and
// fold the results into report rows and a run summary.
package monitor

import (
	"sort"
	"strings"
)

// DefaultSuffixes is the canonical set of corporate suffixes stripped from
// company names to form the short search name.
var DefaultSuffixes = []string{
	"Holding Corporation", "Holding Corp.",
	"Corporation", "Incorporated",
	"Holdings", "Company", "Limited",
	"Corp.", "Corp",
	"Inc.", "Inc",
	"Co.", "Co",
	"Ltd.", "Ltd",
	"L.L.C.", "LLC", "PLC", "Group",
}

// QueryBuilder derives ordered search candidates for a vendor.
type QueryBuilder struct {
	suffixes []string // longest first
}

// NewQueryBuilder creates a builder for the given suffix list. The list is
// matched longest-first whatever its configured order; nil means DefaultSuffixes.
func NewQueryBuilder(suffixes []string) *QueryBuilder {
	if suffixes == nil {
		suffixes = DefaultSuffixes
	}
	sorted := make([]string, 0, len(suffixes))
	for _, s := range suffixes {
		if s = strings.TrimSpace(s); s != "" {
			sorted = append(sorted, s)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	return &QueryBuilder{suffixes: sorted}
}

// ShortName strips the longest matching corporate suffix from name. The
// suffix must be a whole trailing word, case-insensitive. It returns ""
// when nothing would be left.
func (b *QueryBuilder) ShortName(name string) string {
	name = collapseSpaces(name)
	for _, s := range b.suffixes {
		if len(name) < len(s) || !strings.EqualFold(name[len(name)-len(s):], s) {
			continue
		}
		rest := name[:len(name)-len(s)]
		if rest != "" && !strings.HasSuffix(rest, " ") && !strings.HasSuffix(rest, ",") {
			continue // "Telco" must not lose "Co"
		}
		return strings.TrimRight(rest, " ,")
	}
	return name
}

// Candidates returns the de-duplicated search strings for a vendor in
// priority order: short name, full name, short name with ticker, ticker.
// The combined form is only added when a suffix was stripped. The bare
// ticker is always last; symbol must be non-empty for the list to be
// non-empty, and an empty symbol is never emitted as a query.
func (b *QueryBuilder) Candidates(companyName, symbol string) []string {
	full := collapseSpaces(companyName)
	symbol = strings.TrimSpace(symbol)
	short := b.ShortName(full)

	var out []string
	seen := map[string]bool{strings.ToLower(symbol): true}
	add := func(q string) {
		k := strings.ToLower(q)
		if q == "" || seen[k] {
			return
		}
		seen[k] = true
		out = append(out, q)
	}

	add(short)
	add(full)
	if short != "" && short != full && symbol != "" && !strings.EqualFold(short, symbol) {
		add(short + " " + symbol)
	}
	if symbol == "" {
		return out
	}
	return append(out, symbol)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
