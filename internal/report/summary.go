package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/phuslu/log"

	"github.com/seenimoa/vendorwatch/internal/monitor"
)

// MaxConsoleWarnings is how many warnings the summary block lists.
const MaxConsoleWarnings = 5

// SummaryLines renders the end-of-run summary block. logFile may be empty.
func SummaryLines(s *monitor.RunSummary, logFile string) []string {
	line := strings.Repeat("=", 60)
	total := s.TotalVendors

	lines := []string{
		line,
		"SUMMARY",
		line,
		fmt.Sprintf("Total vendors processed:  %d", total),
		fmt.Sprintf("Stock data success:       %d/%d", s.StockSuccess, total),
		fmt.Sprintf("Stock data failures:      %d/%d", s.StockFailures, total),
		fmt.Sprintf("News data success:        %d/%d", s.NewsSuccess, total),
		fmt.Sprintf("News data failures:       %d/%d", s.NewsFailures, total),
		fmt.Sprintf("Total headlines fetched:  %d", s.Headlines),
	}
	if s.Failed > 0 {
		lines = append(lines, fmt.Sprintf("Vendors with errors:      %d", s.Failed))
	}
	if s.Duration > 0 {
		lines = append(lines, fmt.Sprintf("Elapsed:                  %s", s.Duration.Round(100*time.Millisecond)))
	}

	if n := len(s.Warnings); n > 0 {
		lines = append(lines, "", fmt.Sprintf("Warnings/Errors: %d", n))
		for _, w := range s.Warnings[:min(n, MaxConsoleWarnings)] {
			lines = append(lines, "  - "+w.String())
		}
		if n > MaxConsoleWarnings {
			lines = append(lines, fmt.Sprintf("  ... and %d more (check log file)", n-MaxConsoleWarnings))
		}
	}

	lines = append(lines, "", line, "Processing complete!")
	if logFile != "" {
		lines = append(lines, "Log file: "+logFile)
	}
	return append(lines, line)
}

// PrintSummary logs the summary block at info level and every warning at
// debug level, so the log file keeps the full list.
func PrintSummary(logger *log.Logger, s *monitor.RunSummary, logFile string) {
	for _, l := range SummaryLines(s, logFile) {
		logger.Info().Msg(l)
	}
	for _, w := range s.Warnings {
		logger.Debug().Str("run_id", s.RunID).Msg("warning: " + w.String())
	}
}
