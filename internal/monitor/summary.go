package monitor

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Warning is a per-vendor problem recorded during a run.
type Warning struct {
	Symbol string
	Text   string
}

func (w Warning) String() string {
	if w.Symbol == "" {
		return w.Text
	}
	return w.Symbol + ": " + w.Text
}

// RunSummary accumulates run statistics. It is owned by a single run and
// updated only from the sequential vendor loop.
type RunSummary struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration

	TotalVendors  int
	StockSuccess  int
	StockFailures int
	NewsSuccess   int
	NewsFailures  int
	Headlines     int
	Failed        int // vendors whose processing raised an error

	Warnings []Warning
}

// NewRunSummary starts a summary for a run over total vendors.
func NewRunSummary(total int, now time.Time) *RunSummary {
	return &RunSummary{
		RunID:        uuid.NewString(),
		StartedAt:    now,
		TotalVendors: total,
	}
}

// Warn appends a warning.
func (s *RunSummary) Warn(symbol, format string, args ...any) {
	s.Warnings = append(s.Warnings, Warning{Symbol: symbol, Text: fmt.Sprintf(format, args...)})
}

// RecordStock counts a stock fetch result.
func (s *RunSummary) RecordStock(ok bool) {
	if ok {
		s.StockSuccess++
	} else {
		s.StockFailures++
	}
}

// RecordNews counts a headline fetch result; a fetch yielding no headlines
// is a news failure.
func (s *RunSummary) RecordNews(headlines int) {
	if headlines > 0 {
		s.NewsSuccess++
		s.Headlines += headlines
	} else {
		s.NewsFailures++
	}
}

// Finish stamps the run duration.
func (s *RunSummary) Finish(now time.Time) {
	s.Duration = now.Sub(s.StartedAt)
}
