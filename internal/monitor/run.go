package monitor

import (
	"context"
	"time"

	"github.com/phuslu/log"

	"github.com/seenimoa/vendorwatch/internal/logging"
	"github.com/seenimoa/vendorwatch/pkg/models"
)

// RunResult is everything a finished (or aborted) run hands to the report
// writers.
type RunResult struct {
	Outcomes []models.VendorOutcome
	Summary  *RunSummary
}

// HeadlineRows flattens the per-vendor headline rows in vendor order.
func (r *RunResult) HeadlineRows() []models.HeadlineRow {
	var rows []models.HeadlineRow
	for _, o := range r.Outcomes {
		rows = append(rows, o.HeadlineRows()...)
	}
	return rows
}

// Runner processes a vendor list sequentially.
type Runner struct {
	agg    *Aggregator
	logger *log.Logger
	now    func() time.Time
}

// NewRunner creates a runner around an aggregator.
func NewRunner(agg *Aggregator, logger *log.Logger) *Runner {
	return &Runner{agg: agg, logger: logging.OrNop(logger), now: time.Now}
}

// Run processes vendors one at a time in input order. It returns early
// with the partial result on a fatal auth error or context cancellation;
// every other per-vendor failure is recorded in the summary.
func (r *Runner) Run(ctx context.Context, vendors []models.Vendor) (*RunResult, error) {
	sum := NewRunSummary(len(vendors), r.now())
	res := &RunResult{Summary: sum, Outcomes: make([]models.VendorOutcome, 0, len(vendors))}
	defer func() { sum.Finish(r.now()) }()

	r.logger.Info().Str("run_id", sum.RunID).Int("vendors", len(vendors)).Msg("Processing vendors...")

	for i, v := range vendors {
		if err := ctx.Err(); err != nil {
			r.logger.Warn().Int("processed", i).Msg("Run interrupted")
			return res, err
		}
		r.logger.Info().Msgf("[%d/%d] Processing %s - %s", i+1, len(vendors), v.Symbol, v.CompanyName)

		out, err := r.agg.ProcessVendor(ctx, v, sum)
		if err != nil {
			r.logger.Error().Str("symbol", v.Symbol).Err(err).Msg("Aborting run")
			return res, err
		}
		res.Outcomes = append(res.Outcomes, out)
	}
	return res, nil
}
