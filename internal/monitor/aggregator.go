package monitor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/phuslu/log"

	"github.com/seenimoa/vendorwatch/internal/analysis/sentiment"
	"github.com/seenimoa/vendorwatch/internal/datasource"
	"github.com/seenimoa/vendorwatch/internal/infra"
	"github.com/seenimoa/vendorwatch/internal/logging"
	"github.com/seenimoa/vendorwatch/pkg/models"
	"github.com/seenimoa/vendorwatch/pkg/utils"
)

// HeadlineDisplayWidth is the console width for headlines.
const HeadlineDisplayWidth = 75

// MaxLabel returns the highest-ranked label (bullish > neutral > bearish).
// N/A entries are ignored; with no scored label the result is N/A.
func MaxLabel(labels []models.SentimentLabel) models.SentimentLabel {
	best := models.LabelNA
	for _, l := range labels {
		if l.Valid() && l.Rank() > best.Rank() {
			best = l
		}
	}
	return best
}

// Aggregator processes one vendor at a time: stock metrics, headlines,
// per-article sentiment and the vendor-level label.
type Aggregator struct {
	stocks  datasource.StockSource
	fetcher *HeadlineFetcher
	scorer  sentiment.Scorer
	exec    *infra.Executor
	logger  *log.Logger
}

// NewAggregator wires the vendor pipeline.
func NewAggregator(stocks datasource.StockSource, fetcher *HeadlineFetcher, scorer sentiment.Scorer,
	exec *infra.Executor, logger *log.Logger) *Aggregator {
	return &Aggregator{
		stocks:  stocks,
		fetcher: fetcher,
		scorer:  scorer,
		exec:    exec,
		logger:  logging.OrNop(logger),
	}
}

// vendorProgress tracks which summary counters a vendor has already touched.
type vendorProgress struct {
	stock bool
	news  bool
}

// ProcessVendor runs the pipeline for v and records its counters and
// warnings in sum. Any failure other than a fatal auth error or context
// cancellation is contained: the vendor is marked failed and a nil error
// is returned so the run continues.
func (a *Aggregator) ProcessVendor(ctx context.Context, v models.Vendor, sum *RunSummary) (models.VendorOutcome, error) {
	out := models.VendorOutcome{Vendor: v, Sentiment: models.LabelNA}
	var prog vendorProgress

	err := a.guard(func() error { return a.process(ctx, &out, sum, &prog) })
	if err == nil {
		return out, nil
	}
	if infra.IsFatal(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return out, err
	}

	a.logger.Error().Str("symbol", v.Symbol).Str("company", v.CompanyName).Err(err).
		Msg("Unexpected error processing vendor")
	sum.Failed++
	sum.Warn(v.Symbol, "Unexpected error - %v", err)
	if !prog.stock {
		sum.RecordStock(false)
	}
	if !prog.news {
		sum.RecordNews(0)
	}
	out.Failed = true
	out.Headlines = nil
	out.Sentiment = models.LabelNA
	return out, nil
}

// guard converts a panic in fn into an error carrying the stack.
func (a *Aggregator) guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Debug().Str("stack", string(debug.Stack())).Msg("recovered panic")
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func (a *Aggregator) process(ctx context.Context, out *models.VendorOutcome, sum *RunSummary, prog *vendorProgress) error {
	v := out.Vendor

	// Stock metrics.
	metrics, err := infra.Execute(ctx, a.exec, "stock "+v.Symbol, func(ctx context.Context) (*models.StockMetrics, error) {
		return a.stocks.GetStockMetrics(ctx, v.Symbol)
	})
	if err != nil {
		if infra.IsFatal(err) || ctx.Err() != nil {
			return err
		}
		a.logger.Debug().Str("symbol", v.Symbol).Err(err).Msg("stock fetch failed")
		a.logger.Warn().Msg("  Stock: No data available")
		if errors.Is(err, datasource.ErrNoData) {
			sum.Warn(v.Symbol, "No stock data available")
		} else {
			sum.Warn(v.Symbol, "No stock data available (%s)", infra.Classify(err))
		}
		sum.RecordStock(false)
	} else {
		out.Stock = metrics
		sum.RecordStock(true)
		a.logger.Info().Msgf("  Stock: %s (%s) Vol: %s",
			utils.FormatUSD(metrics.Close), utils.FormatPct(metrics.ChangePct), utils.FormatThousands(metrics.Volume))
	}
	prog.stock = true

	// Headlines.
	res, fetchErr := a.fetcher.Fetch(ctx, v)
	if fetchErr != nil && (infra.IsFatal(fetchErr) || ctx.Err() != nil) {
		return fetchErr
	}

	headlines := make([]models.ScoredHeadline, 0, len(res.Articles))
	labels := make([]models.SentimentLabel, 0, len(res.Articles))
	for _, art := range res.Articles {
		r, err := sentiment.ScoreArticle(a.scorer, art)
		if err != nil {
			return err
		}
		headlines = append(headlines, models.ScoredHeadline{Article: art, Result: r})
		labels = append(labels, r.Label)
	}

	sum.RecordNews(len(headlines))
	prog.news = true

	if len(headlines) == 0 {
		switch {
		case fetchErr != nil && infra.Classify(fetchErr) == infra.OutcomeRateLimited:
			a.logger.Error().Str("symbol", v.Symbol).Err(fetchErr).Msg("News source rate limit exceeded")
			sum.Warn(v.Symbol, "No headlines found (news source rate limit exceeded)")
		case fetchErr != nil:
			a.logger.Warn().Str("symbol", v.Symbol).Err(fetchErr).Msg("News fetch failed")
			sum.Warn(v.Symbol, "No headlines found (news fetch failed: %s)", infra.Classify(fetchErr))
		default:
			sum.Warn(v.Symbol, "No headlines found")
		}
		a.logger.Info().Msg("  News: No articles available")
		return nil
	}

	out.Headlines = headlines
	out.Sentiment = MaxLabel(labels)

	a.logger.Info().Msgf("  News: Found %d articles (query %q, %s search)", len(headlines), res.Query, res.Scope)
	for _, h := range headlines {
		a.logger.Info().Msgf("    [%s] %s", strings.ToUpper(string(h.Result.Label)), utils.Truncate(h.Article.Title, HeadlineDisplayWidth))
		if len(h.Result.Scores) > 0 {
			a.logger.Debug().Str("symbol", v.Symbol).Str("headline", h.Article.Title).
				Float64("compound", h.Result.Compound).Any("scores", h.Result.Scores).Msg("headline scored")
		}
	}
	return nil
}
