package monitor

import (
	"context"
	"fmt"

	"github.com/phuslu/log"

	"github.com/seenimoa/vendorwatch/internal/datasource"
	"github.com/seenimoa/vendorwatch/internal/infra"
	"github.com/seenimoa/vendorwatch/internal/logging"
	"github.com/seenimoa/vendorwatch/pkg/models"
)

// DefaultMaxArticles caps each news query.
const DefaultMaxArticles = 10

// DefaultBusinessDomains are the US business publishers searched before a
// broad search.
var DefaultBusinessDomains = []string{
	"wsj.com", "cnbc.com", "bloomberg.com", "reuters.com", "marketwatch.com",
	"barrons.com", "ft.com", "businessinsider.com", "seekingalpha.com",
	"fool.com", "investors.com", "finance.yahoo.com",
}

// FetchResult is the outcome of a headline fetch for one vendor.
type FetchResult struct {
	Articles []models.Article
	Query    string // candidate that produced the articles
	Scope    string // "business" or "broad"
	Calls    int    // news source calls made, excluding retries
}

// HeadlineFetcher walks a vendor's query candidates against a news source,
// first restricted to business domains and then broadly, and stops at the
// first call that returns articles.
type HeadlineFetcher struct {
	source  datasource.NewsSource
	queries *QueryBuilder
	exec    *infra.Executor
	domains []string
	limit   int
	logger  *log.Logger
}

// NewHeadlineFetcher creates a fetcher. Empty domains skip the restricted
// scope; a non-positive limit means DefaultMaxArticles.
func NewHeadlineFetcher(source datasource.NewsSource, queries *QueryBuilder, exec *infra.Executor,
	domains []string, limit int, logger *log.Logger) *HeadlineFetcher {
	if limit <= 0 {
		limit = DefaultMaxArticles
	}
	return &HeadlineFetcher{
		source:  source,
		queries: queries,
		exec:    exec,
		domains: domains,
		limit:   limit,
		logger:  logging.OrNop(logger),
	}
}

type searchScope struct {
	name    string
	domains []string
}

func (f *HeadlineFetcher) scopes() []searchScope {
	if len(f.domains) == 0 {
		return []searchScope{{name: "broad"}}
	}
	return []searchScope{{name: "business", domains: f.domains}, {name: "broad"}}
}

// Fetch returns the first non-empty article list for v.
//
// A rate-limited call ends the fetch at once and returns the error. A
// fatal auth error is returned untouched for the caller to abort the run.
// Calls that exhaust their retries are skipped; if nothing is found the
// last such error is returned alongside the empty result.
func (f *HeadlineFetcher) Fetch(ctx context.Context, v models.Vendor) (FetchResult, error) {
	candidates := f.queries.Candidates(v.CompanyName, v.Symbol)
	var res FetchResult
	var lastErr error

	for i, q := range candidates {
		f.logger.Debug().Str("symbol", v.Symbol).Int("candidate", i+1).Int("candidates", len(candidates)).
			Str("query", q).Msg("trying search query")

		for _, scope := range f.scopes() {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			res.Calls++
			op := fmt.Sprintf("news %s %q (%s)", v.Symbol, q, scope.name)
			nq := datasource.NewsQuery{Text: q, Domains: scope.domains, Limit: f.limit}

			articles, err := infra.Execute(ctx, f.exec, op, func(ctx context.Context) ([]models.Article, error) {
				return f.source.SearchArticles(ctx, nq)
			})
			if err != nil {
				switch infra.Classify(err) {
				case infra.OutcomeFatalAuth, infra.OutcomeRateLimited:
					return res, err
				}
				if ctx.Err() != nil {
					return res, ctx.Err()
				}
				f.logger.Warn().Str("symbol", v.Symbol).Str("query", q).Str("scope", scope.name).
					Err(err).Msg("news query failed, trying next")
				lastErr = err
				continue
			}
			if len(articles) == 0 {
				f.logger.Debug().Str("symbol", v.Symbol).Str("query", q).Str("scope", scope.name).Msg("no articles")
				continue
			}

			res.Articles, res.Query, res.Scope = articles, q, scope.name
			f.logger.Debug().Str("symbol", v.Symbol).Str("query", q).Str("scope", scope.name).
				Int("articles", len(articles)).Msg("articles found")
			return res, nil
		}
	}

	f.logger.Debug().Str("symbol", v.Symbol).Int("candidates", len(candidates)).Msg("no news articles found")
	return res, lastErr
}
