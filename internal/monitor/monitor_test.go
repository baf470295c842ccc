package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/seenimoa/vendorwatch/internal/datasource"
	"github.com/seenimoa/vendorwatch/internal/infra"
	"github.com/seenimoa/vendorwatch/pkg/models"
)

// Shared fakes for the monitor tests.

type newsCall struct {
	Query   string
	Domains []string
}

type fakeNews struct {
	mu     sync.Mutex
	calls  []newsCall
	handle func(q datasource.NewsQuery) ([]models.Article, error)
}

func (f *fakeNews) Name() string { return "fake-news" }

func (f *fakeNews) SearchArticles(_ context.Context, q datasource.NewsQuery) ([]models.Article, error) {
	f.mu.Lock()
	f.calls = append(f.calls, newsCall{Query: q.Text, Domains: q.Domains})
	f.mu.Unlock()
	if f.handle == nil {
		return nil, nil
	}
	return f.handle(q)
}

func (f *fakeNews) queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Query
	}
	return out
}

type fakeStocks struct {
	handle func(symbol string) (*models.StockMetrics, error)
	calls  []string
}

func (f *fakeStocks) Name() string { return "fake-stocks" }

func (f *fakeStocks) GetStockMetrics(_ context.Context, symbol string) (*models.StockMetrics, error) {
	f.calls = append(f.calls, symbol)
	if f.handle == nil {
		return &models.StockMetrics{Symbol: symbol, Close: 100, ChangePct: 1.5, Volume: 1000}, nil
	}
	return f.handle(symbol)
}

// fakeScorer labels text by keyword: "up" → bullish, "down" → bearish.
type fakeScorer struct {
	err    error
	panics bool
}

func (s *fakeScorer) Name() string { return "fake" }

func (s *fakeScorer) Score(text string) (models.SentimentResult, error) {
	if s.panics {
		panic("scorer exploded")
	}
	if s.err != nil {
		return models.SentimentResult{}, s.err
	}
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, " up"):
		return models.SentimentResult{Label: models.LabelBullish, Compound: 0.5}, nil
	case strings.Contains(lower, " down"):
		return models.SentimentResult{Label: models.LabelBearish, Compound: -0.5}, nil
	default:
		return models.SentimentResult{Label: models.LabelNeutral}, nil
	}
}

func (s *fakeScorer) Close() error { return nil }

// recordingSleep captures backoff delays without sleeping.
type recordingSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (r *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delays = append(r.delays, d)
	return nil
}

func testExecutor(rs *recordingSleep) *infra.Executor {
	if rs == nil {
		rs = &recordingSleep{}
	}
	return infra.NewExecutor(infra.DefaultRetryPolicy(), nil, infra.WithSleep(rs.sleep))
}

func articles(n int, title string) []models.Article {
	out := make([]models.Article, n)
	for i := range out {
		out[i] = models.Article{Title: fmt.Sprintf("%s %d", title, i+1)}
	}
	return out
}

func httpErr(status int) error {
	return &datasource.ErrHTTP{StatusCode: status, Status: fmt.Sprint(status)}
}

var errTimeout = fmt.Errorf("dial tcp: i/o timeout: %w", errors.New("timeout"))
