package monitor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/vendorwatch/internal/analysis/sentiment"
	"github.com/seenimoa/vendorwatch/internal/datasource"
	"github.com/seenimoa/vendorwatch/internal/infra"
	"github.com/seenimoa/vendorwatch/pkg/models"
)

func TestMaxLabel(t *testing.T) {
	B, N, R, NA := models.LabelBullish, models.LabelNeutral, models.LabelBearish, models.LabelNA
	tests := []struct {
		name   string
		labels []models.SentimentLabel
		want   models.SentimentLabel
	}{
		{"empty", nil, NA},
		{"only N/A", []models.SentimentLabel{NA, NA}, NA},
		{"any bullish wins", []models.SentimentLabel{R, N, B, R}, B},
		{"bullish last", []models.SentimentLabel{R, R, B}, B},
		{"neutral over bearish", []models.SentimentLabel{R, N, R}, N},
		{"all bearish", []models.SentimentLabel{R, R}, R},
		{"N/A ignored", []models.SentimentLabel{NA, R}, R},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaxLabel(tt.labels))
		})
	}
}

func TestMaxLabelOrderIndependent(t *testing.T) {
	all := []models.SentimentLabel{models.LabelBearish, models.LabelNeutral, models.LabelBullish}
	perms := [][]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
	for _, p := range perms {
		labels := []models.SentimentLabel{all[p[0]], all[p[1]], all[p[2]]}
		assert.Equal(t, models.LabelBullish, MaxLabel(labels), "%v", labels)
		assert.Equal(t, MaxLabel(labels[:2]), MaxLabel([]models.SentimentLabel{labels[1], labels[0]}))
	}
}

func newTestAggregator(stocks datasource.StockSource, news datasource.NewsSource, scorer sentiment.Scorer) *Aggregator {
	exec := testExecutor(nil)
	fetcher := NewHeadlineFetcher(news, NewQueryBuilder(nil), exec, nil, 10, nil)
	return NewAggregator(stocks, fetcher, scorer, exec, nil)
}

func TestProcessVendorSuccess(t *testing.T) {
	news := &fakeNews{handle: func(q datasource.NewsQuery) ([]models.Article, error) {
		return []models.Article{
			{Title: "Paylocity shares down on guidance"},
			{Title: "Paylocity stock up after earnings"},
			{Title: "Paylocity hosts investor day"},
		}, nil
	}}
	agg := newTestAggregator(&fakeStocks{}, news, &fakeScorer{})
	sum := NewRunSummary(1, testNow)

	out, err := agg.ProcessVendor(context.Background(), paylocity, sum)
	require.NoError(t, err)

	assert.False(t, out.Failed)
	require.NotNil(t, out.Stock)
	assert.Equal(t, 100.0, out.Stock.Close)
	require.Len(t, out.Headlines, 3)
	assert.Equal(t, models.LabelBearish, out.Headlines[0].Result.Label)
	assert.Equal(t, models.LabelBullish, out.Headlines[1].Result.Label)
	assert.Equal(t, models.LabelBullish, out.Sentiment)

	rows := out.HeadlineRows()
	require.Len(t, rows, 3)
	assert.Equal(t, "PCTY", rows[0].Symbol)
	assert.Equal(t, "Paylocity shares down on guidance", rows[0].Headline)

	assert.Equal(t, 1, sum.StockSuccess)
	assert.Equal(t, 1, sum.NewsSuccess)
	assert.Equal(t, 3, sum.Headlines)
	assert.Empty(t, sum.Warnings)
}

func TestProcessVendorNoHeadlines(t *testing.T) {
	agg := newTestAggregator(&fakeStocks{}, &fakeNews{}, &fakeScorer{})
	sum := NewRunSummary(1, testNow)

	out, err := agg.ProcessVendor(context.Background(), paylocity, sum)
	require.NoError(t, err)
	assert.Equal(t, models.LabelNA, out.Sentiment)
	assert.Equal(t, []models.HeadlineRow{{Symbol: "PCTY", Headline: "N/A", Sentiment: models.LabelNA}}, out.HeadlineRows())
	assert.Equal(t, 1, sum.NewsFailures)
	require.Len(t, sum.Warnings, 1)
	assert.Equal(t, "PCTY: No headlines found", sum.Warnings[0].String())
}

func TestProcessVendorStockNoData(t *testing.T) {
	stocks := &fakeStocks{handle: func(string) (*models.StockMetrics, error) {
		return nil, fmt.Errorf("%w: PCTY", datasource.ErrNoData)
	}}
	news := &fakeNews{handle: func(datasource.NewsQuery) ([]models.Article, error) {
		return articles(1, "Paylocity up"), nil
	}}
	agg := newTestAggregator(stocks, news, &fakeScorer{})
	sum := NewRunSummary(1, testNow)

	out, err := agg.ProcessVendor(context.Background(), paylocity, sum)
	require.NoError(t, err)
	assert.Nil(t, out.Stock)
	assert.False(t, out.StockOK())
	assert.Equal(t, models.LabelBullish, out.Sentiment)
	assert.Len(t, stocks.calls, 1, "no-data is not retried")
	assert.Equal(t, 1, sum.StockFailures)
	assert.Equal(t, 1, sum.NewsSuccess)
	require.Len(t, sum.Warnings, 1)
	assert.Equal(t, "PCTY: No stock data available", sum.Warnings[0].String())
}

func TestProcessVendorRateLimited(t *testing.T) {
	news := &fakeNews{handle: func(datasource.NewsQuery) ([]models.Article, error) {
		return nil, httpErr(http.StatusTooManyRequests)
	}}
	agg := newTestAggregator(&fakeStocks{}, news, &fakeScorer{})
	sum := NewRunSummary(1, testNow)

	out, err := agg.ProcessVendor(context.Background(), paylocity, sum)
	require.NoError(t, err)
	assert.Equal(t, models.LabelNA, out.Sentiment)
	assert.Equal(t, 1, sum.NewsFailures)
	require.Len(t, sum.Warnings, 1)
	assert.Contains(t, sum.Warnings[0].Text, "No headlines found")
	assert.Contains(t, sum.Warnings[0].Text, "rate limit")
}

func TestProcessVendorScoringErrorIsContained(t *testing.T) {
	news := &fakeNews{handle: func(datasource.NewsQuery) ([]models.Article, error) {
		return articles(2, "Paylocity"), nil
	}}
	agg := newTestAggregator(&fakeStocks{}, news, &fakeScorer{err: errors.New("tokenizer failure")})
	sum := NewRunSummary(1, testNow)

	out, err := agg.ProcessVendor(context.Background(), paylocity, sum)
	require.NoError(t, err)
	assert.True(t, out.Failed)
	assert.Equal(t, models.LabelNA, out.Sentiment)
	assert.NotNil(t, out.Stock, "stock result survives a later failure")
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.StockSuccess)
	assert.Equal(t, 1, sum.NewsFailures)
	require.Len(t, sum.Warnings, 1)
	assert.Contains(t, sum.Warnings[0].Text, "tokenizer failure")
}

func TestProcessVendorPanicIsContained(t *testing.T) {
	news := &fakeNews{handle: func(datasource.NewsQuery) ([]models.Article, error) {
		return articles(1, "Paylocity"), nil
	}}
	agg := newTestAggregator(&fakeStocks{}, news, &fakeScorer{panics: true})
	sum := NewRunSummary(1, testNow)

	out, err := agg.ProcessVendor(context.Background(), paylocity, sum)
	require.NoError(t, err)
	assert.True(t, out.Failed)
	assert.Equal(t, 1, sum.Failed)
	assert.Contains(t, sum.Warnings[0].Text, "scorer exploded")
}

func TestProcessVendorFatalAuthEscapes(t *testing.T) {
	news := &fakeNews{handle: func(datasource.NewsQuery) ([]models.Article, error) {
		return nil, httpErr(http.StatusUnauthorized)
	}}
	agg := newTestAggregator(&fakeStocks{}, news, &fakeScorer{})
	sum := NewRunSummary(1, testNow)

	_, err := agg.ProcessVendor(context.Background(), paylocity, sum)
	require.Error(t, err)
	assert.True(t, infra.IsFatal(err))
	assert.Zero(t, sum.Failed)
}
