package monitor

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/vendorwatch/internal/datasource"
	"github.com/seenimoa/vendorwatch/internal/infra"
	"github.com/seenimoa/vendorwatch/pkg/models"
)

var testNow = time.Date(2025, 3, 7, 16, 30, 0, 0, time.UTC)

var sixVendors = []models.Vendor{
	{Symbol: "ADP", CompanyName: "Automatic Data Processing, Inc."},
	{Symbol: "PAYX", CompanyName: "Paychex, Inc."},
	{Symbol: "FI", CompanyName: "Fiserv, Inc."},
	{Symbol: "PCTY", CompanyName: "Paylocity Holding Corp."},
	{Symbol: "WDAY", CompanyName: "Workday, Inc."},
	{Symbol: "INTU", CompanyName: "Intuit Inc."},
}

// newsByVendor answers any query containing a vendor's short name or ticker.
func newsByVendor(fail map[string]error) *fakeNews {
	return &fakeNews{handle: func(q datasource.NewsQuery) ([]models.Article, error) {
		for key, err := range fail {
			if strings.Contains(q.Text, key) {
				return nil, err
			}
		}
		return []models.Article{{Title: q.Text + " shares up"}, {Title: q.Text + " flat"}}, nil
	}}
}

func newTestRunner(news datasource.NewsSource) *Runner {
	return NewRunner(newTestAggregator(&fakeStocks{}, news, &fakeScorer{}), nil)
}

func TestRunRateLimitedVendorDoesNotAbort(t *testing.T) {
	news := newsByVendor(map[string]error{"Paylocity": httpErr(http.StatusTooManyRequests)})

	res, err := newTestRunner(news).Run(context.Background(), sixVendors)
	require.NoError(t, err)
	require.Len(t, res.Outcomes, 6)

	pcty := res.Outcomes[3]
	assert.Equal(t, "PCTY", pcty.Vendor.Symbol)
	assert.Equal(t, models.LabelNA, pcty.Sentiment)
	assert.Empty(t, pcty.Headlines)

	for _, i := range []int{4, 5} {
		assert.Equal(t, models.LabelBullish, res.Outcomes[i].Sentiment, res.Outcomes[i].Vendor.Symbol)
		assert.Len(t, res.Outcomes[i].Headlines, 2)
	}

	sum := res.Summary
	assert.Equal(t, 6, sum.TotalVendors)
	assert.Equal(t, 6, sum.StockSuccess)
	assert.Equal(t, 5, sum.NewsSuccess)
	assert.Equal(t, 1, sum.NewsFailures)
	assert.Equal(t, 10, sum.Headlines)
	require.Len(t, sum.Warnings, 1)
	assert.Equal(t, "PCTY", sum.Warnings[0].Symbol)
	assert.NotEmpty(t, sum.RunID)

	// One rate-limited call, no further candidates for PCTY.
	var pctyCalls int
	for _, q := range news.queries() {
		if strings.Contains(q, "Paylocity") || q == "PCTY" {
			pctyCalls++
		}
	}
	assert.Equal(t, 1, pctyCalls)
}

func TestRunTransientExhaustionDoesNotAbort(t *testing.T) {
	news := newsByVendor(map[string]error{"Fiserv": errTimeout, "FI": errTimeout})

	res, err := newTestRunner(news).Run(context.Background(), sixVendors)
	require.NoError(t, err)
	require.Len(t, res.Outcomes, 6)
	assert.Equal(t, models.LabelNA, res.Outcomes[2].Sentiment)
	assert.Equal(t, 1, res.Summary.NewsFailures)
	assert.Contains(t, res.Summary.Warnings[0].Text, "No headlines found")
}

func TestRunFatalAuthAborts(t *testing.T) {
	news := newsByVendor(map[string]error{"Paychex": httpErr(http.StatusUnauthorized)})

	res, err := newTestRunner(news).Run(context.Background(), sixVendors)
	require.Error(t, err)
	assert.ErrorIs(t, err, infra.ErrFatalAuth)
	assert.Len(t, res.Outcomes, 1, "only vendors before the failure are reported")
	for _, q := range news.queries() {
		assert.NotContains(t, q, "Fiserv", "no vendor after the fatal one is processed")
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := newTestRunner(newsByVendor(nil)).Run(ctx, sixVendors)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, res.Outcomes)
}

func TestRunHeadlineRows(t *testing.T) {
	news := newsByVendor(map[string]error{"Paylocity": httpErr(http.StatusTooManyRequests)})
	res, err := newTestRunner(news).Run(context.Background(), sixVendors)
	require.NoError(t, err)

	rows := res.HeadlineRows()
	assert.Len(t, rows, 5*2+1)
	var na int
	for _, r := range rows {
		if r.Headline == models.NotAvailable {
			na++
			assert.Equal(t, "PCTY", r.Symbol)
			assert.Equal(t, models.LabelNA, r.Sentiment)
		}
	}
	assert.Equal(t, 1, na)
}
