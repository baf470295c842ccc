package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/time/rate"

	"github.com/seenimoa/vendorwatch/internal/infra"
	"github.com/seenimoa/vendorwatch/internal/logging"
	"github.com/seenimoa/vendorwatch/pkg/models"
	"github.com/seenimoa/vendorwatch/pkg/utils"
)

// DefaultYFinanceURL is the Yahoo Finance chart API host.
const DefaultYFinanceURL = "https://query1.finance.yahoo.com"

// YFinance implements StockSource using the Yahoo Finance chart API.
type YFinance struct {
	baseURL    string
	period     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// YFinanceOption configures the YFinance source.
type YFinanceOption func(*YFinance)

// WithYFinanceBaseURL sets a custom base URL.
func WithYFinanceBaseURL(baseURL string) YFinanceOption {
	return func(y *YFinance) { y.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithYFinancePeriod sets the chart range (default "5d").
func WithYFinancePeriod(period string) YFinanceOption {
	return func(y *YFinance) {
		if period != "" {
			y.period = period
		}
	}
}

// WithYFinanceHTTPClient sets a custom HTTP client.
func WithYFinanceHTTPClient(c *http.Client) YFinanceOption {
	return func(y *YFinance) { y.httpClient = c }
}

// WithYFinanceLogger sets a logger.
func WithYFinanceLogger(l *log.Logger) YFinanceOption {
	return func(y *YFinance) { y.logger = l }
}

// WithYFinanceRateLimit sets a custom rate limit.
func WithYFinanceRateLimit(perSecond float64) YFinanceOption {
	return func(y *YFinance) { y.limiter = infra.NewLimiter(perSecond) }
}

// NewYFinance creates a new Yahoo Finance data source.
func NewYFinance(opts ...YFinanceOption) *YFinance {
	y := &YFinance{
		baseURL:    DefaultYFinanceURL,
		period:     "5d",
		httpClient: NewHTTPClient(),
		limiter:    infra.NewLimiter(5),
	}
	for _, opt := range opts {
		opt(y)
	}
	y.logger = logging.OrNop(y.logger)
	return y
}

// Name returns the data source name.
func (y *YFinance) Name() string { return "Yahoo Finance" }

// --- Yahoo Finance v8 API types ---

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

type yfIndicators struct {
	Quote []yfOHLCV `json:"quote"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// GetStockMetrics returns the last close, percent change against the
// previous close and the last volume over the configured range.
func (y *YFinance) GetStockMetrics(ctx context.Context, symbol string) (*models.StockMetrics, error) {
	yfTicker := utils.ToYFinanceTicker(symbol)
	if yfTicker == "" {
		return nil, fmt.Errorf("%w: empty symbol", ErrNoData)
	}

	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("range", y.period)
	params.Set("interval", "1d")
	reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?%s", y.baseURL, url.PathEscape(yfTicker), params.Encode())

	y.logger.Debug().Str("symbol", yfTicker).Str("range", y.period).Msg("Yahoo chart request")

	body, err := doGet(ctx, y.httpClient, reqURL, map[string]string{
		"Accept": "application/json",
	})
	if err != nil {
		var httpErr *ErrHTTP
		// Yahoo answers unknown or delisted symbols with 4xx; only 429 is worth surfacing as such.
		if errors.As(err, &httpErr) && httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 &&
			httpErr.StatusCode != http.StatusTooManyRequests {
			return nil, fmt.Errorf("%w: %s (HTTP %d)", ErrNoData, yfTicker, httpErr.StatusCode)
		}
		return nil, fmt.Errorf("yfinance chart %s: %w", yfTicker, err)
	}
	defer body.Close()

	var resp yfChartResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: parse yfinance chart: %v", ErrMalformedResponse, err)
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrNoData, yfTicker, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, yfTicker)
	}

	metrics, ok := metricsFromCandles(parseYFCandles(resp.Chart.Result[0]))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoData, yfTicker)
	}
	metrics.Symbol = symbol
	return metrics, nil
}

// parseYFCandles converts the columnar chart payload into bars, skipping
// days without a close.
func parseYFCandles(result yfChartResult) []models.OHLCV {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	q := result.Indicators.Quote[0]
	candles := make([]models.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		c := models.OHLCV{
			Timestamp: time.Unix(ts, 0),
			Close:     *q.Close[i],
		}
		if i < len(q.Open) && q.Open[i] != nil {
			c.Open = *q.Open[i]
		}
		if i < len(q.High) && q.High[i] != nil {
			c.High = *q.High[i]
		}
		if i < len(q.Low) && q.Low[i] != nil {
			c.Low = *q.Low[i]
		}
		if i < len(q.Volume) && q.Volume[i] != nil {
			c.Volume = *q.Volume[i]
		}
		candles = append(candles, c)
	}
	return candles
}

// metricsFromCandles derives the daily snapshot from the most recent bars.
// The percent change is computed from the rounded close.
func metricsFromCandles(candles []models.OHLCV) (*models.StockMetrics, bool) {
	if len(candles) == 0 {
		return nil, false
	}
	last := candles[len(candles)-1]
	m := &models.StockMetrics{
		Close:  round2(last.Close),
		Volume: last.Volume,
		AsOf:   last.Timestamp,
	}
	if len(candles) >= 2 {
		prev := candles[len(candles)-2].Close
		m.PrevClose = round2(prev)
		if prev != 0 {
			m.ChangePct = round2((m.Close - prev) / prev * 100)
		}
	}
	return m, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
