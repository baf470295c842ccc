// Package datasource provides the external collaborators of a monitoring
// run: news search (NewsAPI, Google News RSS) and daily stock metrics
// (Yahoo Finance chart API). Transport failures are mapped onto the
// infra error classes so the retry executor can act on them.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/vendorwatch/internal/infra"
	"github.com/seenimoa/vendorwatch/pkg/models"
)

// NewsQuery is a single news search request.
type NewsQuery struct {
	Text    string   // search string
	Domains []string // restrict to these publisher domains; empty means broad search
	Limit   int      // maximum articles to return
}

// NewsSource searches recent news articles. An empty, nil-error result
// means "no match" and is not a failure.
type NewsSource interface {
	Name() string
	SearchArticles(ctx context.Context, q NewsQuery) ([]models.Article, error)
}

// StockSource returns the latest daily metrics for a ticker, or an error
// matching ErrNoData when the symbol has no recent trading data.
type StockSource interface {
	Name() string
	GetStockMetrics(ctx context.Context, symbol string) (*models.StockMetrics, error)
}

// --- Sentinel errors ---

// ErrNoData is returned when a source has no data for a symbol (delisted or invalid).
var ErrNoData = fmt.Errorf("no data available: %w", infra.ErrPermanent)

// ErrMalformedResponse is returned when a response cannot be interpreted.
// It is retried like any transient failure.
var ErrMalformedResponse = errors.New("malformed response")

// ErrMissingAPIKey is returned when a source that needs a key has none.
var ErrMissingAPIKey = fmt.Errorf("missing API key: %w", infra.ErrFatalAuth)

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// Unwrap maps the status code onto the infra error classes:
// 429 → rate limited, 401 → fatal auth, other 4xx → permanent, 5xx → transient.
func (e *ErrHTTP) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return infra.ErrRateLimited
	case e.StatusCode == http.StatusUnauthorized:
		return infra.ErrFatalAuth
	case e.StatusCode == http.StatusRequestTimeout:
		return infra.ErrTransient
	case e.StatusCode >= 400 && e.StatusCode < 500:
		return infra.ErrPermanent
	default:
		return infra.ErrTransient
	}
}

// --- Shared HTTP client helpers ---

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// DefaultTimeout bounds a single HTTP request.
const DefaultTimeout = 30 * time.Second

// NewHTTPClient returns a pre-configured HTTP client with reasonable timeouts.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultTimeout}
}

// doGet performs a GET request with the given URL and headers, returning the response body.
// The caller is responsible for closing the returned ReadCloser.
func doGet(ctx context.Context, client *http.Client, url string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json, text/xml, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP GET: %w", err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	return resp.Body, nil
}

// cleanHTML strips HTML tags from a string using goquery.
func cleanHTML(s string) string {
	if s == "" || !strings.ContainsAny(s, "<&") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}

// keepArticles drops withdrawn articles and caps the result at limit.
func keepArticles(in []models.Article, limit int) []models.Article {
	out := make([]models.Article, 0, len(in))
	for _, a := range in {
		if a.Removed() {
			continue
		}
		out = append(out, a)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}
