package datasource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/phuslu/log"
	"golang.org/x/time/rate"

	"github.com/seenimoa/vendorwatch/internal/infra"
	"github.com/seenimoa/vendorwatch/internal/logging"
	"github.com/seenimoa/vendorwatch/pkg/models"
)

// DefaultGoogleNewsURL is the Google News RSS search endpoint.
const DefaultGoogleNewsURL = "https://news.google.com/rss/search"

// GoogleNews searches the Google News RSS feed. It needs no API key.
type GoogleNews struct {
	searchURL  string
	locale     string // hl parameter, e.g. "en-US"
	country    string // gl parameter, e.g. "US"
	httpClient *http.Client
	limiter    *rate.Limiter
	parser     *gofeed.Parser
	logger     *log.Logger
}

// GoogleNewsOption configures the GoogleNews source.
type GoogleNewsOption func(*GoogleNews)

// WithGoogleNewsURL sets a custom search endpoint.
func WithGoogleNewsURL(u string) GoogleNewsOption {
	return func(g *GoogleNews) { g.searchURL = u }
}

// WithGoogleNewsHTTPClient sets a custom HTTP client.
func WithGoogleNewsHTTPClient(c *http.Client) GoogleNewsOption {
	return func(g *GoogleNews) { g.httpClient = c }
}

// WithGoogleNewsLogger sets a logger.
func WithGoogleNewsLogger(l *log.Logger) GoogleNewsOption {
	return func(g *GoogleNews) { g.logger = l }
}

// WithGoogleNewsRateLimit sets a custom rate limit.
func WithGoogleNewsRateLimit(perSecond float64) GoogleNewsOption {
	return func(g *GoogleNews) { g.limiter = infra.NewLimiter(perSecond) }
}

// NewGoogleNews creates a Google News RSS source for US English results.
func NewGoogleNews(opts ...GoogleNewsOption) *GoogleNews {
	g := &GoogleNews{
		searchURL:  DefaultGoogleNewsURL,
		locale:     "en-US",
		country:    "US",
		httpClient: NewHTTPClient(),
		limiter:    infra.NewLimiter(2),
		parser:     gofeed.NewParser(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = logging.OrNop(g.logger)
	return g
}

// Name returns the data source name.
func (g *GoogleNews) Name() string { return "Google News" }

// SearchArticles runs one RSS search. Domain restriction is expressed
// with site: operators.
func (g *GoogleNews) SearchArticles(ctx context.Context, q NewsQuery) ([]models.Article, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", rssQuery(q))
	params.Set("hl", g.locale)
	params.Set("gl", g.country)
	params.Set("ceid", g.country+":"+strings.SplitN(g.locale, "-", 2)[0])
	reqURL := g.searchURL + "?" + params.Encode()

	g.logger.Debug().Str("query", q.Text).Int("domains", len(q.Domains)).Msg("Google News request")

	body, err := doGet(ctx, g.httpClient, reqURL, map[string]string{
		"Accept": "application/rss+xml, application/xml, text/xml",
	})
	if err != nil {
		return nil, fmt.Errorf("google news %q: %w", q.Text, err)
	}
	defer body.Close()

	feed, err := g.parser.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse RSS: %v", ErrMalformedResponse, err)
	}

	articles := make([]models.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		title, source := splitSource(item.Title)
		a := models.Article{
			Title:       title,
			Description: cleanHTML(item.Description),
			Content:     cleanHTML(item.Content),
			URL:         item.Link,
			Source:      source,
		}
		// The feed description repeats the headline; keep only real summaries.
		if a.Description == item.Title || strings.HasPrefix(a.Description, title) {
			a.Description = ""
		}
		if item.PublishedParsed != nil {
			a.PublishedAt = *item.PublishedParsed
		}
		articles = append(articles, a)
	}
	return keepArticles(articles, q.Limit), nil
}

func rssQuery(q NewsQuery) string {
	text := q.Text
	if strings.ContainsRune(text, ' ') {
		text = `"` + text + `"`
	}
	if len(q.Domains) == 0 {
		return text
	}
	sites := make([]string, len(q.Domains))
	for i, d := range q.Domains {
		sites[i] = "site:" + d
	}
	return text + " (" + strings.Join(sites, " OR ") + ")"
}

// splitSource separates the trailing " - Publisher" Google appends to titles.
func splitSource(title string) (string, string) {
	title = strings.TrimSpace(title)
	i := strings.LastIndex(title, " - ")
	if i <= 0 {
		return title, ""
	}
	return strings.TrimSpace(title[:i]), strings.TrimSpace(title[i+3:])
}
