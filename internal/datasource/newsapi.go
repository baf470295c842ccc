package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/phuslu/log"
	"golang.org/x/time/rate"

	"github.com/seenimoa/vendorwatch/internal/infra"
	"github.com/seenimoa/vendorwatch/internal/logging"
	"github.com/seenimoa/vendorwatch/pkg/models"
)

const (
	// DefaultNewsAPIURL is the base URL for NewsAPI.org.
	DefaultNewsAPIURL = "https://newsapi.org"

	// DefaultNewsAPIRateLimit is the default request rate (requests per second).
	DefaultNewsAPIRateLimit = 1
)

// NewsAPI searches articles through the NewsAPI.org "everything" endpoint.
type NewsAPI struct {
	baseURL    string
	apiKey     string
	language   string
	sortBy     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewsAPIOption configures the NewsAPI client.
type NewsAPIOption func(*NewsAPI)

// WithNewsAPIBaseURL sets a custom base URL.
func WithNewsAPIBaseURL(baseURL string) NewsAPIOption {
	return func(n *NewsAPI) { n.baseURL = strings.TrimRight(baseURL, "/") }
}

// WithNewsAPIHTTPClient sets a custom HTTP client.
func WithNewsAPIHTTPClient(c *http.Client) NewsAPIOption {
	return func(n *NewsAPI) { n.httpClient = c }
}

// WithNewsAPILogger sets a logger.
func WithNewsAPILogger(l *log.Logger) NewsAPIOption {
	return func(n *NewsAPI) { n.logger = l }
}

// WithNewsAPIRateLimit sets a custom rate limit.
func WithNewsAPIRateLimit(perSecond float64) NewsAPIOption {
	return func(n *NewsAPI) { n.limiter = infra.NewLimiter(perSecond) }
}

// WithNewsAPILanguage sets the language filter and sort order.
func WithNewsAPILanguage(language, sortBy string) NewsAPIOption {
	return func(n *NewsAPI) {
		if language != "" {
			n.language = language
		}
		if sortBy != "" {
			n.sortBy = sortBy
		}
	}
}

// NewNewsAPI creates a NewsAPI client.
func NewNewsAPI(apiKey string, opts ...NewsAPIOption) *NewsAPI {
	n := &NewsAPI{
		baseURL:    DefaultNewsAPIURL,
		apiKey:     apiKey,
		language:   "en",
		sortBy:     "publishedAt",
		httpClient: NewHTTPClient(),
		limiter:    infra.NewLimiter(DefaultNewsAPIRateLimit),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.logger = logging.OrNop(n.logger)
	return n
}

// Name returns the data source name.
func (n *NewsAPI) Name() string { return "NewsAPI" }

// --- NewsAPI response types ---

type newsAPIResponse struct {
	Status       string           `json:"status"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
}

type newsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

// NewsAPIError is an error payload returned by NewsAPI.
type NewsAPIError struct {
	Code    string // e.g., "rateLimited", "apiKeyInvalid"
	Message string
	HTTP    *ErrHTTP
}

func (e *NewsAPIError) Error() string {
	if e.HTTP != nil {
		return fmt.Sprintf("newsapi %s (HTTP %d): %s", e.Code, e.HTTP.StatusCode, e.Message)
	}
	return fmt.Sprintf("newsapi %s: %s", e.Code, e.Message)
}

// Unwrap classifies by the NewsAPI error code first, then by HTTP status.
func (e *NewsAPIError) Unwrap() error {
	switch e.Code {
	case "rateLimited":
		return infra.ErrRateLimited
	case "apiKeyInvalid", "apiKeyMissing", "apiKeyDisabled":
		return infra.ErrFatalAuth
	}
	if e.HTTP != nil {
		return e.HTTP
	}
	return infra.ErrTransient
}

// SearchArticles runs one "everything" query.
func (n *NewsAPI) SearchArticles(ctx context.Context, q NewsQuery) ([]models.Article, error) {
	if n.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", q.Text)
	if len(q.Domains) > 0 {
		params.Set("domains", strings.Join(q.Domains, ","))
	}
	if n.language != "" {
		params.Set("language", n.language)
	}
	if n.sortBy != "" {
		params.Set("sortBy", n.sortBy)
	}
	if q.Limit > 0 {
		params.Set("pageSize", strconv.Itoa(q.Limit))
	}
	reqURL := n.baseURL + "/v2/everything?" + params.Encode()

	n.logger.Debug().Str("query", q.Text).Int("domains", len(q.Domains)).Int("limit", q.Limit).Msg("NewsAPI request")

	body, err := doGet(ctx, n.httpClient, reqURL, map[string]string{
		"Accept":    "application/json",
		"X-Api-Key": n.apiKey,
	})
	if err != nil {
		var httpErr *ErrHTTP
		if errors.As(err, &httpErr) {
			return nil, newsAPIErrorFrom(httpErr)
		}
		return nil, fmt.Errorf("newsapi %q: %w", q.Text, err)
	}
	defer body.Close()

	var resp newsAPIResponse
	if err := json.NewDecoder(body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: decode newsapi: %v", ErrMalformedResponse, err)
	}
	if resp.Status != "ok" {
		if resp.Code != "" {
			return nil, &NewsAPIError{Code: resp.Code, Message: resp.Message}
		}
		return nil, fmt.Errorf("%w: newsapi status %q", ErrMalformedResponse, resp.Status)
	}

	articles := make([]models.Article, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		articles = append(articles, a.toModel())
	}
	return keepArticles(articles, q.Limit), nil
}

func newsAPIErrorFrom(httpErr *ErrHTTP) error {
	var payload newsAPIResponse
	if json.Unmarshal([]byte(httpErr.Body), &payload) == nil && payload.Code != "" {
		return &NewsAPIError{Code: payload.Code, Message: payload.Message, HTTP: httpErr}
	}
	return httpErr
}

// truncationMarker matches the "[+1234 chars]" tail NewsAPI appends to content.
var truncationMarker = regexp.MustCompile(`\s*\[\+\d+ chars\]\s*$`)

func (a newsAPIArticle) toModel() models.Article {
	out := models.Article{
		Title:       strings.TrimSpace(a.Title),
		Description: cleanHTML(a.Description),
		Content:     truncationMarker.ReplaceAllString(cleanHTML(a.Content), ""),
		URL:         a.URL,
		Source:      a.Source.Name,
	}
	if t, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
		out.PublishedAt = t
	}
	return out
}
