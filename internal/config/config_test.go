package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/seenimoa/vendorwatch/internal/monitor"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, e := range []string{NewsAPIKeyEnv, "VENDORWATCH_NEWS_API_KEY", "VENDORWATCH_SENTIMENT_ANALYZER", "ONNXRUNTIME_SHARED_LIBRARY_PATH"} {
		t.Setenv(e, "")
		os.Unsetenv(e)
	}
}

// ── Load / Defaults ──

func TestLoadReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.News.Provider != ProviderNewsAPI {
		t.Errorf("News.Provider: got %q, want %q", cfg.News.Provider, ProviderNewsAPI)
	}
	if cfg.News.MaxArticles != 10 {
		t.Errorf("News.MaxArticles: got %d, want 10", cfg.News.MaxArticles)
	}
	if cfg.News.Language != "en" || cfg.News.SortBy != "publishedAt" {
		t.Errorf("News language/sort: got %q/%q", cfg.News.Language, cfg.News.SortBy)
	}
	if len(cfg.News.Domains) != len(monitor.DefaultBusinessDomains) {
		t.Errorf("News.Domains: got %d entries, want %d", len(cfg.News.Domains), len(monitor.DefaultBusinessDomains))
	}
	if cfg.Stock.Period != "5d" {
		t.Errorf("Stock.Period: got %q, want 5d", cfg.Stock.Period)
	}
	if cfg.Retry.MaxAttempts != 3 || cfg.Retry.InitialBackoff != time.Second || cfg.Retry.Multiplier != 2 {
		t.Errorf("Retry: got %+v", cfg.Retry)
	}
	if cfg.Sentiment.Analyzer != "vader" {
		t.Errorf("Sentiment.Analyzer: got %q, want vader", cfg.Sentiment.Analyzer)
	}
	if cfg.Sentiment.KeywordFallback {
		t.Error("Sentiment.KeywordFallback should be false by default")
	}
	if cfg.Sentiment.MaxSeqLen != 512 {
		t.Errorf("Sentiment.MaxSeqLen: got %d, want 512", cfg.Sentiment.MaxSeqLen)
	}
	if len(cfg.Suffixes) != len(monitor.DefaultSuffixes) {
		t.Errorf("Suffixes: got %d entries, want %d", len(cfg.Suffixes), len(monitor.DefaultSuffixes))
	}
	if cfg.Paths.Input != "vendors.csv" {
		t.Errorf("Paths.Input: got %q", cfg.Paths.Input)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.ConsoleLevel != "info" {
		t.Errorf("Logging: got %+v", cfg.Logging)
	}
}

// ── LoadFromFile ──

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
news:
  provider: rss
  max_articles: 5
  domains: [reuters.com, wsj.com]
retry:
  max_attempts: 4
  initial_backoff: 500ms
sentiment:
  analyzer: finbert
  model_path: /models/finbert/model.onnx
suffixes: ["Inc.", "Holdings"]
paths:
  input: data/vendors.csv
  output: reports
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error: %v", err)
	}

	if cfg.News.Provider != ProviderRSS {
		t.Errorf("News.Provider: got %q, want rss", cfg.News.Provider)
	}
	if cfg.News.MaxArticles != 5 {
		t.Errorf("News.MaxArticles: got %d, want 5", cfg.News.MaxArticles)
	}
	if strings.Join(cfg.News.Domains, ",") != "reuters.com,wsj.com" {
		t.Errorf("News.Domains: got %v", cfg.News.Domains)
	}
	if cfg.Retry.MaxAttempts != 4 || cfg.Retry.InitialBackoff != 500*time.Millisecond {
		t.Errorf("Retry: got %+v", cfg.Retry)
	}
	if cfg.Sentiment.Analyzer != "finbert" || cfg.Sentiment.ModelPath != "/models/finbert/model.onnx" {
		t.Errorf("Sentiment: got %+v", cfg.Sentiment)
	}
	if len(cfg.Suffixes) != 2 {
		t.Errorf("Suffixes: got %v", cfg.Suffixes)
	}
	if cfg.Paths.Output != "reports" {
		t.Errorf("Paths.Output: got %q", cfg.Paths.Output)
	}
	// Unset values keep their defaults.
	if cfg.Stock.Period != "5d" {
		t.Errorf("Stock.Period: got %q, want 5d", cfg.Stock.Period)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestLoadFromFileNotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

// ── Env overrides ──

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("VENDORWATCH_SENTIMENT_ANALYZER", "finbert")
	t.Setenv("VENDORWATCH_NEWS_API_KEY", "prefixed-key-0123456789")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Sentiment.Analyzer != "finbert" {
		t.Errorf("Sentiment.Analyzer: got %q, want finbert", cfg.Sentiment.Analyzer)
	}
	if cfg.News.APIKey != "prefixed-key-0123456789" {
		t.Errorf("News.APIKey: got %q", cfg.News.APIKey)
	}
}

func TestNewsAPIKeyEnvFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv(NewsAPIKeyEnv, "plain-key-0123456789")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.News.APIKey != "plain-key-0123456789" {
		t.Errorf("News.APIKey: got %q", cfg.News.APIKey)
	}
}

func TestPrefixedKeyWinsOverNewsAPIKeyEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(NewsAPIKeyEnv, "plain-key-0123456789")
	t.Setenv("VENDORWATCH_NEWS_API_KEY", "prefixed-key-0123456789")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.News.APIKey != "prefixed-key-0123456789" {
		t.Errorf("News.APIKey: got %q", cfg.News.APIKey)
	}
}

// ── Validate ──

func validConfig(t *testing.T) *Config {
	t.Helper()
	clearEnv(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	cfg.News.APIKey = "0123456789abcdef"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults with key", func(*Config) {}, ""},
		{"newsapi without key", func(c *Config) { c.News.APIKey = "" }, "APIKey"},
		{"rss without key", func(c *Config) { c.News.APIKey = ""; c.News.Provider = ProviderRSS }, ""},
		{"unknown provider", func(c *Config) { c.News.Provider = "bing" }, "Provider"},
		{"unknown analyzer", func(c *Config) { c.Sentiment.Analyzer = "textblob" }, "Analyzer"},
		{"zero attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, "MaxAttempts"},
		{"too many articles", func(c *Config) { c.News.MaxArticles = 500 }, "MaxArticles"},
		{"bad base url", func(c *Config) { c.Stock.BaseURL = "not a url" }, "BaseURL"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "Level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestConversions(t *testing.T) {
	cfg := validConfig(t)
	cfg.Sentiment.Analyzer = "finbert"
	cfg.Sentiment.TokenizerPath = "/models/tokenizer.json"

	p := cfg.RetryPolicy()
	if p.MaxAttempts != 3 || p.InitialBackoff != time.Second || p.BackoffMultiplier != 2 {
		t.Errorf("RetryPolicy: got %+v", p)
	}
	if p.Backoff(2) != 2*time.Second {
		t.Errorf("Backoff(2): got %v", p.Backoff(2))
	}

	sc := cfg.SentimentBackend()
	if sc.Analyzer != "finbert" || sc.Model.TokenizerPath != "/models/tokenizer.json" || sc.Model.MaxSeqLen != 512 {
		t.Errorf("SentimentBackend: got %+v", sc)
	}
}

// ── Keys ──

func TestCheckAPIKeysEmpty(t *testing.T) {
	clearEnv(t)
	cfg := &Config{News: NewsConfig{Provider: ProviderNewsAPI}}

	keys := CheckAPIKeys(cfg)
	if len(keys) != 1 {
		t.Fatalf("expected 1 key, got %d", len(keys))
	}
	k := keys[0]
	if k.IsSet || k.Source != KeySourceNone || k.Masked != "" || !k.Required {
		t.Errorf("unexpected status: %+v", k)
	}
}

func TestCheckAPIKeysFromConfig(t *testing.T) {
	clearEnv(t)
	cfg := &Config{News: NewsConfig{Provider: ProviderRSS, APIKey: "abcdefgh12345678wxyz"}}

	k := CheckAPIKeys(cfg)[0]
	if !k.IsSet || k.Source != KeySourceConfig {
		t.Errorf("unexpected status: %+v", k)
	}
	if k.Required {
		t.Error("key is optional for the rss provider")
	}
	if k.Masked != "abcdefgh...wxyz" {
		t.Errorf("Masked: got %q", k.Masked)
	}
}

func TestCheckAPIKeysFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(NewsAPIKeyEnv, "abcdefgh12345678wxyz")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	k := CheckAPIKeys(cfg)[0]
	if k.Source != KeySourceEnv {
		t.Errorf("Source: got %q, want env", k.Source)
	}
}

func TestHomeDirReturnsNonEmpty(t *testing.T) {
	if homeDir() == "" {
		t.Error("homeDir() should never be empty")
	}
}
