// Package config loads vendorwatch configuration from an optional YAML file
// with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/seenimoa/vendorwatch/internal/analysis/sentiment"
	"github.com/seenimoa/vendorwatch/internal/datasource"
	"github.com/seenimoa/vendorwatch/internal/infra"
	"github.com/seenimoa/vendorwatch/internal/monitor"
)

// EnvPrefix prefixes every environment override, e.g. VENDORWATCH_NEWS_API_KEY.
const EnvPrefix = "VENDORWATCH"

// NewsAPIKeyEnv is the conventional NewsAPI key variable, honoured as well
// as VENDORWATCH_NEWS_API_KEY.
const NewsAPIKeyEnv = "NEWSAPI_KEY"

// News providers.
const (
	ProviderNewsAPI = "newsapi"
	ProviderRSS     = "rss"
)

// Config represents the complete application configuration.
type Config struct {
	News      NewsConfig      `mapstructure:"news"      yaml:"news"`
	Stock     StockConfig     `mapstructure:"stock"     yaml:"stock"`
	Retry     RetryConfig     `mapstructure:"retry"     yaml:"retry"`
	Sentiment SentimentConfig `mapstructure:"sentiment" yaml:"sentiment"`
	Suffixes  []string        `mapstructure:"suffixes"  yaml:"suffixes"`
	Paths     PathsConfig     `mapstructure:"paths"     yaml:"paths"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
}

// NewsConfig selects and tunes the headline source.
type NewsConfig struct {
	Provider          string   `mapstructure:"provider"            yaml:"provider"            validate:"oneof=newsapi rss"`
	APIKey            string   `mapstructure:"api_key"             yaml:"api_key"             validate:"required_if=Provider newsapi"`
	BaseURL           string   `mapstructure:"base_url"            yaml:"base_url"            validate:"omitempty,url"`
	MaxArticles       int      `mapstructure:"max_articles"        yaml:"max_articles"        validate:"min=1,max=100"`
	Language          string   `mapstructure:"language"            yaml:"language"`
	SortBy            string   `mapstructure:"sort_by"             yaml:"sort_by"             validate:"omitempty,oneof=publishedAt relevancy popularity"`
	Domains           []string `mapstructure:"domains"             yaml:"domains"`
	RequestsPerSecond float64  `mapstructure:"requests_per_second" yaml:"requests_per_second" validate:"gte=0"`
}

// StockConfig tunes the Yahoo chart client.
type StockConfig struct {
	BaseURL           string  `mapstructure:"base_url"            yaml:"base_url"            validate:"omitempty,url"`
	Period            string  `mapstructure:"period"              yaml:"period"              validate:"required"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second" validate:"gte=0"`
}

// RetryConfig is the backoff policy shared by all remote calls.
type RetryConfig struct {
	MaxAttempts    int           `mapstructure:"max_attempts"    yaml:"max_attempts"    validate:"min=1,max=10"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff" yaml:"initial_backoff" validate:"gte=0"`
	Multiplier     float64       `mapstructure:"multiplier"      yaml:"multiplier"      validate:"gte=1"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"     yaml:"max_backoff"     validate:"gte=0"`
}

// SentimentConfig selects the scoring backend.
type SentimentConfig struct {
	Analyzer        string `mapstructure:"analyzer"         yaml:"analyzer"         validate:"oneof=vader finbert"`
	KeywordFallback bool   `mapstructure:"keyword_fallback" yaml:"keyword_fallback"`
	ModelPath       string `mapstructure:"model_path"       yaml:"model_path"`
	TokenizerPath   string `mapstructure:"tokenizer_path"   yaml:"tokenizer_path"`
	ORTLibrary      string `mapstructure:"ort_library"      yaml:"ort_library"`
	MaxSeqLen       int    `mapstructure:"max_seq_len"      yaml:"max_seq_len"      validate:"min=8,max=512"`
}

// PathsConfig holds the input list and output locations.
type PathsConfig struct {
	Input  string `mapstructure:"input"  yaml:"input"  validate:"required"`
	Output string `mapstructure:"output" yaml:"output"`
	Logs   string `mapstructure:"logs"   yaml:"logs"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level        string `mapstructure:"level"         yaml:"level"         validate:"oneof=trace debug info warn error"`
	ConsoleLevel string `mapstructure:"console_level" yaml:"console_level" validate:"oneof=trace debug info warn error"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml
//  2. ~/.vendorwatch/config.yaml
//  3. /etc/vendorwatch/config.yaml
//
// Environment variables override config file values, e.g.
// VENDORWATCH_SENTIMENT_ANALYZER=finbert.
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".vendorwatch"))
	v.AddConfigPath("/etc/vendorwatch")

	// Config file not found is fine: defaults + env vars.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("news.provider", ProviderNewsAPI)
	v.SetDefault("news.api_key", "")
	v.SetDefault("news.base_url", "") // provider default
	v.SetDefault("news.max_articles", monitor.DefaultMaxArticles)
	v.SetDefault("news.language", "en")
	v.SetDefault("news.sort_by", "publishedAt")
	v.SetDefault("news.domains", monitor.DefaultBusinessDomains)
	v.SetDefault("news.requests_per_second", datasource.DefaultNewsAPIRateLimit)

	v.SetDefault("stock.base_url", datasource.DefaultYFinanceURL)
	v.SetDefault("stock.period", "5d")
	v.SetDefault("stock.requests_per_second", 5)

	def := infra.DefaultRetryPolicy()
	v.SetDefault("retry.max_attempts", def.MaxAttempts)
	v.SetDefault("retry.initial_backoff", def.InitialBackoff)
	v.SetDefault("retry.multiplier", def.BackoffMultiplier)
	v.SetDefault("retry.max_backoff", def.MaxBackoff)

	v.SetDefault("sentiment.analyzer", sentiment.BackendVader)
	v.SetDefault("sentiment.keyword_fallback", false)
	v.SetDefault("sentiment.model_path", "")
	v.SetDefault("sentiment.tokenizer_path", "")
	v.SetDefault("sentiment.ort_library", "")
	v.SetDefault("sentiment.max_seq_len", sentiment.DefaultMaxSeqLen)

	v.SetDefault("suffixes", monitor.DefaultSuffixes)

	v.SetDefault("paths.input", "vendors.csv")
	v.SetDefault("paths.output", ".")
	v.SetDefault("paths.logs", ".")

	v.SetDefault("logging.level", "debug")
	v.SetDefault("logging.console_level", "info")
}

// overrideFromEnv reads credentials whose env names do not follow the
// prefix scheme.
func overrideFromEnv(cfg *Config) {
	if cfg.News.APIKey == "" {
		cfg.News.APIKey = os.Getenv(NewsAPIKeyEnv)
	}
	if lib := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); lib != "" && cfg.Sentiment.ORTLibrary == "" {
		cfg.Sentiment.ORTLibrary = lib
	}
}

// Validate checks field constraints. The error lists every failing field.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
		}
		return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
	}
	return nil
}

// RetryPolicy converts the retry section to an executor policy.
func (c *Config) RetryPolicy() infra.RetryPolicy {
	return infra.RetryPolicy{
		MaxAttempts:       c.Retry.MaxAttempts,
		InitialBackoff:    c.Retry.InitialBackoff,
		BackoffMultiplier: c.Retry.Multiplier,
		MaxBackoff:        c.Retry.MaxBackoff,
	}
}

// SentimentBackend converts the sentiment section to backend settings.
func (c *Config) SentimentBackend() sentiment.Config {
	return sentiment.Config{
		Analyzer:        c.Sentiment.Analyzer,
		KeywordFallback: c.Sentiment.KeywordFallback,
		Model: sentiment.ModelConfig{
			ORTLibrary:    c.Sentiment.ORTLibrary,
			ModelPath:     c.Sentiment.ModelPath,
			TokenizerPath: c.Sentiment.TokenizerPath,
			MaxSeqLen:     c.Sentiment.MaxSeqLen,
		},
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
