// vendorwatch monitors a list of vendor companies: daily stock metrics,
// recent news headlines and their sentiment, written to dated CSV reports.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/phuslu/log"
	"github.com/spf13/cobra"

	"github.com/seenimoa/vendorwatch/internal/analysis/sentiment"
	"github.com/seenimoa/vendorwatch/internal/config"
	"github.com/seenimoa/vendorwatch/internal/datasource"
	"github.com/seenimoa/vendorwatch/internal/infra"
	"github.com/seenimoa/vendorwatch/internal/logging"
	"github.com/seenimoa/vendorwatch/internal/monitor"
	"github.com/seenimoa/vendorwatch/internal/report"
	"github.com/seenimoa/vendorwatch/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

// exitInterrupted is the conventional exit status after SIGINT.
const exitInterrupted = 130

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Process interrupted by user")
			os.Exit(exitInterrupted)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vendorwatch",
	Short: "Monitor vendor company stocks and news with sentiment analysis",
	Long: `vendorwatch reads a vendor list (symbol,companyname), fetches each
vendor's latest stock metrics and recent news headlines, scores headline
sentiment with VADER or FinBERT, and writes dated stock and headline
reports plus a detailed log.

Running without a subcommand is the same as "vendorwatch run".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	RunE: runMonitor,
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")

	addRunFlags(rootCmd)
	addRunFlags(runCmd)

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vendorwatch %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Run Command ---

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process the vendor list and write reports",
	Example: `  vendorwatch run
  vendorwatch run --analyzer finbert
  vendorwatch run -i vendors.csv -o ./reports -l ./logs -a finbert`,
	RunE: runMonitor,
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", "", "input CSV file with vendor data (default: vendors.csv)")
	cmd.Flags().StringP("output", "o", "", "output directory for CSV reports (default: current directory)")
	cmd.Flags().StringP("log-path", "l", "", "directory for log files (default: current directory)")
	cmd.Flags().StringP("analyzer", "a", "", "sentiment analyzer: vader or finbert (default: vader)")
	cmd.Flags().String("provider", "", "news provider: newsapi or rss (default: newsapi)")
}

// applyRunFlags overrides config values with flags given on the command line.
func applyRunFlags(cmd *cobra.Command, c *config.Config) {
	set := func(name string, dst *string) {
		if cmd.Flags().Changed(name) {
			*dst, _ = cmd.Flags().GetString(name)
		}
	}
	set("input", &c.Paths.Input)
	set("output", &c.Paths.Output)
	set("log-path", &c.Paths.Logs)
	set("analyzer", &c.Sentiment.Analyzer)
	set("provider", &c.News.Provider)
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	applyRunFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	now := utils.NowET()
	lg, err := logging.New(logging.Options{
		Dir:          cfg.Paths.Logs,
		Level:        cfg.Logging.Level,
		ConsoleLevel: cfg.Logging.ConsoleLevel,
		Now:          now,
	})
	if err != nil {
		return err
	}
	defer lg.Close()
	logger := lg.Logger

	logger.Info().Msg("Vendor Stock & News Monitor")
	logger.Info().Msgf("Input file: %s", cfg.Paths.Input)
	if utils.IsMarketOpenAt(now) {
		logger.Warn().Msg("Market is open: close prices reflect the in-progress session")
	}

	vendors, loadWarnings, err := monitor.LoadVendorsFile(cfg.Paths.Input)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to read vendor list")
		return err
	}
	logger.Info().Msgf("Loaded %d vendors", len(vendors))

	scorer, err := sentiment.New(cfg.SentimentBackend(), logger)
	if err != nil {
		logger.Error().Err(err).Str("analyzer", cfg.Sentiment.Analyzer).Msg("Sentiment analyzer unavailable")
		return err
	}
	defer scorer.Close()
	logger.Info().Msgf("Sentiment analyzer: %s", scorer.Name())

	news := newNewsSource(cfg, logger)
	stockOpts := []datasource.YFinanceOption{
		datasource.WithYFinancePeriod(cfg.Stock.Period),
		datasource.WithYFinanceRateLimit(cfg.Stock.RequestsPerSecond),
		datasource.WithYFinanceLogger(logger),
	}
	if cfg.Stock.BaseURL != "" {
		stockOpts = append(stockOpts, datasource.WithYFinanceBaseURL(cfg.Stock.BaseURL))
	}
	stocks := datasource.NewYFinance(stockOpts...)

	exec := infra.NewExecutor(cfg.RetryPolicy(), logger)
	fetcher := monitor.NewHeadlineFetcher(news, monitor.NewQueryBuilder(cfg.Suffixes), exec,
		cfg.News.Domains, cfg.News.MaxArticles, logger)
	runner := monitor.NewRunner(monitor.NewAggregator(stocks, fetcher, scorer, exec, logger), logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, runErr := runner.Run(ctx, vendors)
	res.Summary.Warnings = append(loadWarnings, res.Summary.Warnings...)

	// Partial results are still reported; write failures become warnings.
	w := report.NewWriter(cfg.Paths.Output, logger)
	_, _ = w.Write(context.WithoutCancel(ctx), res, now)

	report.PrintSummary(logger, res.Summary, filepath.Base(lg.Path))

	switch {
	case runErr == nil:
		return nil
	case errors.Is(runErr, context.Canceled):
		logger.Warn().Msg("Process interrupted by user")
		return runErr
	case infra.IsFatal(runErr):
		return fmt.Errorf("news provider rejected credentials: %w", runErr)
	default:
		return runErr
	}
}

func newNewsSource(c *config.Config, logger *log.Logger) datasource.NewsSource {
	if c.News.Provider == config.ProviderRSS {
		opts := []datasource.GoogleNewsOption{datasource.WithGoogleNewsLogger(logger)}
		if c.News.BaseURL != "" {
			opts = append(opts, datasource.WithGoogleNewsURL(c.News.BaseURL))
		}
		if c.News.RequestsPerSecond > 0 {
			opts = append(opts, datasource.WithGoogleNewsRateLimit(c.News.RequestsPerSecond))
		}
		logger.Info().Msg("News provider: Google News RSS")
		return datasource.NewGoogleNews(opts...)
	}

	opts := []datasource.NewsAPIOption{
		datasource.WithNewsAPILanguage(c.News.Language, c.News.SortBy),
		datasource.WithNewsAPIRateLimit(c.News.RequestsPerSecond),
		datasource.WithNewsAPILogger(logger),
	}
	if c.News.BaseURL != "" {
		opts = append(opts, datasource.WithNewsAPIBaseURL(c.News.BaseURL))
	}
	logger.Info().Msgf("Using NewsAPI key: %s", utils.MaskSecret(c.News.APIKey))
	return datasource.NewNewsAPI(c.News.APIKey, opts...)
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration, API key status and analyzer availability",
	RunE: func(cmd *cobra.Command, args []string) error {
		line := "═══════════════════════════════════════"
		fmt.Println(line)
		fmt.Println("  vendorwatch - System Status")
		fmt.Println(line)
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		now := utils.NowET()
		fmt.Printf("  Market Status: %s\n", utils.MarketStatus(now))
		fmt.Printf("  Time (ET):     %s\n", utils.FormatDateTime(now))
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    News Provider: %s (max %d articles)\n", cfg.News.Provider, cfg.News.MaxArticles)
		fmt.Printf("    Domains:       %d business domains\n", len(cfg.News.Domains))
		fmt.Printf("    Stock Period:  %s\n", cfg.Stock.Period)
		fmt.Printf("    Retry:         %d attempts, %s initial backoff\n", cfg.Retry.MaxAttempts, cfg.Retry.InitialBackoff)
		fmt.Printf("    Analyzer:      %s\n", cfg.Sentiment.Analyzer)
		fmt.Printf("    Input:         %s\n", cfg.Paths.Input)
		fmt.Printf("    Output:        %s\n", cfg.Paths.Output)
		fmt.Printf("    Logs:          %s\n", cfg.Paths.Logs)
		if err := cfg.Validate(); err != nil {
			fmt.Printf("    ⚠ %v\n", err)
		}
		fmt.Println()

		fmt.Println("  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "❌ not set"
			if k.IsSet {
				status = fmt.Sprintf("✅ set (%s: %s)", k.Source, k.Masked)
			} else if !k.Required {
				status = "– not set (not required)"
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}
		fmt.Println()

		fmt.Println("  Analyzers:")
		for _, b := range sentiment.Backends() {
			status := "✅ available"
			if b == sentiment.BackendFinBERT {
				if err := sentiment.CheckModel(cfg.SentimentBackend().Model); err != nil {
					status = "❌ " + err.Error()
				}
			}
			fmt.Printf("    %-25s %s\n", b+":", status)
		}

		fmt.Println(line)
		return nil
	},
}
