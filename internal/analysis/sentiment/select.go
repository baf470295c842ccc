package sentiment

import (
	"fmt"
	"strings"
	"time"

	"github.com/phuslu/log"

	"github.com/seenimoa/vendorwatch/internal/logging"
)

// Config selects and configures the backend for a run.
type Config struct {
	Analyzer        string // BackendVader or BackendFinBERT
	KeywordFallback bool
	Model           ModelConfig
}

// loadClassifier is replaced in tests.
var loadClassifier = LoadONNX

// Backends lists the accepted backend names.
func Backends() []string { return []string{BackendVader, BackendFinBERT} }

// New builds the scorer named by cfg.Analyzer. Selecting finbert without
// its runtime dependencies fails here, before any vendor is processed.
func New(cfg Config, logger *log.Logger) (Scorer, error) {
	logger = logging.OrNop(logger)

	switch strings.ToLower(strings.TrimSpace(cfg.Analyzer)) {
	case "", BackendVader:
		logger.Info().Str("analyzer", BackendVader).Msg("Using VADER lexicon sentiment analyzer")
		return NewLexicon(WithKeywordFallback(cfg.KeywordFallback), WithLexiconLogger(logger)), nil

	case BackendFinBERT:
		if err := CheckModel(cfg.Model); err != nil {
			return nil, err
		}
		logger.Info().Str("model", cfg.Model.ModelPath).Msg("Loading FinBERT model (this can take a while)")
		start := time.Now()
		c, err := loadClassifier(cfg.Model)
		if err != nil {
			return nil, err
		}
		logger.Info().Dur("elapsed", time.Since(start)).Msg("FinBERT model loaded")
		return NewModel(c, FinBERTClasses, logger), nil

	default:
		return nil, fmt.Errorf("unknown sentiment analyzer %q (want one of %s)", cfg.Analyzer, strings.Join(Backends(), ", "))
	}
}
