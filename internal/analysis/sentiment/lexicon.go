package sentiment

import (
	"github.com/jonreiter/govader"
	"github.com/phuslu/log"

	"github.com/seenimoa/vendorwatch/internal/logging"
	"github.com/seenimoa/vendorwatch/pkg/models"
)

// Lexicon is the VADER rule-based scorer. It is a pure function of its
// input: the same text always yields the same label and compound score.
type Lexicon struct {
	analyzer        *govader.SentimentIntensityAnalyzer
	keywordFallback bool
	logger          *log.Logger
}

// LexiconOption configures a Lexicon scorer.
type LexiconOption func(*Lexicon)

// WithKeywordFallback toggles the finance keyword fallback used when VADER
// reports a compound of exactly zero. Off by default: labels then come from
// the VADER compound alone.
func WithKeywordFallback(on bool) LexiconOption {
	return func(l *Lexicon) { l.keywordFallback = on }
}

// WithLexiconLogger sets a logger for per-article score details.
func WithLexiconLogger(logger *log.Logger) LexiconOption {
	return func(l *Lexicon) { l.logger = logger }
}

// NewLexicon creates the VADER scorer.
func NewLexicon(opts ...LexiconOption) *Lexicon {
	l := &Lexicon{
		analyzer: govader.NewSentimentIntensityAnalyzer(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.logger = logging.OrNop(l.logger)
	return l
}

// Name returns the backend name.
func (l *Lexicon) Name() string { return BackendVader }

// Score computes the VADER compound valence and maps it to a label with the
// ±0.05 thresholds. Empty text scores neutral.
func (l *Lexicon) Score(text string) (models.SentimentResult, error) {
	if text == "" {
		return models.SentimentResult{Label: models.LabelNeutral}, nil
	}

	p := l.analyzer.PolarityScores(text)
	compound := p.Compound
	source := "vader"
	if compound == 0 && l.keywordFallback {
		if kw, n := KeywordScore(text); n > 0 {
			compound = kw
			source = "keywords"
		}
	}

	res := models.SentimentResult{
		Label:    LabelFromCompound(compound),
		Compound: compound,
		Scores: map[string]float64{
			models.ClassPositive: p.Positive,
			models.ClassNegative: p.Negative,
			models.ClassNeutral:  p.Neutral,
		},
	}
	l.logger.Debug().Float64("compound", compound).Str("source", source).
		Float64("pos", p.Positive).Float64("neg", p.Negative).Float64("neu", p.Neutral).
		Str("label", string(res.Label)).Msg("lexicon score")
	return res, nil
}

// Close is a no-op; the lexicon holds no external resources.
func (l *Lexicon) Close() error { return nil }
