// Package sentiment scores financial news text as bullish, neutral or
// bearish. Two backends share the Scorer contract: a deterministic VADER
// lexicon scorer and a FinBERT classifier run through ONNX Runtime.
package sentiment

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/seenimoa/vendorwatch/pkg/models"
	"github.com/seenimoa/vendorwatch/pkg/utils"
)

// Backend names accepted by New.
const (
	BackendVader   = "vader"
	BackendFinBERT = "finbert"
)

// Compound thresholds for the lexicon backend.
const (
	BullishThreshold = 0.05
	BearishThreshold = -0.05
)

// ErrBackendUnavailable is returned at startup when the selected backend's
// runtime dependencies are missing.
var ErrBackendUnavailable = errors.New("sentiment backend unavailable")

// Scorer maps article text to a SentimentResult. Implementations are
// selected once per run and reused for every article.
type Scorer interface {
	Name() string
	Score(text string) (models.SentimentResult, error)
	Close() error
}

// ScoreArticle scores the normalized title, description and content of a.
func ScoreArticle(s Scorer, a models.Article) (models.SentimentResult, error) {
	res, err := s.Score(utils.NormalizeText(a.Text()))
	if err != nil {
		return models.SentimentResult{}, fmt.Errorf("%s: score %q: %w", s.Name(), utils.Truncate(a.Title, 40), err)
	}
	return res, nil
}

// LabelFromCompound maps a valence score in [-1, 1] to a label.
func LabelFromCompound(compound float64) models.SentimentLabel {
	switch {
	case compound >= BullishThreshold:
		return models.LabelBullish
	case compound <= BearishThreshold:
		return models.LabelBearish
	default:
		return models.LabelNeutral
	}
}

// ------------------------------------------------------------------
// Finance keyword dictionary. General-purpose lexicons miss much of the
// vocabulary of market headlines ("beats estimates", "downgrade"), so the
// lexicon backend consults these terms when VADER finds no valence at all.
// ------------------------------------------------------------------

type keyword struct {
	term   string
	weight float64
}

var bullishTerms = sortedTerms(map[string]float64{
	"bullish": 0.7, "rally": 0.6, "surge": 0.7, "upbeat": 0.5,
	"growth": 0.4, "upgrade": 0.6, "outperform": 0.6,
	"buyback": 0.5, "strong": 0.4, "recovery": 0.5, "breakout": 0.6,
	"record high": 0.7, "all-time high": 0.7, "beat": 0.5,
	"exceed": 0.5, "tops estimates": 0.6, "expansion": 0.4,
	"profit": 0.3, "dividend": 0.4, "raises guidance": 0.6, "soar": 0.7,
	"jump": 0.5, "acquire": 0.3, "partnership": 0.3,
})

var bearishTerms = sortedTerms(map[string]float64{
	"bearish": 0.7, "crash": 0.8, "plunge": 0.7, "slump": 0.6,
	"downgrade": 0.6, "underperform": 0.6,
	"weak": 0.4, "decline": 0.5, "loss": 0.4, "layoff": 0.6,
	"selloff": 0.7, "sell-off": 0.7, "fall": 0.4, "correction": 0.5,
	"default": 0.7, "fraud": 0.8, "lawsuit": 0.6, "investigation": 0.5,
	"cut": 0.3, "miss": 0.5, "warning": 0.5, "breach": 0.7,
	"outage": 0.6, "lowers guidance": 0.6, "tumble": 0.6,
})

func sortedTerms(m map[string]float64) []keyword {
	out := make([]keyword, 0, len(m))
	for t, w := range m {
		out = append(out, keyword{term: t, weight: w})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].term < out[j].term })
	return out
}

// KeywordScore returns a net finance-keyword score in [-1, 1] and the
// number of matched terms. Terms match at the start of a word, so "beat"
// matches "beats" but not "upbeat".
func KeywordScore(text string) (score float64, matches int) {
	lower := " " + strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)
	bull, bear := 0.0, 0.0

	for _, k := range bullishTerms {
		if strings.Contains(lower, " "+k.term) {
			bull += k.weight
			matches++
		}
	}
	for _, k := range bearishTerms {
		if strings.Contains(lower, " "+k.term) {
			bear += k.weight
			matches++
		}
	}

	total := bull + bear
	if total == 0 {
		return 0, matches
	}
	score = (bull - bear) / total
	// Damp single-term matches so they do not read as certainty.
	score *= math.Min(float64(matches)*0.25+0.25, 1)
	return score, matches
}
