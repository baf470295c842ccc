package models

// SentimentLabel is the discrete sentiment assigned to financial text.
type SentimentLabel string

const (
	LabelBullish SentimentLabel = "bullish"
	LabelNeutral SentimentLabel = "neutral"
	LabelBearish SentimentLabel = "bearish"
	LabelNA      SentimentLabel = "N/A" // no scorable headline
)

// Rank orders labels for aggregation: bullish > neutral > bearish.
// Anything else, including N/A, ranks 0.
func (l SentimentLabel) Rank() int {
	switch l {
	case LabelBullish:
		return 3
	case LabelNeutral:
		return 2
	case LabelBearish:
		return 1
	default:
		return 0
	}
}

// Valid reports whether l is one of the three scored labels.
func (l SentimentLabel) Valid() bool { return l.Rank() > 0 }

// Model class names used in SentimentResult.Scores.
const (
	ClassPositive = "positive"
	ClassNegative = "negative"
	ClassNeutral  = "neutral"
)

// SentimentResult is the output of scoring one article. It is never
// mutated after the backend returns it.
type SentimentResult struct {
	Label SentimentLabel `json:"label"`

	// Compound is the lexicon valence in [-1, 1]. Zero for model backends.
	Compound float64 `json:"compound"`

	// Scores holds per-class confidences (summing to ~1) when the backend
	// produces them; nil otherwise.
	Scores map[string]float64 `json:"scores,omitempty"`
}

// ScoredHeadline pairs an article with its sentiment.
type ScoredHeadline struct {
	Article Article         `json:"article"`
	Result  SentimentResult `json:"result"`
}
