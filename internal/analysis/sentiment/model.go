package sentiment

import (
	"fmt"
	"math"

	"github.com/phuslu/log"

	"github.com/seenimoa/vendorwatch/internal/logging"
	"github.com/seenimoa/vendorwatch/pkg/models"
)

// FinBERTClasses is the output order of the ProsusAI/finbert classification head.
var FinBERTClasses = []string{models.ClassPositive, models.ClassNegative, models.ClassNeutral}

// Classifier produces raw class logits for a piece of text.
type Classifier interface {
	Logits(text string) ([]float32, error)
	Close() error
}

// Model scores text with a learned financial-sentiment classifier. The
// classifier is loaded once and treated as read-only afterwards.
type Model struct {
	classifier Classifier
	classes    []string
	logger     *log.Logger
}

// NewModel wraps a loaded classifier whose outputs follow classes.
func NewModel(c Classifier, classes []string, logger *log.Logger) *Model {
	if len(classes) == 0 {
		classes = FinBERTClasses
	}
	return &Model{classifier: c, classes: classes, logger: logging.OrNop(logger)}
}

// Name returns the backend name.
func (m *Model) Name() string { return BackendFinBERT }

// Score runs the classifier and labels the text with the most confident
// class. Empty text is passed through and yields the model's default output.
func (m *Model) Score(text string) (models.SentimentResult, error) {
	logits, err := m.classifier.Logits(text)
	if err != nil {
		return models.SentimentResult{}, err
	}
	if len(logits) != len(m.classes) {
		return models.SentimentResult{}, fmt.Errorf("classifier returned %d logits, want %d", len(logits), len(m.classes))
	}

	probs := Softmax(logits)
	scores := make(map[string]float64, len(probs))
	best := 0
	for i, p := range probs {
		scores[m.classes[i]] = p
		if p > probs[best] {
			best = i
		}
	}

	res := models.SentimentResult{
		Label:  classLabel(m.classes[best]),
		Scores: scores,
	}
	m.logger.Debug().Float64("positive", scores[models.ClassPositive]).
		Float64("negative", scores[models.ClassNegative]).
		Float64("neutral", scores[models.ClassNeutral]).
		Str("label", string(res.Label)).Msg("model score")
	return res, nil
}

// Close releases the classifier.
func (m *Model) Close() error {
	if m.classifier == nil {
		return nil
	}
	return m.classifier.Close()
}

func classLabel(class string) models.SentimentLabel {
	switch class {
	case models.ClassPositive:
		return models.LabelBullish
	case models.ClassNegative:
		return models.LabelBearish
	default:
		return models.LabelNeutral
	}
}

// Softmax converts logits to probabilities.
func Softmax(logits []float32) []float64 {
	if len(logits) == 0 {
		return nil
	}
	maxv := float64(logits[0])
	for _, v := range logits[1:] {
		maxv = math.Max(maxv, float64(v))
	}
	out := make([]float64, len(logits))
	sum := 0.0
	for i, v := range logits {
		out[i] = math.Exp(float64(v) - maxv)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
