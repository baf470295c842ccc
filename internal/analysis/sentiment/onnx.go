package sentiment

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
	ort "github.com/yalue/onnxruntime_go"
)

// ModelConfig locates the FinBERT ONNX export and its runtime.
type ModelConfig struct {
	ORTLibrary    string // onnxruntime shared library (.so/.dylib/.dll)
	ModelPath     string // model.onnx exported from ProsusAI/finbert
	TokenizerPath string // tokenizer.json
	MaxSeqLen     int
}

// DefaultMaxSeqLen is BERT's position embedding limit.
const DefaultMaxSeqLen = 512

// CheckModel reports whether the FinBERT backend can be loaded, naming every
// missing capability. The error wraps ErrBackendUnavailable.
func CheckModel(cfg ModelConfig) error {
	var missing []string
	check := func(what, path string) {
		if strings.TrimSpace(path) == "" {
			missing = append(missing, what+" (not configured)")
			return
		}
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, fmt.Sprintf("%s (%s not found)", what, path))
		}
	}
	check("ONNX Runtime shared library", cfg.ORTLibrary)
	check("FinBERT ONNX model", cfg.ModelPath)
	check("FinBERT tokenizer", cfg.TokenizerPath)

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s: missing %s", ErrBackendUnavailable, BackendFinBERT, strings.Join(missing, ", "))
	}
	return nil
}

// onnxClassifier runs a BERT sequence classifier through ONNX Runtime.
type onnxClassifier struct {
	mu        sync.Mutex
	session   *ort.DynamicAdvancedSession
	tk        *tokenizer.Tokenizer
	maxSeqLen int
	ownsEnv   bool
}

var (
	onnxInputs  = []string{"input_ids", "attention_mask", "token_type_ids"}
	onnxOutputs = []string{"logits"}
)

// LoadONNX initializes ONNX Runtime, the tokenizer and the inference
// session. Loading takes a while; callers load once per run.
func LoadONNX(cfg ModelConfig) (Classifier, error) {
	if err := CheckModel(cfg); err != nil {
		return nil, err
	}
	if cfg.MaxSeqLen <= 0 || cfg.MaxSeqLen > DefaultMaxSeqLen {
		cfg.MaxSeqLen = DefaultMaxSeqLen
	}

	c := &onnxClassifier{maxSeqLen: cfg.MaxSeqLen}
	if !ort.IsInitialized() {
		ort.SetSharedLibraryPath(cfg.ORTLibrary)
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, fmt.Errorf("%w: initialize onnxruntime: %v", ErrBackendUnavailable, err)
		}
		c.ownsEnv = true
	}

	tk, err := pretrained.FromFile(cfg.TokenizerPath)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("%w: load tokenizer: %v", ErrBackendUnavailable, err)
	}
	c.tk = tk

	session, err := ort.NewDynamicAdvancedSession(cfg.ModelPath, onnxInputs, onnxOutputs, nil)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("%w: create session: %v", ErrBackendUnavailable, err)
	}
	c.session = session
	return c, nil
}

// Logits tokenizes text and runs a single forward pass.
func (c *onnxClassifier) Logits(text string) ([]float32, error) {
	enc, err := c.tk.EncodeSingle(text, true)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	ids := truncateTokens(enc.Ids, c.maxSeqLen)
	mask := truncateTokens(enc.AttentionMask, c.maxSeqLen)
	types := truncateTokens(enc.TypeIds, c.maxSeqLen)
	if len(types) != len(ids) {
		types = make([]int, len(ids))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	shape := ort.NewShape(1, int64(len(ids)))
	inIDs, err := ort.NewTensor(shape, toInt64(ids))
	if err != nil {
		return nil, fmt.Errorf("input_ids tensor: %w", err)
	}
	defer inIDs.Destroy()
	inMask, err := ort.NewTensor(shape, toInt64(mask))
	if err != nil {
		return nil, fmt.Errorf("attention_mask tensor: %w", err)
	}
	defer inMask.Destroy()
	inTypes, err := ort.NewTensor(shape, toInt64(types))
	if err != nil {
		return nil, fmt.Errorf("token_type_ids tensor: %w", err)
	}
	defer inTypes.Destroy()

	out, err := ort.NewEmptyTensor[float32](ort.NewShape(1, int64(len(FinBERTClasses))))
	if err != nil {
		return nil, fmt.Errorf("logits tensor: %w", err)
	}
	defer out.Destroy()

	if err := c.session.Run([]ort.Value{inIDs, inMask, inTypes}, []ort.Value{out}); err != nil {
		return nil, fmt.Errorf("inference: %w", err)
	}

	logits := make([]float32, len(FinBERTClasses))
	copy(logits, out.GetData())
	return logits, nil
}

// Close destroys the session and, if this classifier created it, the
// ONNX Runtime environment.
func (c *onnxClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	if c.session != nil {
		firstErr = c.session.Destroy()
		c.session = nil
	}
	if c.ownsEnv {
		if err := ort.DestroyEnvironment(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.ownsEnv = false
	}
	return firstErr
}

// truncateTokens caps a special-token-wrapped sequence at limit while
// keeping its final [SEP] token.
func truncateTokens(toks []int, limit int) []int {
	if limit <= 1 || len(toks) <= limit {
		return toks
	}
	out := make([]int, 0, limit)
	out = append(out, toks[:limit-1]...)
	return append(out, toks[len(toks)-1])
}

func toInt64(in []int) []int64 {
	out := make([]int64, len(in))
	for i, v := range in {
		out[i] = int64(v)
	}
	return out
}
