package agent

import (
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

const fallbackEncoding = "cl100k_base"

// TokenEstimator counts tokens with the model's BPE encoding. The encoding
// is loaded on first use; if it cannot be loaded every count is 0.
type TokenEstimator struct {
	model  string
	once   sync.Once
	enc    *tiktoken.Tiktoken
	logger *slog.Logger
}

func NewTokenEstimator(model string) *TokenEstimator {
	return &TokenEstimator{
		model:  model,
		logger: slog.Default().With("component", "token_estimator"),
	}
}

func (e *TokenEstimator) Count(texts ...string) int {
	e.once.Do(e.load)
	if e.enc == nil {
		return 0
	}

	total := 0
	for _, text := range texts {
		if text == "" {
			continue
		}
		total += len(e.enc.Encode(text, nil, nil))
	}
	return total
}

func (e *TokenEstimator) load() {
	enc, err := tiktoken.EncodingForModel(e.model)
	if err == nil {
		e.enc = enc
		return
	}

	enc, fallbackErr := tiktoken.GetEncoding(fallbackEncoding)
	if fallbackErr != nil {
		e.logger.Warn("token estimation unavailable",
			"model", e.model,
			"error", err,
			"fallback_error", fallbackErr)
		return
	}
	e.enc = enc
}
