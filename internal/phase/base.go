package phase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/dotcommander/socialstory/internal/agent"
)

// BaseGenerator is the call-and-sanitize step shared by every stage.
type BaseGenerator struct {
	caller agent.Caller
	logger *slog.Logger
}

// BaseGeneratorOption allows customization of BaseGenerator
type BaseGeneratorOption func(*BaseGenerator)

// WithLogger configures a custom logger
func WithLogger(logger *slog.Logger) BaseGeneratorOption {
	return func(b *BaseGenerator) {
		b.logger = logger
	}
}

func NewBaseGenerator(caller agent.Caller, options ...BaseGeneratorOption) BaseGenerator {
	base := BaseGenerator{
		caller: caller,
		logger: slog.Default().With("component", "generator"),
	}

	for _, option := range options {
		option(&base)
	}

	return base
}

func (b BaseGenerator) Logger() *slog.Logger {
	return b.logger
}

// Run sends prompt and sanitizes the reply for its stage: structure replies
// are only trimmed (ExtractJSON runs later), markup and script replies lose
// their code fences. ok is false when the service returned nothing usable,
// including a reply that is blank once sanitized.
func (b BaseGenerator) Run(ctx context.Context, prompt Prompt) (string, int, bool) {
	start := time.Now()

	text, tokens, ok := b.caller.Call(ctx, prompt.Text, prompt.System)
	if !ok {
		b.logger.Warn("stage produced no output",
			"stage", prompt.Stage,
			"duration", time.Since(start),
		)
		return "", 0, false
	}

	if prompt.Stage == StageStructure {
		text = strings.TrimSpace(text)
	} else {
		text = StripCodeFence(text)
	}
	if text == "" {
		b.logger.Warn("stage output empty after sanitizing",
			"stage", prompt.Stage,
			"tokens", tokens,
		)
		return "", 0, false
	}

	b.logger.Debug("stage output ready",
		"stage", prompt.Stage,
		"chars", len(text),
		"tokens", tokens,
		"duration", time.Since(start),
	)
	return text, tokens, true
}
