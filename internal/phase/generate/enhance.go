package generate

import (
	"context"
	"log/slog"

	"github.com/dotcommander/socialstory/internal/domain/story"
)

// Enhancer is the post-generation refinement pass. It is kept in the stage
// order but makes no calls and spends no tokens.
type Enhancer struct {
	logger *slog.Logger
}

func NewEnhancer(logger *slog.Logger) *Enhancer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enhancer{logger: logger.With("component", "enhancer")}
}

func (e *Enhancer) Run(ctx context.Context, s *story.Structure) int {
	e.logger.Debug("enhancement pass skipped", "title", s.Title)
	return 0
}
