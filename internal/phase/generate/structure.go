package generate

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dotcommander/socialstory/internal/core"
	"github.com/dotcommander/socialstory/internal/domain/story"
	"github.com/dotcommander/socialstory/internal/phase"
)

// StructureGenerator asks for the story plan and turns the reply into a
// validated story.Structure.
type StructureGenerator struct {
	base     phase.BaseGenerator
	prompts  *phase.PromptBuilder
	minPages int
	maxPages int
}

func NewStructureGenerator(base phase.BaseGenerator, prompts *phase.PromptBuilder, minPages, maxPages int) *StructureGenerator {
	return &StructureGenerator{
		base:     base,
		prompts:  prompts,
		minPages: minPages,
		maxPages: maxPages,
	}
}

// Generate returns the parsed structure and the tokens spent. Tokens are
// reported even when the reply could not be parsed. Every error wraps
// core.ErrStructureGeneration.
func (g *StructureGenerator) Generate(ctx context.Context, topic string) (*story.Structure, int, error) {
	prompt, err := g.prompts.Structure(topic)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", core.ErrStructureGeneration, err)
	}

	text, tokens, ok := g.base.Run(ctx, prompt)
	if !ok {
		return nil, 0, fmt.Errorf("%w: no response from text service", core.ErrStructureGeneration)
	}

	var raw json.RawMessage
	if err := phase.ExtractJSON(text, &raw); err != nil {
		g.base.Logger().Error("structure reply is not JSON",
			"error", err,
			"response", truncate(text, 500),
		)
		return nil, tokens, fmt.Errorf("%w: %w", core.ErrStructureGeneration, err)
	}

	s, err := story.Parse(raw)
	if err != nil {
		g.base.Logger().Error("structure reply rejected", "error", err)
		return nil, tokens, fmt.Errorf("%w: %w", core.ErrStructureGeneration, err)
	}

	if !s.InPageRange(g.minPages, g.maxPages) {
		g.base.Logger().Warn("page count outside requested range",
			"pages", s.PageCount(),
			"min", g.minPages,
			"max", g.maxPages,
		)
	}

	return s, tokens, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
