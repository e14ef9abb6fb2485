package generate

import (
	"context"

	"github.com/dotcommander/socialstory/internal/domain/story"
	"github.com/dotcommander/socialstory/internal/phase"
)

// IndexGenerator renders the story landing page.
type IndexGenerator struct {
	base    phase.BaseGenerator
	prompts *phase.PromptBuilder
}

func NewIndexGenerator(base phase.BaseGenerator, prompts *phase.PromptBuilder) *IndexGenerator {
	return &IndexGenerator{base: base, prompts: prompts}
}

// Generate renders index.html linking pageCount pages.
func (g *IndexGenerator) Generate(ctx context.Context, s *story.Structure, pageCount int) (string, int, bool) {
	prompt, err := g.prompts.Index(s, pageCount)
	if err != nil {
		g.base.Logger().Error("building index prompt", "error", err)
		return "", 0, false
	}
	return g.base.Run(ctx, prompt)
}
