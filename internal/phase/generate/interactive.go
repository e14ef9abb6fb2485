package generate

import (
	"context"

	"github.com/dotcommander/socialstory/internal/domain/story"
	"github.com/dotcommander/socialstory/internal/phase"
)

// InteractiveGenerator writes the quiz, choices and games scripts.
type InteractiveGenerator struct {
	base    phase.BaseGenerator
	prompts *phase.PromptBuilder
}

func NewInteractiveGenerator(base phase.BaseGenerator, prompts *phase.PromptBuilder) *InteractiveGenerator {
	return &InteractiveGenerator{base: base, prompts: prompts}
}

func (g *InteractiveGenerator) Quiz(ctx context.Context, s *story.Structure) (string, int, bool) {
	return g.run(ctx, phase.StageQuiz, g.prompts.Quiz, s)
}

func (g *InteractiveGenerator) Choices(ctx context.Context, s *story.Structure) (string, int, bool) {
	return g.run(ctx, phase.StageChoices, g.prompts.Choices, s)
}

func (g *InteractiveGenerator) Games(ctx context.Context, s *story.Structure) (string, int, bool) {
	return g.run(ctx, phase.StageGames, g.prompts.Games, s)
}

func (g *InteractiveGenerator) run(ctx context.Context, stage phase.Stage, build func(*story.Structure) (phase.Prompt, error), s *story.Structure) (string, int, bool) {
	prompt, err := build(s)
	if err != nil {
		g.base.Logger().Error("building interactive prompt", "stage", stage, "error", err)
		return "", 0, false
	}
	return g.base.Run(ctx, prompt)
}
