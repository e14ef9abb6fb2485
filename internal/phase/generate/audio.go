package generate

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/dotcommander/socialstory/internal/agent"
	"github.com/dotcommander/socialstory/internal/core"
	"github.com/dotcommander/socialstory/internal/domain/story"
	"github.com/dotcommander/socialstory/internal/phase"
	"github.com/dotcommander/socialstory/internal/storage"
)

// AudioGenerator narrates pages into audio/page-NN.mp3.
type AudioGenerator struct {
	speaker agent.Synthesizer
	pool    *phase.WorkerPool[story.Page, core.AudioResult]
	logger  *slog.Logger
}

func NewAudioGenerator(speaker agent.Synthesizer, workers int, logger *slog.Logger) *AudioGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "audio")

	return &AudioGenerator{
		speaker: speaker,
		pool: phase.NewWorkerPool[story.Page, core.AudioResult]("audio",
			phase.WithWorkers(workers),
			phase.WithPoolLogger(logger),
		),
		logger: logger,
	}
}

// GenerateAll synthesizes every page's narration into audioDir. A page
// without narration counts as failed and is not sent to the speech service.
func (g *AudioGenerator) GenerateAll(ctx context.Context, pages []story.Page, audioDir string) core.AudioResult {
	partials, err := g.pool.Process(ctx, pages, func(ctx context.Context, _ int, page story.Page) (core.AudioResult, error) {
		return g.generateOne(ctx, page, audioDir), nil
	})
	if err != nil {
		g.logger.Error("audio generation interrupted", "error", err)
		return core.AudioResult{Total: len(pages), Failed: len(pages)}
	}

	var result core.AudioResult
	for _, p := range partials {
		result = result.Merge(p)
	}
	return result
}

func (g *AudioGenerator) generateOne(ctx context.Context, page story.Page, audioDir string) core.AudioResult {
	result := core.AudioResult{Total: 1}

	text := page.NarrationText()
	if text == "" {
		g.logger.Warn("no narration text, skipping audio", "page", page.PageNumber)
		result.Failed = 1
		return result
	}

	dest := filepath.Join(audioDir, storage.AudioFileName(page.PageNumber))
	if !g.speaker.Synthesize(ctx, text, dest) {
		result.Failed = 1
		return result
	}

	result.Success = 1
	result.Files = []string{dest}
	return result
}
