package generate

import (
	"context"
	"fmt"

	"github.com/dotcommander/socialstory/internal/core"
	"github.com/dotcommander/socialstory/internal/domain/story"
	"github.com/dotcommander/socialstory/internal/phase"
	"github.com/dotcommander/socialstory/internal/storage"
)

// PageGenerator renders story pages as standalone HTML documents.
type PageGenerator struct {
	base    phase.BaseGenerator
	prompts *phase.PromptBuilder
	pool    *phase.WorkerPool[story.Page, core.PageResult]
}

func NewPageGenerator(base phase.BaseGenerator, prompts *phase.PromptBuilder, workers int) *PageGenerator {
	return &PageGenerator{
		base:    base,
		prompts: prompts,
		pool: phase.NewWorkerPool[story.Page, core.PageResult]("pages",
			phase.WithWorkers(workers),
			phase.WithPoolLogger(base.Logger()),
		),
	}
}

// Generate renders one page of total.
func (g *PageGenerator) Generate(ctx context.Context, s *story.Structure, page story.Page, total int) (string, int, bool) {
	prompt, err := g.prompts.Page(s, page, total)
	if err != nil {
		g.base.Logger().Error("building page prompt", "page", page.PageNumber, "error", err)
		return "", 0, false
	}
	return g.base.Run(ctx, prompt)
}

// GenerateAll renders every page and saves each one to pages/page-NN.html
// through store. Results come back in page order. A failed page never stops
// the others.
func (g *PageGenerator) GenerateAll(ctx context.Context, s *story.Structure, store storage.Storage) []core.PageResult {
	total := len(s.Pages)

	results, err := g.pool.Process(ctx, s.Pages, func(ctx context.Context, _ int, page story.Page) (core.PageResult, error) {
		result := core.PageResult{Number: page.PageNumber}

		html, tokens, ok := g.Generate(ctx, s, page, total)
		if !ok {
			return result, nil
		}
		result.HTML, result.Tokens, result.OK = html, tokens, true

		path := storage.PagePath(page.PageNumber)
		if err := store.Save(ctx, path, []byte(html)); err != nil {
			g.base.Logger().Error("saving page", "path", path, "error", err)
			result.Err = fmt.Errorf("%w: %s: %v", core.ErrArtifactWrite, path, err)
		}
		return result, nil
	})
	if err != nil {
		// only cancellation stops the pool; nothing was kept
		g.base.Logger().Error("page generation interrupted", "error", err)
		results = make([]core.PageResult, total)
		for i, page := range s.Pages {
			results[i] = core.PageResult{Number: page.PageNumber, Err: err}
		}
	}

	return results
}
