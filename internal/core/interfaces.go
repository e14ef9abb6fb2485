package core

import (
	"context"
	"sort"

	"github.com/dotcommander/socialstory/internal/domain/story"
	"github.com/dotcommander/socialstory/internal/storage"
)

// Stage names used in banners, metrics and StageError.
const (
	StageStructure   = "structure"
	StagePages       = "pages"
	StageIndex       = "index"
	StageInteractive = "interactive"
	StageAudio       = "audio"
	StageEnhancement = "enhancement"
	StageValidation  = "validation"
	StageMetadata    = "metadata"
)

type StructureStage interface {
	Generate(ctx context.Context, topic string) (*story.Structure, int, error)
}

// PageStage renders every page and writes each one through store, which is
// rooted at the story directory.
type PageStage interface {
	GenerateAll(ctx context.Context, s *story.Structure, store storage.Storage) []PageResult
}

type IndexStage interface {
	Generate(ctx context.Context, s *story.Structure, pageCount int) (string, int, bool)
}

type InteractiveStage interface {
	Quiz(ctx context.Context, s *story.Structure) (string, int, bool)
	Choices(ctx context.Context, s *story.Structure) (string, int, bool)
	Games(ctx context.Context, s *story.Structure) (string, int, bool)
}

type AudioStage interface {
	GenerateAll(ctx context.Context, pages []story.Page, audioDir string) AudioResult
}

type EnhancementStage interface {
	Run(ctx context.Context, s *story.Structure) int
}

// PageResult is the outcome of one page. Err is set when the page was
// generated but could not be written.
type PageResult struct {
	Number int
	HTML   string
	Tokens int
	OK     bool
	Err    error
}

// Written reports whether the page landed on disk.
func (r PageResult) Written() bool {
	return r.OK && r.Err == nil
}

// AudioResult counts narration files for a run.
type AudioResult struct {
	Total   int      `json:"total"`
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Files   []string `json:"files,omitempty"`
}

// Merge combines two partial results. Counters add and file lists are
// concatenated and sorted, so the order of merging does not matter.
func (a AudioResult) Merge(b AudioResult) AudioResult {
	files := make([]string, 0, len(a.Files)+len(b.Files))
	files = append(files, a.Files...)
	files = append(files, b.Files...)
	sort.Strings(files)
	if len(files) == 0 {
		files = nil
	}

	return AudioResult{
		Total:   a.Total + b.Total,
		Success: a.Success + b.Success,
		Failed:  a.Failed + b.Failed,
		Files:   files,
	}
}
