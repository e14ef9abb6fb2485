package quality

import (
	"context"
	"os"

	"github.com/dotcommander/socialstory/internal/storage"
)

// storyDirPattern matches dated story directories, e.g. 2025-07-16-first-day.
const storyDirPattern = "2*"

// Summary aggregates the validation of every story under a root.
type Summary struct {
	Total        int      `json:"total_stories"`
	Passing      int      `json:"passing_stories"`
	Failing      int      `json:"failing_stories"`
	AverageScore float64  `json:"average_score"`
	AllPassing   bool     `json:"all_passing"`
	Results      []Result `json:"results"`
}

// ValidateAll validates every dated story directory under root in name
// order. A root without stories is not passing.
func (v *Validator) ValidateAll(ctx context.Context, root string) (Summary, error) {
	fs := storage.NewFileSystem(root)

	matches, err := fs.List(ctx, storyDirPattern)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Results: []Result{}}
	var total float64
	for _, name := range matches {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		dir, err := fs.Path(name)
		if err != nil {
			continue
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}

		result := v.Validate(ctx, dir)
		summary.Results = append(summary.Results, result)
		total += result.Percentage
		if result.Passing {
			summary.Passing++
		}
	}

	summary.Total = len(summary.Results)
	summary.Failing = summary.Total - summary.Passing
	if summary.Total > 0 {
		summary.AverageScore = total / float64(summary.Total)
	}
	summary.AllPassing = summary.Total > 0 && summary.Failing == 0

	return summary, nil
}
