package phase

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Processor handles one item. index is the item's position in the input.
type Processor[T, R any] func(ctx context.Context, index int, item T) (R, error)

// WorkerPool runs a processor over a slice with bounded concurrency and
// returns results in input order.
type WorkerPool[T, R any] struct {
	name    string
	workers int
	logger  *slog.Logger
}

// WorkerPoolOption allows customization of worker pool behavior
type WorkerPoolOption func(*workerPoolConfig)

type workerPoolConfig struct {
	workers int
	logger  *slog.Logger
}

// WithWorkers sets the number of concurrent workers
func WithWorkers(workers int) WorkerPoolOption {
	return func(c *workerPoolConfig) {
		if workers > 0 {
			c.workers = workers
		}
	}
}

func WithPoolLogger(logger *slog.Logger) WorkerPoolOption {
	return func(c *workerPoolConfig) {
		c.logger = logger
	}
}

func NewWorkerPool[T, R any](name string, options ...WorkerPoolOption) *WorkerPool[T, R] {
	config := workerPoolConfig{
		workers: 1,
		logger:  slog.Default(),
	}

	for _, option := range options {
		option(&config)
	}

	return &WorkerPool[T, R]{
		name:    name,
		workers: config.workers,
		logger:  config.logger.With("pool", name),
	}
}

func (p *WorkerPool[T, R]) Workers() int {
	return p.workers
}

// Process runs processor for every item, at most Workers at a time. Each
// result lands at its item's index. The first processor error cancels the
// remaining items and is returned.
func (p *WorkerPool[T, R]) Process(ctx context.Context, items []T, processor Processor[T, R]) ([]R, error) {
	if len(items) == 0 {
		p.logger.Debug("No items to process in worker pool")
		return []R{}, nil
	}

	p.logger.Debug("Starting worker pool processing",
		"worker_count", p.workers,
		"item_count", len(items),
	)

	results := make([]R, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := processor(ctx, i, item)
			if err != nil {
				p.logger.Error("Worker failed to process item",
					"index", i,
					"error", err,
				)
				return fmt.Errorf("%s item %d: %w", p.name, i, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.logger.Debug("Worker pool processing completed",
		"result_count", len(results),
	)
	return results, nil
}
