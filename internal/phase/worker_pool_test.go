package phase

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolPreservesOrder(t *testing.T) {
	pool := NewWorkerPool[int, string]("test", WithWorkers(4))
	items := []int{5, 4, 3, 2, 1, 0}

	results, err := pool.Process(context.Background(), items, func(ctx context.Context, i int, item int) (string, error) {
		// later items finish first
		time.Sleep(time.Duration(item) * 5 * time.Millisecond)
		return fmt.Sprintf("%d:%d", i, item), nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"0:5", "1:4", "2:3", "3:2", "4:1", "5:0"}, results)
}

func TestWorkerPoolBoundsConcurrency(t *testing.T) {
	const workers = 2
	pool := NewWorkerPool[int, int]("bounded", WithWorkers(workers))

	var running, peak atomic.Int32
	items := make([]int, 10)

	_, err := pool.Process(context.Background(), items, func(ctx context.Context, i int, _ int) (int, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		running.Add(-1)
		return i, nil
	})

	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(workers))
	assert.Equal(t, workers, pool.Workers())
}

func TestWorkerPoolDefaultsToOneWorker(t *testing.T) {
	pool := NewWorkerPool[int, int]("serial", WithWorkers(0))
	assert.Equal(t, 1, pool.Workers())
}

func TestWorkerPoolEmpty(t *testing.T) {
	pool := NewWorkerPool[int, int]("empty")
	results, err := pool.Process(context.Background(), nil, func(context.Context, int, int) (int, error) {
		t.Fatal("processor must not run")
		return 0, nil
	})

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestWorkerPoolError(t *testing.T) {
	boom := errors.New("boom")
	pool := NewWorkerPool[int, int]("failing", WithWorkers(1))

	_, err := pool.Process(context.Background(), []int{1, 2, 3}, func(ctx context.Context, i int, item int) (int, error) {
		if item == 2 {
			return 0, boom
		}
		return item, nil
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestWorkerPoolCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	pool := NewWorkerPool[int, int]("cancelled", WithWorkers(2))
	_, err := pool.Process(ctx, []int{1, 2, 3}, func(ctx context.Context, i int, item int) (int, error) {
		calls.Add(1)
		return item, nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}
