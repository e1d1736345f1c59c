package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Result is the outcome of one job. Index is the job's position in the input slice.
type Result[R any] struct {
	Index int
	Value R
	Err   error
}

// Manager distributes jobs to a bounded pool of goroutines
type Manager struct {
	pool   *ants.Pool
	logger *slog.Logger
}

// NewManager creates a new manager running at most workerCount jobs at once
func NewManager(workerCount int, logger *slog.Logger) (*Manager, error) {
	if workerCount < 1 {
		workerCount = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	return &Manager{pool: pool, logger: logger}, nil
}

// Release stops the pool. The manager must not be used afterwards.
func (m *Manager) Release() {
	m.pool.Release()
}

// Map runs fn for every input concurrently and returns the results in input order,
// whatever order the jobs finish in. Jobs not yet started when ctx is cancelled
// are not run and report ctx.Err().
//
// Map must not be called from inside a job of the same manager.
func Map[T, R any](ctx context.Context, m *Manager, inputs []T, fn func(context.Context, T) (R, error)) []Result[R] {
	results := make([]Result[R], len(inputs))

	var wg sync.WaitGroup
	for i, input := range inputs {
		results[i].Index = i

		wg.Add(1)
		err := m.pool.Submit(func() {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return
			}
			results[i].Value, results[i].Err = fn(ctx, input)
		})
		if err != nil {
			wg.Done()
			results[i].Err = fmt.Errorf("failed to submit job: %w", err)
		}
	}
	wg.Wait()

	var successCount, errorCount int
	for _, res := range results {
		if res.Err != nil {
			errorCount++
		} else {
			successCount++
		}
	}
	m.logger.Debug("jobs completed", "successful", successCount, "errors", errorCount, "total", len(inputs))

	return results
}
