// Package jobs fans bulk grading work across a bounded worker pool so one
// slow game never blocks the grading of another.
package jobs

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"github.com/touchline/pickscore/pkg/logger"
)

// GradeFunc grades one game and returns the number of picks settled.
type GradeFunc func(ctx context.Context, gameID uuid.UUID) (int, error)

// Result summarizes a bulk grading run.
type Result struct {
	Games    int
	Graded   int
	Failures []error
}

// Err folds per-game failures into one error, nil when everything graded.
func (r *Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d games failed: %w", len(r.Failures), r.Games, r.Failures[0])
}

// Option applies a configuration option to the Runner.
type Option func(*Runner)

// WithWorkerCount sets the number of concurrent grading workers.
func WithWorkerCount(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets a custom logger for the runner.
func WithLogger(log logger.Logger) Option {
	return func(r *Runner) {
		if log != nil {
			r.log = log
		}
	}
}

// Runner executes grading across games concurrently with bounded
// parallelism.
type Runner struct {
	workers int
	log     logger.Logger
}

// NewRunner creates a runner; worker count defaults to the CPU count.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		workers: runtime.NumCPU(),
		log:     logger.Get().Named("jobs"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run grades every game, stopping early only on context cancellation.
// Individual game failures are collected, not fatal.
func (r *Runner) Run(ctx context.Context, gameIDs []uuid.UUID, grade GradeFunc) *Result {
	res := &Result{Games: len(gameIDs)}
	if len(gameIDs) == 0 {
		return res
	}

	feed := make(chan uuid.UUID, len(gameIDs))
	for _, id := range gameIDs {
		feed <- id
	}
	close(feed)

	var mu sync.Mutex
	var wg sync.WaitGroup

	workers := r.workers
	if workers > len(gameIDs) {
		workers = len(gameIDs)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range feed {
				select {
				case <-ctx.Done():
					return
				default:
				}

				graded, err := grade(ctx, id)
				mu.Lock()
				res.Graded += graded
				if err != nil {
					res.Failures = append(res.Failures, fmt.Errorf("game %s: %w", id, err))
				}
				mu.Unlock()
				if err != nil {
					r.log.Error(ctx, "game grading failed",
						logger.String("game_id", id.String()),
						logger.Error(err))
				}
			}
		}()
	}
	wg.Wait()
	return res
}
