package usecase

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/prefixlens/backend/internal/domain"
)

// ResolveFunc resolves a single bucket
type ResolveFunc func(domain.Bucket) []domain.MatchResult

// Dispatcher runs a ResolveFunc over independent buckets on a bounded worker pool
type Dispatcher struct {
	workers int
}

// NewDispatcher creates a dispatcher. workers <= 0 selects runtime.NumCPU().
func NewDispatcher(workers int) *Dispatcher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Dispatcher{workers: workers}
}

// Workers returns the configured degree of parallelism
func (d *Dispatcher) Workers() int {
	return d.workers
}

// Dispatch resolves every bucket exactly once and returns after all of them
// have completed. Each worker writes only to the slot of its own bucket, so
// results[i] always belongs to buckets[i] regardless of scheduling.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	buckets []domain.Bucket,
	resolve ResolveFunc,
) ([][]domain.MatchResult, error) {
	results := make([][]domain.MatchResult, len(buckets))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)

	for i, bucket := range buckets {
		i, bucket := i, bucket
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = resolve(bucket)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
