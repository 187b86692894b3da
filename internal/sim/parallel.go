package sim

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/oscsim/internal/dynamo"
)

// Job is one independent run of a batch.
type Job struct {
	Label string
	Sim   *Simulator
	S0    dynamo.State
	Grid  dynamo.TimeGrid
}

// Batch runs independent simulations concurrently. Force laws must not be
// shared with a job whose constants are being changed.
type Batch struct {
	jobs  []Job
	limit int
}

// NewBatch caps concurrency at limit; limit <= 0 means unbounded.
func NewBatch(limit int) *Batch {
	return &Batch{limit: limit}
}

func (b *Batch) Add(j Job) { b.jobs = append(b.jobs, j) }

func (b *Batch) Len() int { return len(b.jobs) }

// Run returns results in the order jobs were added. The first error cancels
// jobs that have not started yet.
func (b *Batch) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, len(b.jobs))

	g, ctx := errgroup.WithContext(ctx)
	if b.limit > 0 {
		g.SetLimit(b.limit)
	}
	for i, j := range b.jobs {
		g.Go(func() error {
			r, err := j.Sim.Run(ctx, j.S0, j.Grid)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
