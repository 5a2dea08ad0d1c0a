package sim

import (
	"context"
	"runtime"

	"github.com/san-kum/predprey/internal/dynamo"
	"golang.org/x/sync/errgroup"
)

// Job is one independent simulation request in a batch.
type Job struct {
	Label  string
	System dynamo.System
	X0     dynamo.State
	Grid   dynamo.TimeGrid
}

// JobResult pairs a job with its outcome. Exactly one of Trajectory and Err
// is set.
type JobResult struct {
	Label      string
	Trajectory *dynamo.Trajectory
	Err        error
}

// RunBatch simulates jobs concurrently with at most workers in flight
// (GOMAXPROCS when workers <= 0). Results keep the order of jobs. A failed
// job does not stop the others; only cancellation of ctx aborts the batch.
func (s *Simulator) RunBatch(ctx context.Context, jobs []Job, workers int) ([]JobResult, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]JobResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			traj, err := s.Run(gctx, job.System, job.X0, job.Grid)
			results[i] = JobResult{Label: job.Label, Trajectory: traj, Err: err}
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.logger.Debug().Int("jobs", len(jobs)).Int("workers", workers).Msg("batch finished")
	return results, nil
}
