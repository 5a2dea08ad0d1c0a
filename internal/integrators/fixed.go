package integrators

import (
	"context"
	"math"

	"github.com/san-kum/predprey/internal/dynamo"
)

const epsilon = 2.220446049250313e-16

type stepFunc func(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State

func fixedConfig(cfg dynamo.Config) dynamo.Config {
	def := dynamo.DefaultConfig()
	if cfg.Step <= 0 {
		cfg.Step = def.Step
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = def.MaxSteps
	}
	return cfg
}

// integrateFixed walks the grid with steps of at most cfg.Step, landing
// exactly on every grid time.
func integrateFixed(ctx context.Context, sys dynamo.System, x0 dynamo.State, grid dynamo.TimeGrid, cfg dynamo.Config, step stepFunc, evalsPerStep int) (*dynamo.Trajectory, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	traj := dynamo.NewTrajectory(len(grid))
	t := grid[0]
	x := x0.Clone()
	traj.Append(t, x)

	var stats dynamo.Stats
	for _, target := range grid[1:] {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		span := target - t
		if span > 0 {
			// Count in float64 so a huge span cannot overflow int.
			count := math.Max(1, math.Ceil(span/cfg.Step-1e-9))
			if math.IsNaN(count) || count > float64(cfg.MaxSteps-stats.Steps) {
				return nil, &dynamo.IntegrationError{Step: stats.Steps, Time: t, State: x.Clone(), Wrapped: dynamo.ErrStepBudget}
			}
			n := int(count)

			dt := span / float64(n)
			start := t
			for i := 0; i < n; i++ {
				next := step(sys, x, t, dt)
				stats.Steps++
				stats.Evaluations += evalsPerStep
				if !next.IsValid() {
					return nil, &dynamo.IntegrationError{Step: stats.Steps, Time: t, State: x.Clone(), Wrapped: dynamo.ErrUnstable}
				}
				x = next
				t = start + float64(i+1)*dt
			}
			t = target
		}

		traj.Append(target, x)
	}

	traj.Stats = stats
	return traj, nil
}
