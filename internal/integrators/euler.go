package integrators

import (
	"context"

	"github.com/san-kum/predprey/internal/dynamo"
)

type Euler struct {
	cfg dynamo.Config
}

func NewEuler(cfg dynamo.Config) *Euler {
	return &Euler{cfg: fixedConfig(cfg)}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Integrate(ctx context.Context, sys dynamo.System, x0 dynamo.State, grid dynamo.TimeGrid) (*dynamo.Trajectory, error) {
	return integrateFixed(ctx, sys, x0, grid, e.cfg, e.Step, 1)
}

func (e *Euler) Step(sys dynamo.System, x dynamo.State, t float64, dt float64) dynamo.State {
	dx := sys.Derive(x, t)
	result := make(dynamo.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}
