package integrators

import (
	"context"

	"github.com/san-kum/predprey/internal/dynamo"
)

// RK4 is the classic fourth-order Runge-Kutta method on a fixed internal
// step. Each grid interval is split into equal substeps no longer than the
// configured step.
type RK4 struct {
	cfg dynamo.Config
}

func NewRK4(cfg dynamo.Config) *RK4 {
	return &RK4{cfg: fixedConfig(cfg)}
}

func (r *RK4) Name() string { return "rk4" }

func (r *RK4) Integrate(ctx context.Context, sys dynamo.System, x0 dynamo.State, grid dynamo.TimeGrid) (*dynamo.Trajectory, error) {
	return integrateFixed(ctx, sys, x0, grid, r.cfg, r.Step, 4)
}

func (r *RK4) Step(sys dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	scratch := make(dynamo.State, n)

	k1 := sys.Derive(x, t)

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*0.5*k1[i]
	}
	k2 := sys.Derive(scratch, t+dt*0.5)

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*0.5*k2[i]
	}
	k3 := sys.Derive(scratch, t+dt*0.5)

	for i := 0; i < n; i++ {
		scratch[i] = x[i] + dt*k3[i]
	}
	k4 := sys.Derive(scratch, t+dt)

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(k1[i]+2*k2[i]+2*k3[i]+k4[i])
	}

	return result
}
