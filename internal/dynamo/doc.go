// Package dynamo provides core simulation primitives for the predator-prey lab.
//
// The package defines the fundamental interfaces and types for numerical
// simulation of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for autonomous or time-dependent ODEs (dX/dt = f(X, t))
//   - [TimeGrid]: ordered output times of a simulation request
//   - [Trajectory]: states at each grid time, index-aligned with the grid
//   - [Integrator]: solves an initial value problem over a [TimeGrid]
//
// # Example
//
//	model, _ := models.NewHollingTanner(models.DefaultParams())
//	integ := integrators.NewRK45(dynamo.DefaultConfig())
//	traj, err := integ.Integrate(ctx, model, dynamo.State{5, 2}, dynamo.Linspace(0, 100, 1000))
//
// # Thread Safety
//
// Systems and integrators hold no per-call state, so one value may serve
// any number of concurrent simulations. Every call allocates its own
// [Trajectory].
package dynamo
