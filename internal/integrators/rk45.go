package integrators

import (
	"context"
	"math"

	"github.com/san-kum/predprey/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// RK45 is an adaptive Dormand-Prince 5(4) solver with mixed absolute and
// relative error control. The last derivative of an accepted step is reused
// as the first stage of the next one.
type RK45 struct {
	cfg      dynamo.Config
	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45(cfg dynamo.Config) *RK45 {
	def := dynamo.DefaultConfig()
	if cfg.RelTol <= 0 {
		cfg.RelTol = def.RelTol
	}
	if cfg.AbsTol <= 0 {
		cfg.AbsTol = def.AbsTol
	}
	if cfg.MaxSteps <= 0 {
		cfg.MaxSteps = def.MaxSteps
	}
	if cfg.MinStep <= 0 {
		cfg.MinStep = def.MinStep
	}
	return &RK45{
		cfg:      cfg,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) Name() string { return "rk45" }

func (r *RK45) Config() dynamo.Config { return r.cfg }

func (r *RK45) Integrate(ctx context.Context, sys dynamo.System, x0 dynamo.State, grid dynamo.TimeGrid) (*dynamo.Trajectory, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	traj := dynamo.NewTrajectory(len(grid))
	t := grid[0]
	x := x0.Clone()
	traj.Append(t, x)

	k1 := sys.Derive(x, t)
	stats := dynamo.Stats{Evaluations: 1}
	h := 0.0

	fail := func(cause error) (*dynamo.Trajectory, error) {
		return nil, &dynamo.IntegrationError{
			Step:    stats.Steps + stats.Rejected,
			Time:    t,
			State:   x.Clone(),
			Wrapped: cause,
		}
	}

	for _, target := range grid[1:] {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for t < target {
			if h == 0 {
				h = r.initialStep(sys, x, k1, t, target-grid[0])
				stats.Evaluations++
			}
			if r.cfg.MaxStep > 0 && h > r.cfg.MaxStep {
				h = r.cfg.MaxStep
			}

			remaining := target - t
			hStep := h
			last := false
			if hStep >= remaining {
				hStep = remaining
				last = true
			}

			minStep := math.Max(r.cfg.MinStep, 16*epsilon*math.Abs(t))
			if hStep < minStep && !last {
				return fail(dynamo.ErrStepTooSmall)
			}
			if stats.Steps+stats.Rejected >= r.cfg.MaxSteps {
				return fail(dynamo.ErrStepBudget)
			}

			xNew, k7, errNorm := r.tryStep(sys, x, k1, t, hStep)
			stats.Evaluations += 6

			if math.IsNaN(errNorm) || math.IsInf(errNorm, 0) {
				stats.Rejected++
				h = hStep * r.minScale
				if h < minStep {
					return fail(dynamo.ErrUnstable)
				}
				continue
			}

			if errNorm > 1 {
				stats.Rejected++
				h = hStep * math.Max(r.minScale, r.safety*math.Pow(errNorm, -0.25))
				continue
			}

			stats.Steps++
			if last {
				t = target
			} else {
				t += hStep
			}
			x, k1 = xNew, k7

			grown := hStep * r.maxScale
			if errNorm > 0 {
				grown = hStep * math.Min(r.maxScale, r.safety*math.Pow(errNorm, -0.2))
			}
			if !last || grown > h {
				h = grown
			}
		}

		traj.Append(target, x)
	}

	traj.Stats = stats
	return traj, nil
}

// StepAdaptive takes one trial step of size dt and proposes the next step
// size. The returned error norm is scaled so that values <= 1 meet tolerance.
func (r *RK45) StepAdaptive(sys dynamo.System, x dynamo.State, t, dt float64) (dynamo.State, float64, float64) {
	k1 := sys.Derive(x, t)
	xNew, _, errNorm := r.tryStep(sys, x, k1, t, dt)

	var dtNew float64
	switch {
	case errNorm > 1:
		dtNew = dt * math.Max(r.minScale, r.safety*math.Pow(errNorm, -0.25))
	case errNorm > 0:
		dtNew = dt * math.Min(r.maxScale, r.safety*math.Pow(errNorm, -0.2))
	default:
		dtNew = dt * r.maxScale
	}
	return xNew, dtNew, errNorm
}

func (r *RK45) tryStep(sys dynamo.System, x, k1 dynamo.State, t, dt float64) (dynamo.State, dynamo.State, float64) {
	n := len(x)
	stage := make(dynamo.State, n)

	for i := 0; i < n; i++ {
		stage[i] = x[i] + dt*b21*k1[i]
	}
	k2 := sys.Derive(stage, t+a2*dt)

	for i := 0; i < n; i++ {
		stage[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3 := sys.Derive(stage, t+a3*dt)

	for i := 0; i < n; i++ {
		stage[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := sys.Derive(stage, t+a4*dt)

	for i := 0; i < n; i++ {
		stage[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := sys.Derive(stage, t+a5*dt)

	for i := 0; i < n; i++ {
		stage[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := sys.Derive(stage, t+dt)

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 := sys.Derive(xNew, t+dt)

	sum := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := r.cfg.AbsTol + r.cfg.RelTol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		e := errEst / scale
		sum += e * e
	}
	if n == 0 {
		return xNew, k7, 0
	}

	return xNew, k7, math.Sqrt(sum / float64(n))
}

// initialStep follows the starting step heuristic of Hairer, Norsett and
// Wanner (Solving ODEs I, II.4).
func (r *RK45) initialStep(sys dynamo.System, x, f0 dynamo.State, t, span float64) float64 {
	n := len(x)
	if n == 0 {
		return span
	}

	var d0, d1 float64
	sc := make([]float64, n)
	for i := 0; i < n; i++ {
		sc[i] = r.cfg.AbsTol + r.cfg.RelTol*math.Abs(x[i])
		d0 += (x[i] / sc[i]) * (x[i] / sc[i])
		d1 += (f0[i] / sc[i]) * (f0[i] / sc[i])
	}
	d0 = math.Sqrt(d0 / float64(n))
	d1 = math.Sqrt(d1 / float64(n))

	h0 := 0.01 * d0 / d1
	if d0 < 1e-5 || d1 < 1e-5 {
		h0 = 1e-6
	}
	h0 = math.Min(h0, math.Abs(span))

	x1 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x1[i] = x[i] + h0*f0[i]
	}
	f1 := sys.Derive(x1, t+h0)

	var d2 float64
	for i := 0; i < n; i++ {
		v := (f1[i] - f0[i]) / sc[i]
		d2 += v * v
	}
	d2 = math.Sqrt(d2/float64(n)) / h0

	var h1 float64
	if dm := math.Max(d1, d2); dm <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/dm, 1.0/5.0)
	}

	h := math.Min(100*h0, h1)
	if math.IsNaN(h) || h <= 0 {
		h = r.cfg.MinStep
	}
	return h
}
