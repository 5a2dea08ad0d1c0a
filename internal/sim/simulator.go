package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/san-kum/predprey/internal/dynamo"
	"github.com/san-kum/predprey/internal/integrators"
	"github.com/san-kum/predprey/internal/metrics"
)

// Simulator validates a request, hands it to an integrator and reports the
// run to its logger and metrics recorder. A Simulator holds no per-run state
// and may be shared between goroutines.
type Simulator struct {
	integrator dynamo.Integrator
	logger     zerolog.Logger
	recorder   *metrics.Recorder
}

type Option func(*Simulator)

func WithLogger(l zerolog.Logger) Option {
	return func(s *Simulator) { s.logger = l }
}

func WithRecorder(r *metrics.Recorder) Option {
	return func(s *Simulator) { s.recorder = r }
}

// WithIntegrator replaces the default Dormand-Prince integrator.
func WithIntegrator(integ dynamo.Integrator) Option {
	return func(s *Simulator) {
		if integ != nil {
			s.integrator = integ
		}
	}
}

func New(opts ...Option) *Simulator {
	s := &Simulator{
		integrator: integrators.NewRK45(dynamo.DefaultConfig()),
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) Integrator() dynamo.Integrator { return s.integrator }

// Run integrates sys from x0 over grid. It returns either the full
// trajectory or an error, never both.
func (s *Simulator) Run(ctx context.Context, sys dynamo.System, x0 dynamo.State, grid dynamo.TimeGrid) (*dynamo.Trajectory, error) {
	name := s.integrator.Name()
	start := time.Now()

	traj, err := s.run(ctx, sys, x0, grid)
	elapsed := time.Since(start)

	if s.recorder != nil {
		s.recorder.Observe(name, traj, elapsed, err)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("integrator", name).Dur("elapsed", elapsed).Msg("simulation failed")
		return nil, err
	}

	s.logger.Debug().
		Str("integrator", name).
		Int("points", traj.Len()).
		Int("steps", traj.Stats.Steps).
		Int("rejected", traj.Stats.Rejected).
		Dur("elapsed", elapsed).
		Msg("simulation finished")
	return traj, nil
}

func (s *Simulator) run(ctx context.Context, sys dynamo.System, x0 dynamo.State, grid dynamo.TimeGrid) (*dynamo.Trajectory, error) {
	if err := ValidateInitialState(sys, x0); err != nil {
		return nil, err
	}
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	return s.integrator.Integrate(ctx, sys, x0, grid)
}

// ValidateInitialState checks that x0 matches the system dimension and is
// finite.
func ValidateInitialState(sys dynamo.System, x0 dynamo.State) error {
	if len(x0) != sys.StateDim() {
		return &dynamo.InitialConditionError{
			State:  x0.Clone(),
			Reason: fmt.Sprintf("expected %d components, got %d", sys.StateDim(), len(x0)),
		}
	}
	if !x0.IsValid() {
		return &dynamo.InitialConditionError{State: x0.Clone(), Reason: "non-finite component"}
	}
	return nil
}

// Simulate runs a single simulation with the default integrator unless an
// option replaces it.
func Simulate(ctx context.Context, sys dynamo.System, x0 dynamo.State, grid dynamo.TimeGrid, opts ...Option) (*dynamo.Trajectory, error) {
	return New(opts...).Run(ctx, sys, x0, grid)
}
