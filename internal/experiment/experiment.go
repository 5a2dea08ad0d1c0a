package experiment

import (
	"context"
	"time"

	"github.com/san-kum/predprey/internal/config"
	"github.com/san-kum/predprey/internal/dynamo"
	"github.com/san-kum/predprey/internal/models"
	"github.com/san-kum/predprey/internal/sim"
)

// Result is a finished run together with the config that produced it.
type Result struct {
	Config     *config.Config
	Trajectory *dynamo.Trajectory
	Elapsed    time.Duration
}

// Experiment turns a run config into a model, an integrator and a simulator.
type Experiment struct {
	cfg      *config.Config
	registry *Registry
	opts     []sim.Option
}

func New(cfg *config.Config, registry *Registry, opts ...sim.Option) *Experiment {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Experiment{cfg: cfg.Clone(), registry: registry, opts: opts}
}

func (e *Experiment) Config() *config.Config { return e.cfg.Clone() }

// Setup validates the config and builds the pieces of the run.
func (e *Experiment) Setup() (*models.HollingTanner, *sim.Simulator, error) {
	if err := e.cfg.Validate(); err != nil {
		return nil, nil, err
	}
	model, err := models.NewHollingTanner(e.cfg.Params)
	if err != nil {
		return nil, nil, err
	}
	integ, err := e.registry.GetIntegrator(e.cfg.Integrator, e.cfg.SolverConfig())
	if err != nil {
		return nil, nil, err
	}
	opts := append([]sim.Option{sim.WithIntegrator(integ)}, e.opts...)
	return model, sim.New(opts...), nil
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	model, simulator, err := e.Setup()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	traj, err := simulator.Run(ctx, model, e.cfg.InitialState(), e.cfg.Grid())
	if err != nil {
		return nil, err
	}
	return &Result{Config: e.cfg.Clone(), Trajectory: traj, Elapsed: time.Since(start)}, nil
}
