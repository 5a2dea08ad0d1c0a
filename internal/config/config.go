package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/san-kum/predprey/internal/dynamo"
	"github.com/san-kum/predprey/internal/models"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTMax       = 100.0
	DefaultPoints     = 1000
	DefaultIntegrator = "rk45"
	DefaultPrey       = 5.0
	DefaultPredator   = 2.0
)

// ErrInvalidSolver reports a negative or non-finite solver override.
var ErrInvalidSolver = errors.New("config: invalid solver settings")

// Config describes one simulation run as stored in YAML.
type Config struct {
	Params     models.Params   `yaml:"params" json:"params"`
	InitState  InitStateConfig `yaml:"init_state" json:"init_state"`
	TMax       float64         `yaml:"t_max" json:"t_max"`
	Points     int             `yaml:"points" json:"points"`
	Integrator string          `yaml:"integrator" json:"integrator"`
	Solver     SolverConfig    `yaml:"solver" json:"solver"`
}

type InitStateConfig struct {
	Prey     float64 `yaml:"prey" json:"prey"`
	Predator float64 `yaml:"predator" json:"predator"`
}

// SolverConfig holds optional integrator overrides; zero values mean the
// integrator's defaults.
type SolverConfig struct {
	RelTol   float64 `yaml:"rtol,omitempty" json:"rtol,omitempty"`
	AbsTol   float64 `yaml:"atol,omitempty" json:"atol,omitempty"`
	MaxSteps int     `yaml:"max_steps,omitempty" json:"max_steps,omitempty"`
	Step     float64 `yaml:"step,omitempty" json:"step,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Params:     models.DefaultParams(),
		InitState:  InitStateConfig{Prey: DefaultPrey, Predator: DefaultPredator},
		TMax:       DefaultTMax,
		Points:     DefaultPoints,
		Integrator: DefaultIntegrator,
	}
}

// Load reads a YAML config. Keys missing from the file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Validate checks everything a run needs before any model is built.
func (c *Config) Validate() error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	if x := c.InitialState(); !x.IsValid() {
		return &dynamo.InitialConditionError{State: x, Reason: "non-finite component"}
	}
	if math.IsNaN(c.TMax) || math.IsInf(c.TMax, 0) || c.TMax < 0 {
		return fmt.Errorf("%w: t_max must be finite and non-negative, got %v", dynamo.ErrInvalidTimeGrid, c.TMax)
	}
	if c.Points < 1 {
		return fmt.Errorf("%w: points must be at least 1, got %d", dynamo.ErrInvalidTimeGrid, c.Points)
	}
	for name, v := range map[string]float64{"rtol": c.Solver.RelTol, "atol": c.Solver.AbsTol, "step": c.Solver.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("%w: %s must be finite and non-negative, got %v", ErrInvalidSolver, name, v)
		}
	}
	if c.Solver.MaxSteps < 0 {
		return fmt.Errorf("%w: max_steps must not be negative, got %d", ErrInvalidSolver, c.Solver.MaxSteps)
	}
	return nil
}

func (c *Config) InitialState() dynamo.State {
	return dynamo.State{c.InitState.Prey, c.InitState.Predator}
}

// Grid spans [0, TMax] with Points evenly spaced times.
func (c *Config) Grid() dynamo.TimeGrid {
	return dynamo.Linspace(0, c.TMax, c.Points)
}

// SolverConfig merges the overrides onto the integrator defaults.
func (c *Config) SolverConfig() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	if c.Solver.RelTol > 0 {
		cfg.RelTol = c.Solver.RelTol
	}
	if c.Solver.AbsTol > 0 {
		cfg.AbsTol = c.Solver.AbsTol
	}
	if c.Solver.MaxSteps > 0 {
		cfg.MaxSteps = c.Solver.MaxSteps
	}
	if c.Solver.Step > 0 {
		cfg.Step = c.Solver.Step
	}
	return cfg
}
