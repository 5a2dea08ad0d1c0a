// Package scenario runs a scripted sequence of simulations described in YAML.
package scenario

import (
	"context"
	"fmt"
	"os"

	"github.com/san-kum/predprey/internal/config"
	"github.com/san-kum/predprey/internal/experiment"
	"github.com/san-kum/predprey/internal/sim"
	"github.com/san-kum/predprey/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario is a named list of runs executed in order.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one run. Unset fields fall back to the preset, then to defaults.
type Step struct {
	Name       string             `yaml:"name"`
	Preset     string             `yaml:"preset"`
	Integrator string             `yaml:"integrator"`
	TMax       *float64           `yaml:"t_max"`
	Points     *int               `yaml:"points"`
	Prey       *float64           `yaml:"prey"`
	Predator   *float64           `yaml:"predator"`
	Params     map[string]float64 `yaml:"params"`
	Save       bool               `yaml:"save"`
}

// StepResult pairs a step with its run. RunID is set only for saved steps.
type StepResult struct {
	Name   string
	Result *experiment.Result
	RunID  string
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &sc, nil
}

// Config resolves the step into a validated run config.
func (s Step) Config() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		p, err := config.GetPreset(s.Preset)
		if err != nil {
			return nil, err
		}
		cfg = p
	}

	for name, v := range s.Params {
		p, err := cfg.Params.With(name, v)
		if err != nil {
			return nil, err
		}
		cfg.Params = p
	}
	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.TMax != nil {
		cfg.TMax = *s.TMax
	}
	if s.Points != nil {
		cfg.Points = *s.Points
	}
	if s.Prey != nil {
		cfg.InitState.Prey = *s.Prey
	}
	if s.Predator != nil {
		cfg.InitState.Predator = *s.Predator
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Runner executes scenarios. A nil Store disables saving.
type Runner struct {
	Registry *experiment.Registry
	Store    *storage.Store
	Options  []sim.Option
	// Progress, when set, is called before each step starts.
	Progress func(i, total int, step Step)
}

// Run executes the steps in order and stops at the first failure, returning
// the results collected so far.
func (r *Runner) Run(ctx context.Context, sc *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(sc.Steps))

	for i, step := range sc.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		if r.Progress != nil {
			r.Progress(i, len(sc.Steps), step)
		}

		cfg, err := step.Config()
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i+1, name, err)
		}

		res, err := experiment.New(cfg, r.Registry, r.Options...).Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d (%s) run: %w", i+1, name, err)
		}

		out := StepResult{Name: name, Result: res}
		if step.Save && r.Store != nil {
			id, err := r.Store.Save(res.Config, res.Trajectory, res.Elapsed)
			if err != nil {
				return results, fmt.Errorf("step %d (%s) save: %w", i+1, name, err)
			}
			out.RunID = id
		}
		results = append(results, out)
	}

	return results, nil
}
