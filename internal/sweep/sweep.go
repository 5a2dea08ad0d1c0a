package sweep

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/predprey/internal/config"
	"github.com/san-kum/predprey/internal/dynamo"
	"github.com/san-kum/predprey/internal/experiment"
	"github.com/san-kum/predprey/internal/models"
	"github.com/san-kum/predprey/internal/sim"
	"gonum.org/v1/gonum/floats"
)

// Initial-state axes accepted alongside the model parameter names.
const (
	AxisPrey     = "N0"
	AxisPredator = "P0"
)

// Axis is one swept quantity and the values it takes.
type Axis struct {
	Name   string
	Values []float64
}

// ParseAxis reads "name=start:stop:count", e.g. "K=5:30:6".
func ParseAxis(s string) (Axis, error) {
	name, spec, ok := strings.Cut(s, "=")
	if !ok {
		return Axis{}, fmt.Errorf("sweep: %q: want name=start:stop:count", s)
	}
	name = strings.TrimSpace(name)
	if !validName(name) {
		return Axis{}, fmt.Errorf("sweep: unknown parameter %q", name)
	}
	values, err := ParseRange(spec)
	if err != nil {
		return Axis{}, err
	}
	return Axis{Name: name, Values: values}, nil
}

// ParseRange reads "start:stop:count" into count evenly spaced values.
func ParseRange(s string) ([]float64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return nil, fmt.Errorf("sweep: range %q: want start:stop:count", s)
	}
	start, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("sweep: range start: %w", err)
	}
	stop, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("sweep: range stop: %w", err)
	}
	count, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil || count < 1 {
		return nil, fmt.Errorf("sweep: range count must be a positive integer, got %q", parts[2])
	}
	return dynamo.Linspace(start, stop, count), nil
}

func validName(name string) bool {
	if name == AxisPrey || name == AxisPredator {
		return true
	}
	for _, p := range models.ParamNames {
		if p == name {
			return true
		}
	}
	return false
}

// Point is the outcome for one combination of axis values.
type Point struct {
	Values      map[string]float64 `json:"values"`
	Final       dynamo.State       `json:"final,omitempty"`
	PreyMin     float64            `json:"prey_min"`
	PredatorMin float64            `json:"predator_min"`
	PredatorMax float64            `json:"predator_max"`
	Err         error              `json:"-"`
}

type Sweep struct {
	base    *config.Config
	axes    []Axis
	workers int
	opts    []sim.Option
}

func New(base *config.Config, axes []Axis, workers int, opts ...sim.Option) *Sweep {
	return &Sweep{base: base.Clone(), axes: axes, workers: workers, opts: opts}
}

// Size is the number of simulations Run will perform.
func (s *Sweep) Size() int {
	n := 1
	for _, a := range s.axes {
		n *= len(a.Values)
	}
	return n
}

// Combinations enumerates the cartesian product of the axes, first axis
// varying slowest.
func (s *Sweep) Combinations() []map[string]float64 {
	combos := make([]map[string]float64, 0, s.Size())
	s.combineRecursive(0, map[string]float64{}, &combos)
	return combos
}

func (s *Sweep) combineRecursive(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(s.axes) {
		*out = append(*out, current)
		return
	}

	axis := s.axes[depth]
	for _, val := range axis.Values {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[axis.Name] = val
		s.combineRecursive(depth+1, next, out)
	}
}

// apply returns the base config with one combination of values set.
func (s *Sweep) apply(values map[string]float64) (*config.Config, error) {
	cfg := s.base.Clone()
	for name, v := range values {
		switch name {
		case AxisPrey:
			cfg.InitState.Prey = v
		case AxisPredator:
			cfg.InitState.Predator = v
		default:
			p, err := cfg.Params.With(name, v)
			if err != nil {
				return nil, err
			}
			cfg.Params = p
		}
	}
	return cfg, cfg.Validate()
}

// Run simulates every combination in parallel. Individual failures are
// reported on their Point; the error is non-nil only for a bad base config
// or a canceled context.
func (s *Sweep) Run(ctx context.Context) ([]Point, error) {
	_, simulator, err := experiment.New(s.base, nil, s.opts...).Setup()
	if err != nil {
		return nil, err
	}

	combos := s.Combinations()
	points := make([]Point, len(combos))
	jobs := make([]sim.Job, 0, len(combos))
	index := make([]int, 0, len(combos))

	for i, values := range combos {
		points[i].Values = values
		cfg, err := s.apply(values)
		if err != nil {
			points[i].Err = err
			continue
		}
		model, err := models.NewHollingTanner(cfg.Params)
		if err != nil {
			points[i].Err = err
			continue
		}
		jobs = append(jobs, sim.Job{
			Label:  fmt.Sprint(values),
			System: model,
			X0:     cfg.InitialState(),
			Grid:   cfg.Grid(),
		})
		index = append(index, i)
	}

	results, err := simulator.RunBatch(ctx, jobs, s.workers)
	if err != nil {
		return nil, err
	}

	for j, res := range results {
		p := &points[index[j]]
		if res.Err != nil {
			p.Err = res.Err
			continue
		}
		prey := res.Trajectory.Column(models.Prey)
		pred := res.Trajectory.Column(models.Predator)
		p.Final = res.Trajectory.Final()
		p.PreyMin = floats.Min(prey)
		p.PredatorMin = floats.Min(pred)
		p.PredatorMax = floats.Max(pred)
	}
	return points, nil
}
