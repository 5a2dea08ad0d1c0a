package dynamo

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	if len(s) == 0 {
		return 0
	}
	return floats.Norm(s, 2)
}

func (s State) Add(other State) State {
	result := s.Clone()
	n := min(len(s), len(other))
	floats.Add(result[:n], other[:n])
	return result
}

func (s State) Sub(other State) State {
	result := s.Clone()
	n := min(len(s), len(other))
	floats.Sub(result[:n], other[:n])
	return result
}

func (s State) Scale(factor float64) State {
	result := s.Clone()
	floats.Scale(factor, result)
	return result
}

// System is an ODE right-hand side. Derive must not retain or modify x.
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

// Integrator solves dX/dt = sys(X, t), X(grid[0]) = x0 and reports the
// state at every grid time. Implementations never return a partial
// trajectory together with an error.
type Integrator interface {
	Name() string
	Integrate(ctx context.Context, sys System, x0 State, grid TimeGrid) (*Trajectory, error)
}

// Config carries solver tolerances and budgets. Fixed-step integrators
// only read Step and MaxSteps.
type Config struct {
	RelTol   float64
	AbsTol   float64
	MaxSteps int
	MinStep  float64
	MaxStep  float64
	Step     float64
}

func DefaultConfig() Config {
	return Config{
		RelTol:   1e-8,
		AbsTol:   1e-14,
		MaxSteps: 500000,
		MinStep:  1e-14,
		MaxStep:  0,
		Step:     0.01,
	}
}

// Stats counts the work an integrator performed for one trajectory.
type Stats struct {
	Steps       int `json:"steps"`
	Rejected    int `json:"rejected"`
	Evaluations int `json:"evaluations"`
}

type Trajectory struct {
	Times  []float64
	States []State
	Stats  Stats
}

func NewTrajectory(capacity int) *Trajectory {
	return &Trajectory{
		Times:  make([]float64, 0, capacity),
		States: make([]State, 0, capacity),
	}
}

// Append records a copy of x at time t.
func (tr *Trajectory) Append(t float64, x State) {
	tr.Times = append(tr.Times, t)
	tr.States = append(tr.States, x.Clone())
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

// Column returns component i of every state.
func (tr *Trajectory) Column(i int) []float64 {
	col := make([]float64, len(tr.States))
	for k, s := range tr.States {
		if i < len(s) {
			col[k] = s[i]
		}
	}
	return col
}

func (tr *Trajectory) Final() State {
	if len(tr.States) == 0 {
		return nil
	}
	return tr.States[len(tr.States)-1].Clone()
}
