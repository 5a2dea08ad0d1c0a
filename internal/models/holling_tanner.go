package models

import (
	"fmt"
	"math"

	"github.com/san-kum/predprey/internal/dynamo"
)

// PreyEpsilon keeps P/(N+ε) finite when the prey population is exactly zero.
// It is a numerical patch rather than a biological term and it perturbs the
// predator equation near N = 0: with N = 0 the ratio term drives predators
// down at a rate of order d·P²/ε. Reference trajectories depend on its
// magnitude, so it must stay at 1e-10. Whether the source model meant a
// ratio-dependent predator term here is unclear.
const PreyEpsilon = 1e-10

// State indices.
const (
	Prey     = 0
	Predator = 1
)

// ParamNames lists the model parameters in display order.
var ParamNames = []string{"r", "K", "a", "h", "m", "c", "d"}

// Params are the seven Holling-Tanner coefficients.
type Params struct {
	R float64 `yaml:"r" json:"r"` // prey intrinsic growth rate
	K float64 `yaml:"K" json:"K"` // prey carrying capacity
	A float64 `yaml:"a" json:"a"` // predator attack rate
	H float64 `yaml:"h" json:"h"` // predator handling time
	M float64 `yaml:"m" json:"m"` // predator mortality rate
	C float64 `yaml:"c" json:"c"` // conversion efficiency
	D float64 `yaml:"d" json:"d"` // predator growth-rate coefficient
}

func DefaultParams() Params {
	return Params{R: 1.0, K: 10.0, A: 1.0, H: 0.1, M: 0.5, C: 0.5, D: 0.1}
}

// Validate rejects NaN and Inf. Signs are not checked.
func (p Params) Validate() error {
	for _, name := range ParamNames {
		v, _ := p.Get(name)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &dynamo.ParameterError{Name: name, Value: v}
		}
	}
	return nil
}

func (p Params) Get(name string) (float64, error) {
	switch name {
	case "r":
		return p.R, nil
	case "K":
		return p.K, nil
	case "a":
		return p.A, nil
	case "h":
		return p.H, nil
	case "m":
		return p.M, nil
	case "c":
		return p.C, nil
	case "d":
		return p.D, nil
	}
	return 0, fmt.Errorf("%w: unknown parameter %q", dynamo.ErrInvalidParameter, name)
}

// With returns a copy of p with one parameter replaced.
func (p Params) With(name string, value float64) (Params, error) {
	switch name {
	case "r":
		p.R = value
	case "K":
		p.K = value
	case "a":
		p.A = value
	case "h":
		p.H = value
	case "m":
		p.M = value
	case "c":
		p.C = value
	case "d":
		p.D = value
	default:
		return p, fmt.Errorf("%w: unknown parameter %q", dynamo.ErrInvalidParameter, name)
	}
	return p, nil
}

func (p Params) Map() map[string]float64 {
	return map[string]float64{
		"r": p.R, "K": p.K, "a": p.A, "h": p.H, "m": p.M, "c": p.C, "d": p.D,
	}
}

// HollingTanner is the predator-prey vector field
//
//	dN/dt = r·N·(1 − N/K) − f(N)·P
//	dP/dt = c·f(N)·P − m·P + d·P·(1 − P/(N + ε))
//
// with the Type-II functional response f(N) = a·N / (1 + a·h·N).
// Values are immutable after construction.
type HollingTanner struct {
	p Params
}

func NewHollingTanner(p Params) (*HollingTanner, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &HollingTanner{p: p}, nil
}

func (m *HollingTanner) Params() Params { return m.p }
func (m *HollingTanner) StateDim() int  { return 2 }

// FunctionalResponse is the per-predator consumption rate at prey density n.
func (m *HollingTanner) FunctionalResponse(n float64) float64 {
	return (m.p.A * n) / (1 + m.p.A*m.p.H*n)
}

// Derive evaluates the vector field. Negative populations are accepted as
// is; nothing is clamped.
func (m *HollingTanner) Derive(x dynamo.State, _ float64) dynamo.State {
	n, p := x[Prey], x[Predator]
	fr := m.FunctionalResponse(n)

	dn := m.p.R*n*(1-n/m.p.K) - fr*p
	dp := m.p.C*fr*p - m.p.M*p + m.p.D*p*(1-p/(n+PreyEpsilon))

	return dynamo.State{dn, dp}
}

func (m *HollingTanner) DefaultState() dynamo.State { return dynamo.State{5.0, 2.0} }
