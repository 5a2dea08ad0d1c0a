package integrators

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/san-kum/predprey/internal/dynamo"
)

type harmonicOscillator struct{}

func (h *harmonicOscillator) StateDim() int { return 2 }

func (h *harmonicOscillator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (h *harmonicOscillator) Energy(x dynamo.State) float64 {
	return 0.5 * (x[0]*x[0] + x[1]*x[1])
}

type decay struct{ rate float64 }

func (d decay) StateDim() int { return 1 }

func (d decay) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{-d.rate * x[0]}
}

// blowup has the solution 1/(1-t), which leaves every finite range at t=1.
type blowup struct{}

func (blowup) StateDim() int { return 1 }

func (blowup) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[0] * x[0]}
}

func TestRK45_Integrate(t *testing.T) {
	integrator := NewRK45(dynamo.DefaultConfig())
	grid := dynamo.Linspace(0, 10, 101)

	traj, err := integrator.Integrate(context.Background(), &harmonicOscillator{}, dynamo.State{1, 0}, grid)
	if err != nil {
		t.Fatalf("Integrate returned error: %v", err)
	}

	if traj.Len() != len(grid) {
		t.Fatalf("expected %d states, got %d", len(grid), traj.Len())
	}

	for i, tm := range grid {
		if traj.Times[i] != tm {
			t.Fatalf("time %d = %v, want %v", i, traj.Times[i], tm)
		}
		if math.Abs(traj.States[i][0]-math.Cos(tm)) > 1e-6 {
			t.Errorf("x(%.2f) = %.9f, want %.9f", tm, traj.States[i][0], math.Cos(tm))
		}
	}

	if traj.Stats.Steps == 0 || traj.Stats.Evaluations == 0 {
		t.Errorf("stats not recorded: %+v", traj.Stats)
	}
}

func TestRK45_EnergyConservation(t *testing.T) {
	integrator := NewRK45(dynamo.DefaultConfig())
	dyn := &harmonicOscillator{}
	x0 := dynamo.State{1.0, 0.0}

	traj, err := integrator.Integrate(context.Background(), dyn, x0, dynamo.Linspace(0, 100, 11))
	if err != nil {
		t.Fatalf("Integrate returned error: %v", err)
	}

	initialEnergy := dyn.Energy(x0)
	drift := math.Abs(dyn.Energy(traj.Final())-initialEnergy) / initialEnergy

	if drift > 1e-6 {
		t.Errorf("RK45 energy drift too high: %e", drift)
	}
}

func TestRK45_ExponentialDecay(t *testing.T) {
	integrator := NewRK45(dynamo.DefaultConfig())
	grid := dynamo.TimeGrid{0, 0.5, 1, 1, 2, 7.5}

	traj, err := integrator.Integrate(context.Background(), decay{rate: 0.7}, dynamo.State{3}, grid)
	if err != nil {
		t.Fatalf("Integrate returned error: %v", err)
	}

	for i, tm := range grid {
		want := 3 * math.Exp(-0.7*tm)
		if rel := math.Abs(traj.States[i][0]-want) / want; rel > 1e-7 {
			t.Errorf("x(%v) = %v, want %v (rel err %e)", tm, traj.States[i][0], want, rel)
		}
	}

	if traj.States[2][0] != traj.States[3][0] {
		t.Error("repeated grid time should report the same state")
	}
}

func TestRK45_FirstStateIsInitialCondition(t *testing.T) {
	integrator := NewRK45(dynamo.DefaultConfig())
	x0 := dynamo.State{0.25, -4}

	traj, err := integrator.Integrate(context.Background(), &harmonicOscillator{}, x0, dynamo.TimeGrid{2, 3})
	if err != nil {
		t.Fatalf("Integrate returned error: %v", err)
	}
	if traj.Times[0] != 2 || traj.States[0][0] != x0[0] || traj.States[0][1] != x0[1] {
		t.Errorf("first entry = (%v, %v), want (2, %v)", traj.Times[0], traj.States[0], x0)
	}
}

func TestRK45_SinglePointGrid(t *testing.T) {
	integrator := NewRK45(dynamo.DefaultConfig())

	traj, err := integrator.Integrate(context.Background(), decay{rate: 1}, dynamo.State{1}, dynamo.TimeGrid{0})
	if err != nil {
		t.Fatalf("Integrate returned error: %v", err)
	}
	if traj.Len() != 1 || traj.States[0][0] != 1 {
		t.Errorf("unexpected trajectory %+v", traj)
	}
}

func TestRK45_Blowup(t *testing.T) {
	integrator := NewRK45(dynamo.DefaultConfig())

	traj, err := integrator.Integrate(context.Background(), blowup{}, dynamo.State{1}, dynamo.Linspace(0, 2, 21))
	if traj != nil {
		t.Error("expected no trajectory on failure")
	}
	if !errors.Is(err, dynamo.ErrNumericalIntegrationFailure) {
		t.Fatalf("expected ErrNumericalIntegrationFailure, got %v", err)
	}

	var ie *dynamo.IntegrationError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *IntegrationError, got %T", err)
	}
	if ie.Time < 0.9 || ie.Time > 1.0 {
		t.Errorf("furthest time %v, want just below 1", ie.Time)
	}
}

func TestRK45_StepBudget(t *testing.T) {
	cfg := dynamo.DefaultConfig()
	cfg.MaxSteps = 5
	integrator := NewRK45(cfg)

	_, err := integrator.Integrate(context.Background(), &harmonicOscillator{}, dynamo.State{1, 0}, dynamo.Linspace(0, 100, 2))
	if !errors.Is(err, dynamo.ErrStepBudget) {
		t.Fatalf("expected ErrStepBudget, got %v", err)
	}
	if !errors.Is(err, dynamo.ErrNumericalIntegrationFailure) {
		t.Errorf("budget failure should also match ErrNumericalIntegrationFailure")
	}
}

func TestRK45_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRK45(dynamo.DefaultConfig()).Integrate(ctx, decay{rate: 1}, dynamo.State{1}, dynamo.Linspace(0, 1, 3))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRK45_AdaptiveStep(t *testing.T) {
	integrator := NewRK45(dynamo.DefaultConfig())
	dyn := &harmonicOscillator{}
	x0 := dynamo.State{1.0, 0.0}

	x, newDt, errNorm := integrator.StepAdaptive(dyn, x0, 0, 0.1)

	if !x.IsValid() {
		t.Error("StepAdaptive produced invalid state")
	}

	if newDt <= 0 {
		t.Errorf("StepAdaptive returned invalid dt: %f", newDt)
	}

	if errNorm > 1 && newDt >= 0.1 {
		t.Errorf("rejected step should shrink dt, got %f", newDt)
	}
}

func TestRK45_TighterToleranceIsMoreAccurate(t *testing.T) {
	loose := dynamo.DefaultConfig()
	loose.RelTol, loose.AbsTol = 1e-4, 1e-6
	tight := dynamo.DefaultConfig()

	grid := dynamo.Linspace(0, 20, 5)
	exact := math.Cos(20)

	a, err := NewRK45(loose).Integrate(context.Background(), &harmonicOscillator{}, dynamo.State{1, 0}, grid)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewRK45(tight).Integrate(context.Background(), &harmonicOscillator{}, dynamo.State{1, 0}, grid)
	if err != nil {
		t.Fatal(err)
	}

	errLoose := math.Abs(a.Final()[0] - exact)
	errTight := math.Abs(b.Final()[0] - exact)
	if errTight >= errLoose {
		t.Errorf("tight error %e not below loose error %e", errTight, errLoose)
	}
	if b.Stats.Steps <= a.Stats.Steps {
		t.Errorf("tight run took %d steps, loose %d", b.Stats.Steps, a.Stats.Steps)
	}
}
