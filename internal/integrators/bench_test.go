package integrators

import (
	"context"
	"testing"

	"github.com/san-kum/predprey/internal/dynamo"
)

type benchDynamics struct{}

func (b *benchDynamics) StateDim() int { return 2 }
func (b *benchDynamics) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func BenchmarkEuler(b *testing.B) {
	integrator := NewEuler(dynamo.DefaultConfig())
	dyn := &benchDynamics{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkRK4(b *testing.B) {
	integrator := NewRK4(dynamo.DefaultConfig())
	dyn := &benchDynamics{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integrator.Step(dyn, x, 0, 0.01)
	}
}

func BenchmarkRK45(b *testing.B) {
	integrator := NewRK45(dynamo.DefaultConfig())
	dyn := &benchDynamics{}
	x := dynamo.State{1.0, 0.0}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x, _, _ = integrator.StepAdaptive(dyn, x, 0, 0.01)
	}
}

func BenchmarkRK45_Integrate(b *testing.B) {
	integrator := NewRK45(dynamo.DefaultConfig())
	dyn := &benchDynamics{}
	grid := dynamo.Linspace(0, 100, 1000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := integrator.Integrate(context.Background(), dyn, dynamo.State{1, 0}, grid); err != nil {
			b.Fatal(err)
		}
	}
}
