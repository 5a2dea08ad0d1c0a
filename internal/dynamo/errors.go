package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation requests.
var (
	// ErrInvalidParameter indicates an unknown or non-finite model parameter.
	ErrInvalidParameter = errors.New("dynamo: invalid model parameter")

	// ErrInvalidInitialCondition indicates a non-finite or wrongly sized initial state.
	ErrInvalidInitialCondition = errors.New("dynamo: invalid initial condition")

	// ErrInvalidTimeGrid indicates an empty, non-finite or decreasing time grid.
	ErrInvalidTimeGrid = errors.New("dynamo: invalid time grid")

	// ErrNumericalIntegrationFailure indicates the solver gave up before the end of the grid.
	ErrNumericalIntegrationFailure = errors.New("dynamo: numerical integration failure")

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = errors.New("dynamo: adaptive timestep below minimum")

	// ErrStepBudget indicates the solver used up its step allowance.
	ErrStepBudget = errors.New("dynamo: step budget exhausted")

	// ErrUnstable indicates the state became NaN or Inf.
	ErrUnstable = errors.New("dynamo: simulation unstable (state diverged)")

	// ErrUnknownIntegrator indicates a lookup of an unregistered integrator name.
	ErrUnknownIntegrator = errors.New("dynamo: unknown integrator")
)

// ParameterError names the offending model parameter.
type ParameterError struct {
	Name  string
	Value float64
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("%v: %s=%v", ErrInvalidParameter, e.Name, e.Value)
}

func (e *ParameterError) Unwrap() error { return ErrInvalidParameter }

// InitialConditionError reports why an initial state was rejected.
type InitialConditionError struct {
	State  State
	Reason string
}

func (e *InitialConditionError) Error() string {
	return fmt.Sprintf("%v: %s", ErrInvalidInitialCondition, e.Reason)
}

func (e *InitialConditionError) Unwrap() error { return ErrInvalidInitialCondition }

// GridError locates the first bad entry of a time grid. Index is -1 when the
// grid is empty.
type GridError struct {
	Index  int
	Reason string
}

func (e *GridError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%v: %s", ErrInvalidTimeGrid, e.Reason)
	}
	return fmt.Sprintf("%v: index %d: %s", ErrInvalidTimeGrid, e.Index, e.Reason)
}

func (e *GridError) Unwrap() error { return ErrInvalidTimeGrid }

// IntegrationError wraps a solver failure with the furthest point reached.
// It matches both ErrNumericalIntegrationFailure and the wrapped cause.
type IntegrationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("%v at step %d (t=%.6g): %v", ErrNumericalIntegrationFailure, e.Step, e.Time, e.Wrapped)
}

func (e *IntegrationError) Unwrap() []error {
	return []error{ErrNumericalIntegrationFailure, e.Wrapped}
}
