package dynamo

import (
	"fmt"
	"math"
)

// TimeGrid is a non-decreasing sequence of output times. The first element
// is the simulation start.
type TimeGrid []float64

// Linspace returns n evenly spaced times covering [start, stop]. Both ends
// are included exactly.
func Linspace(start, stop float64, n int) TimeGrid {
	if n <= 0 {
		return TimeGrid{}
	}
	grid := make(TimeGrid, n)
	if n == 1 {
		grid[0] = start
		return grid
	}
	step := (stop - start) / float64(n-1)
	for i := range grid {
		grid[i] = start + float64(i)*step
	}
	grid[n-1] = stop
	return grid
}

func (g TimeGrid) Start() float64 { return g[0] }
func (g TimeGrid) End() float64   { return g[len(g)-1] }

// Validate reports a *GridError if g is empty, holds a non-finite value or
// decreases anywhere.
func (g TimeGrid) Validate() error {
	if len(g) == 0 {
		return &GridError{Index: -1, Reason: "empty"}
	}
	for i, t := range g {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return &GridError{Index: i, Reason: fmt.Sprintf("non-finite time %v", t)}
		}
		if i > 0 && t < g[i-1] {
			return &GridError{Index: i, Reason: fmt.Sprintf("time %g precedes %g", t, g[i-1])}
		}
	}
	return nil
}
