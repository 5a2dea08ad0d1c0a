// Package analysis summarizes simulated trajectories.
//
//   - [Summarize]: per-species min, max, mean, spread and final value
//   - [DominantPeriod]: oscillation period from the power spectrum
//   - [NewPhasePortrait]: prey against predator, with an ASCII renderer
//
// Everything here reads a finished [dynamo.Trajectory]; nothing integrates.
package analysis
