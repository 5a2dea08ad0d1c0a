package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns |X_k|² for k = 0..n/2 of the mean-removed series.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	mean := stat.Mean(data, nil)
	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, len(spectrum)/2+1)
	for i := range ps {
		a := cmplx.Abs(spectrum[i])
		ps[i] = a * a
	}
	return ps
}

// DominantPeriod estimates the main oscillation period of values sampled at
// the evenly spaced times. The leading transient fraction of the series is
// ignored. ok is false when the remaining series is too short, flat or
// shows less than two cycles.
func DominantPeriod(times, values []float64, transient float64) (period float64, ok bool) {
	if len(times) != len(values) {
		return 0, false
	}
	start := int(math.Floor(transient * float64(len(values))))
	start = max(0, min(start, len(values)))
	times, values = times[start:], values[start:]

	n := len(values)
	if n < 8 {
		return 0, false
	}
	dt := (times[n-1] - times[0]) / float64(n-1)
	if dt <= 0 || stat.StdDev(values, nil) < 1e-9 {
		return 0, false
	}

	ps := PowerSpectrum(values)
	best := 0
	for k := 1; k < len(ps); k++ {
		if best == 0 || ps[k] > ps[best] {
			best = k
		}
	}
	// A peak in the first bin is a trend, not a cycle.
	if best < 2 {
		return 0, false
	}
	return float64(n) * dt / float64(best), true
}
