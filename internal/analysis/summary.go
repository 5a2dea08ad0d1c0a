package analysis

import (
	"github.com/san-kum/predprey/internal/dynamo"
	"github.com/san-kum/predprey/internal/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

type SeriesStats struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Final  float64 `json:"final"`
	// Period is zero when no oscillation was detected.
	Period float64 `json:"period"`
}

type Summary struct {
	Points   int         `json:"points"`
	Prey     SeriesStats `json:"prey"`
	Predator SeriesStats `json:"predator"`
}

// PeriodTransient is the leading fraction of a run skipped when estimating
// oscillation periods.
const PeriodTransient = 0.5

func Summarize(traj *dynamo.Trajectory) Summary {
	return Summary{
		Points:   traj.Len(),
		Prey:     seriesStats(traj.Times, traj.Column(models.Prey)),
		Predator: seriesStats(traj.Times, traj.Column(models.Predator)),
	}
}

func seriesStats(times, values []float64) SeriesStats {
	if len(values) == 0 {
		return SeriesStats{}
	}
	mean, std := stat.MeanStdDev(values, nil)
	if len(values) == 1 {
		std = 0
	}
	s := SeriesStats{
		Min:    floats.Min(values),
		Max:    floats.Max(values),
		Mean:   mean,
		StdDev: std,
		Final:  values[len(values)-1],
	}
	if p, ok := DominantPeriod(times, values, PeriodTransient); ok {
		s.Period = p
	}
	return s
}
