package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/san-kum/predprey/internal/dynamo"
)

const namespace = "predprey"

// Recorder collects per-run simulation metrics on its own registry, so
// several recorders can coexist in one process.
type Recorder struct {
	registry *prometheus.Registry
	runs     *prometheus.CounterVec
	steps    *prometheus.CounterVec
	rejected *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Simulation runs by integrator and outcome.",
		}, []string{"integrator", "outcome"}),
		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "integrator_steps_total",
			Help:      "Accepted integrator steps.",
		}, []string{"integrator"}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "integrator_rejected_steps_total",
			Help:      "Steps rejected by error control.",
		}, []string{"integrator"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "simulation_duration_seconds",
			Help:      "Wall time of a single simulation run.",
			Buckets:   prometheus.ExponentialBuckets(1e-4, 4, 10),
		}, []string{"integrator"}),
	}
	r.registry.MustRegister(r.runs, r.steps, r.rejected, r.duration)
	return r
}

// Outcome classifies a run error for the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, dynamo.ErrNumericalIntegrationFailure):
		return "integration_failure"
	case errors.Is(err, dynamo.ErrInvalidParameter),
		errors.Is(err, dynamo.ErrInvalidInitialCondition),
		errors.Is(err, dynamo.ErrInvalidTimeGrid):
		return "invalid_request"
	default:
		return "error"
	}
}

// Observe records one finished run. traj may be nil when err is set.
func (r *Recorder) Observe(integrator string, traj *dynamo.Trajectory, elapsed time.Duration, err error) {
	r.runs.WithLabelValues(integrator, Outcome(err)).Inc()
	r.duration.WithLabelValues(integrator).Observe(elapsed.Seconds())
	if traj != nil {
		r.steps.WithLabelValues(integrator).Add(float64(traj.Stats.Steps))
		r.rejected.WithLabelValues(integrator).Add(float64(traj.Stats.Rejected))
	}
}

func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// WriteTextfile writes the registry in Prometheus text format, suitable for
// the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
