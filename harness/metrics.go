package harness

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/lvlbfs/bfs"
)

const (
	metricsNamespace = "lvlbfs"
	metricsSubsystem = "harness"
)

// Trial outcomes recorded in lvlbfs_harness_trials_total.
const (
	OutcomePassed    = "passed"
	OutcomeMismatch  = "mismatch"
	OutcomeFailed    = "failed"
	OutcomeUnchecked = "unchecked"
)

// phaseBuckets spans 10µs to ~40s.
var phaseBuckets = prometheus.ExponentialBuckets(1e-5, 4, 12)

// Metrics exports per-trial phase times, outcomes and round counts.
type Metrics struct {
	phase      *prometheus.HistogramVec
	trials     *prometheus.CounterVec
	rounds     prometheus.Histogram
	mismatches prometheus.Counter
}

// NewMetrics creates the harness collectors and registers them on reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		phase: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "phase_seconds",
				Help:      "Engine time per trial and phase (h2d, kernel, d2h) in seconds",
				Buckets:   phaseBuckets,
			},
			[]string{"phase"},
		),
		trials: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "trials_total",
				Help:      "Engine trials by outcome",
			},
			[]string{"outcome"},
		),
		rounds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "rounds",
				Help:      "Expand rounds until convergence per trial",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 16),
			},
		),
		mismatches: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: metricsSubsystem,
				Name:      "mismatches_total",
				Help:      "Vertices whose engine distance differs from the reference",
			},
		),
	}
	for _, c := range []prometheus.Collector{m.phase, m.trials, m.rounds, m.mismatches} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("harness: register metrics: %w", err)
		}
	}

	return m, nil
}

// observeTrial records the timings and rounds of a completed trial.
// Methods are no-ops on a nil *Metrics.
func (m *Metrics) observeTrial(tm bfs.Timings, rounds int) {
	if m == nil {
		return
	}
	m.phase.WithLabelValues("h2d").Observe(tm.HostToDevice.Seconds())
	m.phase.WithLabelValues("kernel").Observe(tm.Kernel.Seconds())
	m.phase.WithLabelValues("d2h").Observe(tm.DeviceToHost.Seconds())
	m.rounds.Observe(float64(rounds))
}

func (m *Metrics) outcome(o string) {
	if m == nil {
		return
	}
	m.trials.WithLabelValues(o).Inc()
}

func (m *Metrics) addMismatches(n int) {
	if m == nil || n == 0 {
		return
	}
	m.mismatches.Add(float64(n))
}

// Trials returns the trial counter for outcome.
func (m *Metrics) Trials(outcome string) prometheus.Counter {
	return m.trials.WithLabelValues(outcome)
}

// MismatchesTotal returns the mismatched-vertex counter.
func (m *Metrics) MismatchesTotal() prometheus.Counter { return m.mismatches }
