package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels operations that completed.
	OutcomeSuccess = "success"
	// OutcomeError labels operations rejected or failed.
	OutcomeError = "error"
)

var (
	operationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rou_engine",
			Name:      "operations_total",
			Help:      "Total simulation and diagnostics operations handled, partitioned by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	operationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rou_engine",
			Name:      "operation_seconds",
			Help:      "Operation latency in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"operation"},
	)

	pathsGeneratedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rou_engine",
			Name:      "paths_generated_total",
			Help:      "Total sample paths produced across single runs and ensembles.",
		},
	)

	pathSteps = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "rou_engine",
			Name:      "path_steps",
			Help:      "Requested step count per simulated path.",
			Buckets:   prometheus.ExponentialBuckets(100, 4, 8),
		},
	)
)

// Register attaches the engine collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		operationsTotal,
		operationSeconds,
		pathsGeneratedTotal,
		pathSteps,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveOperation records one operation's duration and outcome label.
func ObserveOperation(operation string, duration time.Duration, outcome string) {
	label := outcome
	if label != OutcomeError {
		label = OutcomeSuccess
	}
	operationsTotal.WithLabelValues(operation, label).Inc()
	if duration < 0 {
		duration = 0
	}
	operationSeconds.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObservePaths accounts for generated paths and their grid size.
func ObservePaths(count, steps int) {
	pathsGeneratedTotal.Add(float64(count))
	pathSteps.Observe(float64(steps))
}
