// Package metrics holds the Prometheus collectors for document and
// provisioning operations. A nil *Metrics records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fspk"

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics records operation counts and durations.
type Metrics struct {
	documentOps       *prometheus.CounterVec
	documentDuration  *prometheus.HistogramVec
	provisionRuns     *prometheus.CounterVec
	provisionDuration *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		documentOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_operations_total",
			Help:      "Document operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		documentDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "document_operation_duration_seconds",
			Help:      "Duration of document operations.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"operation"}),
		provisionRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provision_runs_total",
			Help:      "Index provisioning runs by variant and outcome.",
		}, []string{"variant", "outcome"}),
		provisionDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provision_duration_seconds",
			Help:      "Duration of index provisioning runs, settling delays included.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 240},
		}, []string{"variant"}),
	}
}

func outcome(ok bool) string {
	if ok {
		return OutcomeSuccess
	}
	return OutcomeFailure
}

// ObserveDocument records one upload, ingest or delete.
func (m *Metrics) ObserveDocument(operation string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.documentOps.WithLabelValues(operation, outcome(ok)).Inc()
	m.documentDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveProvision records one provisioning run.
func (m *Metrics) ObserveProvision(variant string, ok bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.provisionRuns.WithLabelValues(variant, outcome(ok)).Inc()
	m.provisionDuration.WithLabelValues(variant).Observe(elapsed.Seconds())
}
