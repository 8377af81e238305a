package graphdb

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the traversal engine. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	queries       *prometheus.CounterVec
	steps         *prometheus.CounterVec
	unknownSteps  *prometheus.CounterVec
	queryDuration prometheus.Histogram
}

// NewMetrics creates the engine collectors and registers them with reg.
// A nil registerer disables metrics.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &Metrics{
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gremlingraph",
			Subsystem: "engine",
			Name:      "queries_total",
			Help:      "Total number of executed queries by outcome",
		}, []string{"status"}),

		steps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gremlingraph",
			Subsystem: "engine",
			Name:      "steps_total",
			Help:      "Total number of step invocations by step name",
		}, []string{"step"}),

		unknownSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gremlingraph",
			Subsystem: "engine",
			Name:      "unknown_steps_total",
			Help:      "Total number of skipped unknown steps",
		}, []string{"step"}),

		queryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gremlingraph",
			Subsystem: "engine",
			Name:      "query_duration_seconds",
			Help:      "Query parse and execution latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}

	for _, c := range []prometheus.Collector{m.queries, m.steps, m.unknownSteps, m.queryDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) recordQuery(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.queries.WithLabelValues(status).Inc()
	m.queryDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) recordStep(name string) {
	if m == nil {
		return
	}
	m.steps.WithLabelValues(name).Inc()
}

func (m *Metrics) recordUnknownStep(name string) {
	if m == nil {
		return
	}
	m.unknownSteps.WithLabelValues(name).Inc()
}
