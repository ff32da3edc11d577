package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "worker"

// Metrics holds the worker's Prometheus collectors.
type Metrics struct {
	messagesProcessed  *prometheus.CounterVec
	processingDuration *prometheus.HistogramVec
	dbOperations       *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg falls back to prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		messagesProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_processed_total",
				Help:      "Total messages processed",
			},
			[]string{"topic", "status"},
		),
		processingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "processing_duration_seconds",
				Help:      "Message processing duration",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"topic"},
		),
		dbOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_operations_total",
				Help:      "Total database operations",
			},
			[]string{"operation", "status"},
		),
	}

	for _, c := range []prometheus.Collector{m.messagesProcessed, m.processingDuration, m.dbOperations} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return m, nil
}

// ObserveMessage counts one processed message and records how long it took.
func (m *Metrics) ObserveMessage(topic, status string, elapsed time.Duration) {
	m.messagesProcessed.WithLabelValues(topic, status).Inc()
	m.processingDuration.WithLabelValues(topic).Observe(elapsed.Seconds())
}

// ObserveDBOperation counts one database statement outcome.
func (m *Metrics) ObserveDBOperation(operation, status string) {
	m.dbOperations.WithLabelValues(operation, status).Inc()
}

// Handler exposes everything gathered by g in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
