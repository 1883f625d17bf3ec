package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeScored      = "scored"
	OutcomeUnparseable = "unparseable"
	OutcomeDegraded    = "degraded"
)

// BatchMetrics tracks document scoring across batches.
type BatchMetrics struct {
	registry *prometheus.Registry

	documentTotal    *prometheus.CounterVec
	documentDuration *prometheus.HistogramVec
	documentInFlight prometheus.Gauge
	oracleDegraded   *prometheus.CounterVec
	storeErrors      prometheus.Counter
	batchTotal       prometheus.Counter
}

func NewBatchMetrics(provider string) *BatchMetrics {
	registry := prometheus.NewRegistry()

	documentTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cv_ranker",
			Subsystem: "batch",
			Name:      "document_total",
			Help:      "Total scored documents by outcome.",
		},
		[]string{"provider", "outcome"},
	)
	documentDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "cv_ranker",
			Subsystem: "batch",
			Name:      "document_duration_seconds",
			Help:      "Time spent scoring one document by outcome.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"provider", "outcome"},
	)
	documentInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cv_ranker",
			Subsystem: "batch",
			Name:      "document_in_flight",
			Help:      "Number of documents being scored.",
			ConstLabels: prometheus.Labels{
				"provider": provider,
			},
		},
	)
	oracleDegraded := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cv_ranker",
			Subsystem: "oracle",
			Name:      "degraded_total",
			Help:      "Oracle calls that ended without a verdict.",
		},
		[]string{"provider"},
	)
	storeErrors := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cv_ranker",
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Candidate rows that could not be stored.",
		},
	)
	batchTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cv_ranker",
			Subsystem: "batch",
			Name:      "runs_total",
			Help:      "Completed batches.",
		},
	)

	registry.MustRegister(documentTotal, documentDuration, documentInFlight, oracleDegraded, storeErrors, batchTotal)

	return &BatchMetrics{
		registry:         registry,
		documentTotal:    documentTotal,
		documentDuration: documentDuration,
		documentInFlight: documentInFlight,
		oracleDegraded:   oracleDegraded,
		storeErrors:      storeErrors,
		batchTotal:       batchTotal,
	}
}

func (m *BatchMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *BatchMetrics) StartDocument() {
	m.documentInFlight.Inc()
}

func (m *BatchMetrics) FinishDocument(provider, outcome string, duration time.Duration) {
	m.documentInFlight.Dec()
	m.documentTotal.WithLabelValues(provider, outcome).Inc()
	m.documentDuration.WithLabelValues(provider, outcome).Observe(duration.Seconds())
}

func (m *BatchMetrics) OracleDegraded(provider string) {
	m.oracleDegraded.WithLabelValues(provider).Inc()
}

func (m *BatchMetrics) StoreFailed() {
	m.storeErrors.Inc()
}

func (m *BatchMetrics) FinishBatch() {
	m.batchTotal.Inc()
}

// WriteTextfile dumps the registry in the node_exporter textfile format.
func (m *BatchMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
