package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type LoaderMetrics struct {
	registry *prometheus.Registry

	datasetTotal    *prometheus.CounterVec
	datasetDuration *prometheus.HistogramVec
	datasetInFlight prometheus.Gauge
	recordsLoaded   *prometheus.CounterVec
}

func NewLoaderMetrics(service string) *LoaderMetrics {
	registry := prometheus.NewRegistry()

	datasetTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "exambot",
			Subsystem: "loader",
			Name:      "dataset_total",
			Help:      "Total processed dataset files by status.",
		},
		[]string{"service", "status"},
	)
	datasetDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "exambot",
			Subsystem: "loader",
			Name:      "dataset_duration_seconds",
			Help:      "Dataset processing duration in seconds by status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "status"},
	)
	datasetInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "exambot",
			Subsystem: "loader",
			Name:      "dataset_in_flight",
			Help:      "Number of dataset files being processed.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	recordsLoaded := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "exambot",
			Subsystem: "loader",
			Name:      "records_loaded_total",
			Help:      "Total Q&A records written to the corpus.",
		},
		[]string{"service"},
	)

	registry.MustRegister(datasetTotal, datasetDuration, datasetInFlight, recordsLoaded)

	return &LoaderMetrics{
		registry:        registry,
		datasetTotal:    datasetTotal,
		datasetDuration: datasetDuration,
		datasetInFlight: datasetInFlight,
		recordsLoaded:   recordsLoaded,
	}
}

func (m *LoaderMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *LoaderMetrics) StartDataset() {
	m.datasetInFlight.Inc()
}

func (m *LoaderMetrics) FinishDataset(service string, loaded int, duration time.Duration, err error) {
	m.datasetInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.datasetTotal.WithLabelValues(service, status).Inc()
	m.datasetDuration.WithLabelValues(service, status).Observe(duration.Seconds())
	if loaded > 0 {
		m.recordsLoaded.WithLabelValues(service).Add(float64(loaded))
	}
}
