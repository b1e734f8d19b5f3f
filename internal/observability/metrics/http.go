package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	retrievalTotal      *prometheus.CounterVec
	retrievalCandidates *prometheus.HistogramVec
	retrievalDuration   *prometheus.HistogramVec
	retrievalFallback   *prometheus.CounterVec
	chatTurnsTotal      *prometheus.CounterVec
	toolCallsTotal      *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "exambot",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "exambot",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "exambot",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	retrievalTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "exambot",
			Subsystem: "retrieval",
			Name:      "requests_total",
			Help:      "Total retrieval requests by operation and match type.",
		},
		[]string{"service", "operation", "match"},
	)
	retrievalCandidates := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "exambot",
			Subsystem: "retrieval",
			Name:      "candidates",
			Help:      "Distribution of fused candidates per retrieval request.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"service", "operation"},
	)
	retrievalDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "exambot",
			Subsystem: "retrieval",
			Name:      "duration_seconds",
			Help:      "Retrieval execution duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "operation"},
	)
	retrievalFallback := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "exambot",
			Subsystem: "retrieval",
			Name:      "fallback_total",
			Help:      "Total retrieval requests answered from the broad fallback.",
		},
		[]string{"service", "operation"},
	)
	chatTurnsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "exambot",
			Subsystem: "chat",
			Name:      "turns_total",
			Help:      "Total processed chat turns by status.",
		},
		[]string{"service", "status"},
	)
	toolCallsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "exambot",
			Subsystem: "chat",
			Name:      "tool_calls_total",
			Help:      "Total tool calls requested by the model.",
		},
		[]string{"service", "tool"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		retrievalTotal,
		retrievalCandidates,
		retrievalDuration,
		retrievalFallback,
		chatTurnsTotal,
		toolCallsTotal,
	)

	return &HTTPServerMetrics{
		registry:            registry,
		requestTotal:        requestTotal,
		requestDuration:     requestDuration,
		requestInFlight:     requestInFlight,
		retrievalTotal:      retrievalTotal,
		retrievalCandidates: retrievalCandidates,
		retrievalDuration:   retrievalDuration,
		retrievalFallback:   retrievalFallback,
		chatTurnsTotal:      chatTurnsTotal,
		toolCallsTotal:      toolCallsTotal,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/sessions/"):
		rest := strings.TrimPrefix(path, "/v1/sessions/")
		if strings.HasSuffix(rest, "/messages") {
			return "/v1/sessions/{session_id}/messages"
		}
		return "/v1/sessions/{session_id}"
	case strings.HasPrefix(path, "/v1/users/"):
		return "/v1/users/{name}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordRetrieval(service, operation, match string, candidates int, duration time.Duration) {
	if match == "" {
		match = "none"
	}
	m.retrievalTotal.WithLabelValues(service, operation, match).Inc()
	m.retrievalCandidates.WithLabelValues(service, operation).Observe(float64(candidates))
	m.retrievalDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
	if match == "fallback" {
		m.retrievalFallback.WithLabelValues(service, operation).Inc()
	}
}

func (m *HTTPServerMetrics) RecordChatTurn(service string, toolsInvoked []string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.chatTurnsTotal.WithLabelValues(service, status).Inc()
	for _, tool := range toolsInvoked {
		if tool == "" {
			tool = "unknown"
		}
		m.toolCallsTotal.WithLabelValues(service, tool).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
