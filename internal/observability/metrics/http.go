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

	chatRequestsTotal      *prometheus.CounterVec
	chatDuration           *prometheus.HistogramVec
	contextChars           *prometheus.HistogramVec
	llmTokensTotal         *prometheus.CounterVec
	documentsUploadedTotal *prometheus.CounterVec
	extractionDegraded     *prometheus.CounterVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdc",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pdc",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "pdc",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chatRequestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdc",
			Subsystem: "chat",
			Name:      "requests_total",
			Help:      "Chat requests by outcome and response shape.",
		},
		[]string{"service", "status", "kind"},
	)
	chatDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pdc",
			Subsystem: "chat",
			Name:      "duration_seconds",
			Help:      "Chat execution duration in seconds, completion call included.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 60},
		},
		[]string{"service", "status"},
	)
	contextChars := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pdc",
			Subsystem: "chat",
			Name:      "context_chars",
			Help:      "Characters of document context sent with each chat.",
			Buckets:   []float64{0, 250, 500, 1000, 1500, 2000, 2500, 3000},
		},
		[]string{"service"},
	)
	llmTokensTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdc",
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Token usage reported by the completion service, by direction.",
		},
		[]string{"service", "direction", "model"},
	)
	documentsUploadedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdc",
			Subsystem: "documents",
			Name:      "uploaded_total",
			Help:      "Documents appended to projects by upload path.",
		},
		[]string{"service", "source"},
	)
	extractionDegraded := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdc",
			Subsystem: "documents",
			Name:      "extraction_degraded_total",
			Help:      "Uploads whose text extraction produced nothing.",
		},
		[]string{"service"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		chatRequestsTotal,
		chatDuration,
		contextChars,
		llmTokensTotal,
		documentsUploadedTotal,
		extractionDegraded,
	)

	return &HTTPServerMetrics{
		registry:               registry,
		requestTotal:           requestTotal,
		requestDuration:        requestDuration,
		requestInFlight:        requestInFlight,
		chatRequestsTotal:      chatRequestsTotal,
		chatDuration:           chatDuration,
		contextChars:           contextChars,
		llmTokensTotal:         llmTokensTotal,
		documentsUploadedTotal: documentsUploadedTotal,
		extractionDegraded:     extractionDegraded,
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

// normalizePath collapses project ids so label cardinality stays bounded.
func normalizePath(path string) string {
	switch {
	case path == "/projects/create", path == "/projects/list":
		return path
	case strings.HasPrefix(path, "/projects/") && strings.Contains(path, "/documents/"):
		return "/projects/{project_id}/documents/{document_id}/raw"
	case strings.HasPrefix(path, "/projects/"):
		return "/projects/{project_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordChat(service, status, kind string, contextChars int, duration time.Duration) {
	if status == "" {
		status = "unknown"
	}
	if kind == "" {
		kind = "none"
	}
	m.chatRequestsTotal.WithLabelValues(service, status, kind).Inc()
	m.chatDuration.WithLabelValues(service, status).Observe(duration.Seconds())
	if status == "ok" {
		m.contextChars.WithLabelValues(service).Observe(float64(contextChars))
	}
}

func (m *HTTPServerMetrics) RecordTokenUsage(service, model string, inputTokens, outputTokens int) {
	if model == "" {
		model = "unknown"
	}
	if inputTokens > 0 {
		m.llmTokensTotal.WithLabelValues(service, "in", model).Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		m.llmTokensTotal.WithLabelValues(service, "out", model).Add(float64(outputTokens))
	}
}

func (m *HTTPServerMetrics) RecordDocumentUploaded(service, source string, degraded bool) {
	m.documentsUploadedTotal.WithLabelValues(service, source).Inc()
	if degraded {
		m.extractionDegraded.WithLabelValues(service).Inc()
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
