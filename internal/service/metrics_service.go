package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the engines
// and the HTTP surface.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	checkDuration   *prometheus.HistogramVec
	checkTotal      *prometheus.CounterVec
	scoreTotal      prometheus.Counter
	disruptionTotal *prometheus.CounterVec
	alternatives    prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	checkDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "feasibility_check_duration_seconds",
		Help:    "Duration of feasibility checks",
		Buckets: prometheus.DefBuckets,
	}, []string{"feasible"})

	checkTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feasibility_checks_total",
		Help: "Total feasibility checks by outcome",
	}, []string{"feasible"})

	scoreTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "score_requests_total",
		Help: "Total scoring requests",
	})

	disruptionTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "disruptions_total",
		Help: "Total disruption events handled by trigger type",
	}, []string{"type"})

	alternatives := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "alternatives_generated_total",
		Help: "Total alternatives generated by the replanning engine",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, checkDuration, checkTotal, scoreTotal, disruptionTotal, alternatives, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		checkDuration:   checkDuration,
		checkTotal:      checkTotal,
		scoreTotal:      scoreTotal,
		disruptionTotal: disruptionTotal,
		alternatives:    alternatives,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveFeasibilityCheck records one check by outcome.
func (m *MetricsService) ObserveFeasibilityCheck(feasible bool, duration time.Duration) {
	if m == nil {
		return
	}
	label := "false"
	if feasible {
		label = "true"
	}
	m.checkDuration.WithLabelValues(label).Observe(duration.Seconds())
	m.checkTotal.WithLabelValues(label).Inc()
}

// ObserveScoreRequest counts one scoring call.
func (m *MetricsService) ObserveScoreRequest() {
	if m == nil {
		return
	}
	m.scoreTotal.Inc()
}

// ObserveDisruption records a handled event and its generated alternatives.
func (m *MetricsService) ObserveDisruption(triggerType string, alternatives int) {
	if m == nil {
		return
	}
	m.disruptionTotal.WithLabelValues(triggerType).Inc()
	m.alternatives.Add(float64(alternatives))
}
