package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/RESPONDR/respondr/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exposes Prometheus metrics for inbound HTTP traffic and the
// triage engine's decisions.
type Collector struct {
	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	triageDecisions *prometheus.CounterVec
	crowdAnomalies  *prometheus.CounterVec
}

// NewCollector constructs a collector on a private registry.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "respondr",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for inbound HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "respondr",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of inbound HTTP requests.",
	}, []string{"method", "path", "status"})

	triageDecisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "respondr",
		Subsystem: "triage",
		Name:      "decisions_total",
		Help:      "Triage decisions by dispatch action.",
	}, []string{"action"})

	crowdAnomalies := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "respondr",
		Subsystem: "crowd",
		Name:      "anomalies_total",
		Help:      "Detected crowd anomalies by type.",
	}, []string{"type"})

	collectors := []prometheus.Collector{requestDuration, requestTotal, triageDecisions, crowdAnomalies}
	for _, c := range collectors {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &Collector{
		registry:        registry,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		triageDecisions: triageDecisions,
		crowdAnomalies:  crowdAnomalies,
	}, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordTriageDecision counts one triage decision.
func (c *Collector) RecordTriageDecision(action models.TriageAction) {
	c.triageDecisions.WithLabelValues(string(action)).Inc()
}

// RecordCrowdAnomaly counts one detected anomaly.
func (c *Collector) RecordCrowdAnomaly(anomalyType models.AnomalyType) {
	c.crowdAnomalies.WithLabelValues(string(anomalyType)).Inc()
}

// InstrumentHandler wraps the provided handler to record HTTP metrics.
func (c *Collector) InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(rw.status)
		path := r.URL.Path

		c.requestTotal.WithLabelValues(r.Method, path, status).Inc()
		c.requestDuration.WithLabelValues(r.Method, path, status).Observe(duration)
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
