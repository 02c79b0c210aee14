package backendapi

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts and times backend calls per endpoint.
type Metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics registers the backend call metrics on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "schedule_web",
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Backend API calls by endpoint, method and outcome.",
		}, []string{"endpoint", "method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "schedule_web",
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Backend API call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint", "method"}),
	}
	reg.MustRegister(m.requests, m.duration)
	return m
}

func (m *Metrics) observe(endpoint, method, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpoint, method, outcome).Inc()
	m.duration.WithLabelValues(endpoint, method).Observe(time.Since(start).Seconds())
}
