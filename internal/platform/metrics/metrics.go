package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics holds the Prometheus collectors for the HTTP boundary and the
// sensor reading cache.
type HTTPMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
}

// NewHTTPMetrics creates the collectors and registers them with reg.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	m := &HTTPMetrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "water_quality",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "water_quality",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "method"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "water_quality",
			Subsystem: "sensor_cache",
			Name:      "hits_total",
			Help:      "Total number of sensor reading cache hits.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "water_quality",
			Subsystem: "sensor_cache",
			Name:      "misses_total",
			Help:      "Total number of sensor reading cache misses.",
		}),
	}
	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.CacheHits, m.CacheMisses)
	return m
}
