package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles the Prometheus collectors the HTTP host exposes.
type Metrics struct {
	registry *prometheus.Registry

	RequestDuration *prometheus.HistogramVec
	SizingsTotal    *prometheus.CounterVec
	CacheHits       prometheus.Counter
	InFlight        prometheus.Gauge
}

// NewMetrics creates and registers the collectors on a dedicated registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "powerfit_http_request_duration_seconds",
			Help:    "Duration of HTTP requests handled by the sizing API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		SizingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "powerfit_sizings_total",
			Help: "Sizing computations by outcome.",
		}, []string{"outcome"}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "powerfit_sizing_cache_hits_total",
			Help: "Sizing responses served from the response cache.",
		}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "powerfit_http_requests_in_flight",
			Help: "HTTP requests currently being served.",
		}),
	}
	m.registry.MustRegister(m.RequestDuration, m.SizingsTotal, m.CacheHits, m.InFlight)
	return m
}

// Handler returns the exposition endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
