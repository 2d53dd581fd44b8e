package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: "neurobridge_auth", Name: "http_requests_total", Help: "HTTP requests by method, route and status."},
			[]string{"method", "route", "status"},
		),
		apiLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Namespace: "neurobridge_auth", Name: "http_request_duration_seconds", Help: "HTTP request latency by method and route."},
			[]string{"method", "route"},
		),
		apiInflight: prometheus.NewGauge(
			prometheus.GaugeOpts{Namespace: "neurobridge_auth", Name: "http_requests_inflight", Help: "In-flight HTTP requests."},
		),
	}

	reg.MustRegister(m.apiRequests, m.apiLatency, m.apiInflight)
	return m
}

func (m *Metrics) ApiInflightInc() { m.apiInflight.Inc() }
func (m *Metrics) ApiInflightDec() { m.apiInflight.Dec() }

func (m *Metrics) ObserveAPI(method, route, status string, d time.Duration) {
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
