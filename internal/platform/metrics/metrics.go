// Package metrics exposes Prometheus metrics for provider calls and dashboard cycles.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds all Prometheus metrics for the analyzer.
type Metrics struct {
	ProviderRequests *prometheus.CounterVec   // labels: provider, op, outcome
	ProviderLatency  *prometheus.HistogramVec // labels: provider, op
	Cycles           *prometheus.CounterVec   // labels: outcome (ok, fetch_error, insufficient_data, ...)
	CycleDuration    prometheus.Histogram
	IndicatorDur     prometheus.Histogram

	gatherer prometheus.Gatherer
}

// NewMetrics registers and returns all Prometheus metrics on a fresh registry,
// together with the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewMetricsWith(reg, reg)
}

// NewMetricsWith registers the metrics on reg and serves them from g.
func NewMetricsWith(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	m := &Metrics{
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analyzer_provider_requests_total",
			Help: "Market data provider calls by provider, operation and outcome",
		}, []string{"provider", "op", "outcome"}),
		ProviderLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analyzer_provider_request_duration_seconds",
			Help:    "Market data provider call latency",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"provider", "op"}),
		Cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analyzer_dashboard_cycles_total",
			Help: "Fetch-compute-render cycles by outcome",
		}, []string{"outcome"}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "analyzer_dashboard_cycle_duration_seconds",
			Help:    "End-to-end latency of one dashboard cycle",
			Buckets: prometheus.DefBuckets,
		}),
		IndicatorDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "analyzer_indicator_compute_duration_seconds",
			Help:    "MACD and RSI compute latency per cycle",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
		gatherer: g,
	}

	reg.MustRegister(
		m.ProviderRequests,
		m.ProviderLatency,
		m.Cycles,
		m.CycleDuration,
		m.IndicatorDur,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveCycle records one dashboard cycle. A nil *Metrics records nothing.
func (m *Metrics) ObserveCycle(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Cycles.WithLabelValues(outcome).Inc()
	m.CycleDuration.Observe(d.Seconds())
}

// ObserveIndicators records the indicator compute time of one cycle.
func (m *Metrics) ObserveIndicators(d time.Duration) {
	if m == nil {
		return
	}
	m.IndicatorDur.Observe(d.Seconds())
}
