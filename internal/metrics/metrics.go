// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shop"

// Metrics groups the application collectors and the registry they live in
type Metrics struct {
	Registry         *prometheus.Registry
	RequestDuration  *prometheus.HistogramVec // Per-route request latency
	RequestTotal     *prometheus.CounterVec   // Per-route request count
	RequestsInFlight prometheus.Gauge         // Requests currently being served
	CheckoutTotal    *prometheus.CounterVec   // Checkout attempts by outcome
	CheckoutAmount   prometheus.Counter       // Sum of successfully charged totals
	OrphanedIntents  prometheus.Counter       // Intents flagged by the sweep
	CacheLookups     *prometheus.CounterVec   // Listing cache hits and misses
}

// New builds a fresh registry with runtime collectors and the shop metrics
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		RequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		RequestsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		}),
		CheckoutTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "attempts_total",
			Help:      "Checkout attempts by outcome.",
		}, []string{"outcome"}),
		CheckoutAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "charged_amount_total",
			Help:      "Sum of amounts charged by successful checkouts.",
		}),
		OrphanedIntents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "orphaned_intents_total",
			Help:      "Pending checkout intents flagged as orphaned.",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Listing cache lookups by result.",
		}, []string{"result"}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestDuration,
		m.RequestTotal,
		m.RequestsInFlight,
		m.CheckoutTotal,
		m.CheckoutAmount,
		m.OrphanedIntents,
		m.CacheLookups,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// CacheHit records a listing cache lookup
func (m *Metrics) CacheHit(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.CacheLookups.WithLabelValues("miss").Inc()
}
