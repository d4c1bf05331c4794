package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "phonebill"

// Metrics holds the collectors the service exports on /metrics. Runtime and
// database pool collectors live on the default registry; Gatherer serves both.
type Metrics struct {
	Registry *prometheus.Registry
	Gatherer prometheus.Gatherer

	InvoicesTotal   *prometheus.CounterVec
	CallsPerInvoice prometheus.Histogram
	InvoiceDuration prometheus.Histogram
	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		Gatherer: prometheus.Gatherers{registry, prometheus.DefaultGatherer},
		InvoicesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "invoices_total",
				Help:      "Invoices requested, by outcome.",
			},
			[]string{"outcome"},
		),
		CallsPerInvoice: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "invoice_calls",
				Help:      "Calls priced per built invoice.",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		InvoiceDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "invoice_build_duration_seconds",
				Help:      "Time spent building an invoice.",
				Buckets:   prometheus.DefBuckets,
			},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests served.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	registry.MustRegister(
		m.InvoicesTotal,
		m.CallsPerInvoice,
		m.InvoiceDuration,
		m.HTTPRequests,
		m.HTTPDuration,
	)
	return m
}
