package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	PurchasesCreated   prometheus.Counter
	PurchasesCompleted prometheus.Counter
	PurchasesFailed    prometheus.Counter
	PurchasesCancelled prometheus.Counter

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PurchasesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_purchases_created_total",
			Help: "Purchase attempts that opened a provider order.",
		}),
		PurchasesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_purchases_completed_total",
			Help: "Purchases settled with a successful inventory decrement.",
		}),
		PurchasesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_purchases_failed_total",
			Help: "Purchase attempts downgraded to FAILED.",
		}),
		PurchasesCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gatepass_purchases_cancelled_total",
			Help: "Purchase attempts cancelled before capture.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gatepass_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gatepass_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		m.PurchasesCreated,
		m.PurchasesCompleted,
		m.PurchasesFailed,
		m.PurchasesCancelled,
		m.httpRequests,
		m.httpDuration,
	)
	return m
}

var Module = fx.Module("observability.metrics",
	fx.Provide(func() *prometheus.Registry {
		reg := prometheus.NewRegistry()
		return reg
	}),
	fx.Provide(func(reg *prometheus.Registry) prometheus.Registerer { return reg }),
	fx.Provide(New),
)
