// Package metrics exposes Prometheus collectors for the consistency core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "retailpos"

// Metrics groups the counters updated by engines, the relay and the HTTP layer.
type Metrics struct {
	registry *prometheus.Registry

	OrderTransitions  *prometheus.CounterVec
	StockRejections   prometheus.Counter
	UnitsReserved     prometheus.Counter
	UnitsReleased     prometheus.Counter
	DiscountDecisions *prometheus.CounterVec
	PaymentsConfirmed prometheus.Counter
	ConfirmConflicts  prometheus.Counter
	OutboxPublished   *prometheus.CounterVec
	OutboxFailures    prometheus.Counter
	HTTPRequests      *prometheus.HistogramVec
}

// New registers all collectors on registry. A nil registry gets a fresh one.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	m := &Metrics{
		registry: registry,
		OrderTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "order_transitions_total",
			Help: "Order lifecycle events applied, by event.",
		}, []string{"event"}),
		StockRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "stock_rejections_total",
			Help: "Reservations refused for insufficient stock.",
		}),
		UnitsReserved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "inventory_units_reserved_total",
			Help: "Units taken from stock by committed and rolled back reservations.",
		}),
		UnitsReleased: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "inventory_units_released_total",
			Help: "Units returned to stock, restocks included.",
		}),
		DiscountDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "discount_decisions_total",
			Help: "Discount requests decided, by outcome.",
		}, []string{"status"}),
		PaymentsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "payments_confirmed_total",
			Help: "Payments confirmed with a receipt.",
		}),
		ConfirmConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "payment_confirm_conflicts_total",
			Help: "Confirm attempts that lost to an earlier confirmation.",
		}),
		OutboxPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "outbox_published_total",
			Help: "Events delivered to the broker, by topic.",
		}, []string{"topic"}),
		OutboxFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "outbox_publish_failures_total",
			Help: "Outbox batches that failed to publish.",
		}),
		HTTPRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	registry.MustRegister(
		m.OrderTransitions,
		m.StockRejections,
		m.UnitsReserved,
		m.UnitsReleased,
		m.DiscountDecisions,
		m.PaymentsConfirmed,
		m.ConfirmConflicts,
		m.OutboxPublished,
		m.OutboxFailures,
		m.HTTPRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
