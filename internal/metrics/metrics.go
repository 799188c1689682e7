// Package metrics exposes order and inventory metrics over Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests can create collectors
// without duplicate registration panics.
type Collector struct {
	registry       *prometheus.Registry
	committed      prometheus.Counter
	rejected       *prometheus.CounterVec
	commitDuration prometheus.Histogram
	orderTotal     prometheus.Histogram
	inventoryLevel *prometheus.GaugeVec
}

// NewCollector creates and registers the service's metrics.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	committed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_committed_total",
		Help: "Orders committed successfully",
	})

	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_rejected_total",
		Help: "Orders rejected, by reason",
	}, []string{"reason"})

	commitDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_commit_duration_seconds",
		Help:    "Wall time of the order placement workflow",
		Buckets: prometheus.DefBuckets,
	})

	orderTotal := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_total_amount",
		Help:    "Grand total per committed order",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	inventoryLevel := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "inventory_level",
		Help: "On-hand quantity per ingredient, in its canonical unit",
	}, []string{"ingredient"})

	for _, c := range []prometheus.Collector{committed, rejected, commitDuration, orderTotal, inventoryLevel} {
		registry.MustRegister(c)
	}

	return &Collector{
		registry:       registry,
		committed:      committed,
		rejected:       rejected,
		commitDuration: commitDuration,
		orderTotal:     orderTotal,
		inventoryLevel: inventoryLevel,
	}
}

// OrderCommitted records a successful order.
func (c *Collector) OrderCommitted(total float64, duration time.Duration) {
	c.committed.Inc()
	c.orderTotal.Observe(total)
	c.commitDuration.Observe(duration.Seconds())
}

// OrderRejected records a failed order by rejection reason.
func (c *Collector) OrderRejected(reason string) {
	c.rejected.WithLabelValues(reason).Inc()
}

// SetInventoryLevel records an ingredient's on-hand quantity.
func (c *Collector) SetInventoryLevel(ingredient string, quantity float64) {
	c.inventoryLevel.WithLabelValues(ingredient).Set(quantity)
}

// Handler serves the registry in Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
