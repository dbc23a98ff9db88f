// Package metrics exposes engine activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/bitshub/internal/domain"
	"github.com/roach88/bitshub/internal/engine"
)

const namespace = "bitshub"

// Collector is an engine observer that records transition counts and state
// gauges into its own registry.
type Collector struct {
	registry *prometheus.Registry

	actions       *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	cartUnits     prometheus.Gauge
	cartTotal     prometheus.Gauge
	orders        *prometheus.GaugeVec
	users         prometheus.Gauge
	unreadNotices prometheus.Gauge
}

// NewCollector creates a Collector with a fresh registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Dispatched actions by name and outcome.",
		}, []string{"action", "outcome"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Rejected actions by rejection code.",
		}, []string{"code"}),
		cartUnits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cart_units",
			Help:      "Units currently in the cart.",
		}),
		cartTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cart_total_rupees",
			Help:      "Current cart total in rupees.",
		}),
		orders: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "orders",
			Help:      "Orders by lifecycle status.",
		}, []string{"status"}),
		users: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registered_users",
			Help:      "Users in the registry.",
		}),
		unreadNotices: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unread_notifications",
			Help:      "Unread notifications across all users.",
		}),
	}
	c.registry.MustRegister(c.actions, c.rejections, c.cartUnits, c.cartTotal, c.orders, c.users, c.unreadNotices)
	return c
}

// Registry returns the registry backing /metrics.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Observe implements engine.Observer.
func (c *Collector) Observe(t engine.Transition) {
	if t.Action == nil {
		return
	}
	outcome := "ok"
	if !t.Outcome.OK() {
		outcome = "rejected"
		c.rejections.WithLabelValues(string(engine.CodeOf(t.Outcome.Err))).Inc()
	}
	c.actions.WithLabelValues(t.Outcome.Action, outcome).Inc()
	c.Update(t.Next)
}

// Update sets the state gauges from s.
func (c *Collector) Update(s *engine.State) {
	c.cartUnits.Set(float64(s.CartCount()))
	c.cartTotal.Set(float64(s.CartTotal()))
	c.users.Set(float64(len(s.UserOrder)))

	counts := make(map[domain.OrderStatus]int)
	for _, o := range s.Orders {
		counts[o.Status]++
	}
	for _, status := range domain.OrderStatuses {
		c.orders.WithLabelValues(string(status)).Set(float64(counts[status]))
	}

	unread := 0
	for _, n := range s.Notifications {
		if !n.Read {
			unread++
		}
	}
	c.unreadNotices.Set(float64(unread))
}
