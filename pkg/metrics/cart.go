package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records the outcome of the engine's remote calls.
type CartMetrics struct {
	syncs        *prometheus.CounterVec
	rollbacks    prometheus.Counter
	pricing      *prometheus.CounterVec
	loads        *prometheus.CounterVec
	staleDropped prometheus.Counter
	duration     *prometheus.HistogramVec
}

// NewCartMetrics registers the cart engine metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	syncs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_total",
		Help: "Cart write-through calls by operation and result.",
	}, []string{"op", "result"})
	rollbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_sync_rollbacks_total",
		Help: "Local cart changes rolled back after a failed sync.",
	})
	pricing := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_pricing_total",
		Help: "Selection pricing requests by result.",
	}, []string{"result"})
	loads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_load_total",
		Help: "Cart reads from the API by result.",
	}, []string{"result"})
	staleDropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_pricing_stale_discarded_total",
		Help: "Pricing responses discarded because a newer request was issued.",
	})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_remote_duration_seconds",
		Help:    "Duration of cart API calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	reg.MustRegister(syncs, rollbacks, pricing, loads, staleDropped, duration)
	return &CartMetrics{
		syncs:        syncs,
		rollbacks:    rollbacks,
		pricing:      pricing,
		loads:        loads,
		staleDropped: staleDropped,
		duration:     duration,
	}
}

// ObserveSync records a write-through call outcome.
func (c *CartMetrics) ObserveSync(op string, err error) {
	if c == nil || c.syncs == nil {
		return
	}
	c.syncs.WithLabelValues(normalizeLabel(op), resultLabel(err)).Inc()
}

// IncRollback counts a local rollback.
func (c *CartMetrics) IncRollback() {
	if c == nil || c.rollbacks == nil {
		return
	}
	c.rollbacks.Inc()
}

// ObservePricing records a pricing call outcome.
func (c *CartMetrics) ObservePricing(err error) {
	if c == nil || c.pricing == nil {
		return
	}
	c.pricing.WithLabelValues(resultLabel(err)).Inc()
}

// ObserveLoad records a cart read outcome.
func (c *CartMetrics) ObserveLoad(err error) {
	if c == nil || c.loads == nil {
		return
	}
	c.loads.WithLabelValues(resultLabel(err)).Inc()
}

// IncStaleDiscarded counts a pricing response dropped as out of date.
func (c *CartMetrics) IncStaleDiscarded() {
	if c == nil || c.staleDropped == nil {
		return
	}
	c.staleDropped.Inc()
}

// ObserveDuration records the latency of the named remote operation.
func (c *CartMetrics) ObserveDuration(op string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
