// Package metrics exposes the scheduling core's counters as a custom
// Prometheus Collector, grounded on the TCPInfoCollector pattern in
// runZeroInc-sockstats's pkg/exporter package: a struct implementing
// Describe/Collect over internally-tracked state, rather than a package
// of free-standing prometheus.Counter globals.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector reports the scheduling core's collision, miss, and drop
// counters alongside a gauge of currently-armed ports. Values are
// updated with plain atomics from the timer and dispatch hot paths, and
// only assembled into prometheus.Metric values when Collect is called.
type Collector struct {
	collisions      uint64
	misses          uint64
	drops           uint64
	activeSchedules int64

	collisionsDesc *prometheus.Desc
	missesDesc     *prometheus.Desc
	dropsDesc      *prometheus.Desc
	activeDesc     *prometheus.Desc
}

// NewCollector returns a Collector with its descriptors built under the
// given namespace.
func NewCollector(namespace string) *Collector {
	return &Collector{
		collisionsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "collisions_total"),
			"Total number of scheduling collisions detected at dispatch time.",
			nil, nil,
		),
		missesDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "misses_total"),
			"Total number of timer handler invocations that woke after their intended send instant.",
			nil, nil,
		),
		dropsDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "drops_total"),
			"Total number of frames dropped for lacking a staged buffer or being over-age.",
			nil, nil,
		),
		activeDesc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "active_schedules"),
			"Number of ports with an armed TT timer.",
			nil, nil,
		),
	}
}

// IncCollisions increments the collision counter. ttswitchd's collision
// callback calls this once per Collision reported at dispatch time.
func (c *Collector) IncCollisions() { atomic.AddUint64(&c.collisions, 1) }

// IncMisses increments the miss counter.
func (c *Collector) IncMisses() { atomic.AddUint64(&c.misses, 1) }

// IncDrops increments the drop counter.
func (c *Collector) IncDrops() { atomic.AddUint64(&c.drops, 1) }

// SetActiveSchedules sets the number of currently-armed ports.
func (c *Collector) SetActiveSchedules(n int) { atomic.StoreInt64(&c.activeSchedules, int64(n)) }

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.collisionsDesc
	ch <- c.missesDesc
	ch <- c.dropsDesc
	ch <- c.activeDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.collisionsDesc, prometheus.CounterValue, float64(atomic.LoadUint64(&c.collisions)))
	ch <- prometheus.MustNewConstMetric(c.missesDesc, prometheus.CounterValue, float64(atomic.LoadUint64(&c.misses)))
	ch <- prometheus.MustNewConstMetric(c.dropsDesc, prometheus.CounterValue, float64(atomic.LoadUint64(&c.drops)))
	ch <- prometheus.MustNewConstMetric(c.activeDesc, prometheus.GaugeValue, float64(atomic.LoadInt64(&c.activeSchedules)))
}
