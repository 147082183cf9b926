package arena

import "github.com/prometheus/client_golang/prometheus"

// Metrics is a prometheus.Collector exposing the arena's scheduling state
// as a handful of gauges. The field set is grounded on the "periodic
// fields" shape of other_examples' runtime-metrics collector
// (collector.collectGCStats), narrowed to what this spec's Arena actually
// tracks rather than the full runtime.MemStats surface.
//
// Metrics reads Arena fields directly at scrape time rather than being
// pushed updates, the same pull model prometheus.Collector always uses —
// there is no background goroutine, matching the single-threaded
// contract in spec.md §5.
type Metrics struct {
	a *Arena

	phase           *prometheus.Desc
	totalAllocated  *prometheus.Desc
	rememberedSize  *prometheus.Desc
	wakeupTotal     *prometheus.Desc
	allocationDebt  *prometheus.Desc
	grayQueueLength *prometheus.Desc
}

// NewMetrics builds a Metrics collector bound to a. Register it with a
// prometheus.Registerer the same way any other prometheus.Collector is
// registered; it is safe to scrape concurrently with arena use from the
// perspective of prometheus's client library, but per spec.md §5 the host
// must still serialize it with respect to other Arena method calls.
func NewMetrics(a *Arena, namespace string) *Metrics {
	labels := prometheus.Labels{}
	return &Metrics{
		a: a,
		phase: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "arena", "phase"),
			"Current collector phase (0=sleeping, 1=propagating, 2=sweeping).",
			nil, labels,
		),
		totalAllocated: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "arena", "total_allocated_bytes"),
			"Sum of the byte sizes of every live cell on the all-list.",
			nil, labels,
		),
		rememberedSize: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "arena", "remembered_size_bytes"),
			"Bytes retained (Black) by the most recently completed sweep.",
			nil, labels,
		),
		wakeupTotal: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "arena", "wakeup_total_bytes"),
			"total_allocated threshold that will wake the collector from Sleeping.",
			nil, labels,
		),
		allocationDebt: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "arena", "allocation_debt_bytes"),
			"Outstanding bytes of collection work owed by recent allocations.",
			nil, labels,
		),
		grayQueueLength: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "arena", "gray_queue_length"),
			"Number of cells currently queued for (re)tracing.",
			nil, labels,
		),
	}
}

// Describe implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- m.phase
	ch <- m.totalAllocated
	ch <- m.rememberedSize
	ch <- m.wakeupTotal
	ch <- m.allocationDebt
	ch <- m.grayQueueLength
}

// Collect implements prometheus.Collector.
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	a := m.a
	ch <- prometheus.MustNewConstMetric(m.phase, prometheus.GaugeValue, float64(a.phase))
	ch <- prometheus.MustNewConstMetric(m.totalAllocated, prometheus.GaugeValue, float64(a.totalAllocated))
	ch <- prometheus.MustNewConstMetric(m.rememberedSize, prometheus.GaugeValue, float64(a.rememberedSize))
	ch <- prometheus.MustNewConstMetric(m.wakeupTotal, prometheus.GaugeValue, float64(a.wakeupTotal))
	ch <- prometheus.MustNewConstMetric(m.allocationDebt, prometheus.GaugeValue, a.allocationDebt)
	ch <- prometheus.MustNewConstMetric(m.grayQueueLength, prometheus.GaugeValue, float64(a.gray.Len()))
}
