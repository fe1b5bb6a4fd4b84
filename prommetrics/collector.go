// Package prommetrics exports fsenv I/O metrics to Prometheus.
//
//	c := prommetrics.New(prometheus.DefaultRegisterer)
//	env := fsenv.New(fsenv.WithMetricsCollector(c))
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/fsenv"
)

var _ fsenv.MetricsCollector = (*Collector)(nil)

// Collector implements fsenv.MetricsCollector with Prometheus metrics.
type Collector struct {
	opLatency   *prometheus.HistogramVec
	bytes       *prometheus.CounterVec
	syncs       *prometheus.CounterVec
	bgQueueWait prometheus.Histogram
	bgItems     prometheus.Counter
}

// New creates a Collector and registers its metrics with reg.
// If reg is nil, prometheus.DefaultRegisterer is used.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fsenv_operation_latency_seconds",
			Help:    "Latency of file operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"op", "status"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fsenv_bytes_total",
			Help: "Bytes transferred by reads and unbuffered writes",
		}, []string{"op"}),
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fsenv_syncs_total",
			Help: "File syncs by kind",
		}, []string{"kind", "status"}),
		bgQueueWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fsenv_background_queue_wait_seconds",
			Help:    "Time background work items spent queued",
			Buckets: prometheus.DefBuckets,
		}),
		bgItems: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fsenv_background_items_total",
			Help: "Background work items executed",
		}),
	}

	reg.MustRegister(c.opLatency, c.bytes, c.syncs, c.bgQueueWait, c.bgItems)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (c *Collector) RecordRead(bytes int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("read", status(err)).Observe(d.Seconds())
	c.bytes.WithLabelValues("read").Add(float64(bytes))
}

func (c *Collector) RecordWrite(bytes int, d time.Duration, err error) {
	c.opLatency.WithLabelValues("write", status(err)).Observe(d.Seconds())
	c.bytes.WithLabelValues("write").Add(float64(bytes))
}

func (c *Collector) RecordSync(manifest bool, d time.Duration, err error) {
	kind := "file"
	if manifest {
		kind = "manifest"
	}
	c.opLatency.WithLabelValues("sync", status(err)).Observe(d.Seconds())
	c.syncs.WithLabelValues(kind, status(err)).Inc()
}

func (c *Collector) RecordBackgroundWork(wait, d time.Duration) {
	c.opLatency.WithLabelValues("background", "success").Observe(d.Seconds())
	c.bgQueueWait.Observe(wait.Seconds())
	c.bgItems.Inc()
}
