package fsenv

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting I/O metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Collectors are called on the I/O path and must be safe for concurrent use.
type MetricsCollector interface {
	// RecordRead is called after each read from a sequential or random
	// access file. bytes is the number of bytes returned.
	RecordRead(bytes int, duration time.Duration, err error)

	// RecordWrite is called after each unbuffered write reaches the backend.
	RecordWrite(bytes int, duration time.Duration, err error)

	// RecordSync is called after each file sync. manifest is true when the
	// sync also synced the containing directory.
	RecordSync(manifest bool, duration time.Duration, err error)

	// RecordBackgroundWork is called after the background worker runs an item.
	// wait is the time the item spent queued.
	RecordBackgroundWork(wait, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRead(int, time.Duration, error)              {}
func (NoopMetricsCollector) RecordWrite(int, time.Duration, error)             {}
func (NoopMetricsCollector) RecordSync(bool, time.Duration, error)             {}
func (NoopMetricsCollector) RecordBackgroundWork(time.Duration, time.Duration) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	ReadCount        atomic.Int64
	ReadBytes        atomic.Int64
	ReadErrors       atomic.Int64
	WriteCount       atomic.Int64
	WriteBytes       atomic.Int64
	WriteErrors      atomic.Int64
	WriteTotalNanos  atomic.Int64
	SyncCount        atomic.Int64
	ManifestSyncs    atomic.Int64
	SyncErrors       atomic.Int64
	SyncTotalNanos   atomic.Int64
	BackgroundCount  atomic.Int64
	BackgroundWaitNs atomic.Int64
}

// RecordRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRead(bytes int, _ time.Duration, err error) {
	b.ReadCount.Add(1)
	b.ReadBytes.Add(int64(bytes))
	if err != nil {
		b.ReadErrors.Add(1)
	}
}

// RecordWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWrite(bytes int, duration time.Duration, err error) {
	b.WriteCount.Add(1)
	b.WriteBytes.Add(int64(bytes))
	b.WriteTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.WriteErrors.Add(1)
	}
}

// RecordSync implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSync(manifest bool, duration time.Duration, err error) {
	b.SyncCount.Add(1)
	b.SyncTotalNanos.Add(duration.Nanoseconds())
	if manifest {
		b.ManifestSyncs.Add(1)
	}
	if err != nil {
		b.SyncErrors.Add(1)
	}
}

// RecordBackgroundWork implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBackgroundWork(wait, _ time.Duration) {
	b.BackgroundCount.Add(1)
	b.BackgroundWaitNs.Add(wait.Nanoseconds())
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ReadCount:              b.ReadCount.Load(),
		ReadBytes:              b.ReadBytes.Load(),
		ReadErrors:             b.ReadErrors.Load(),
		WriteCount:             b.WriteCount.Load(),
		WriteBytes:             b.WriteBytes.Load(),
		WriteErrors:            b.WriteErrors.Load(),
		WriteAvgNanos:          avg(b.WriteTotalNanos.Load(), b.WriteCount.Load()),
		SyncCount:              b.SyncCount.Load(),
		ManifestSyncs:          b.ManifestSyncs.Load(),
		SyncErrors:             b.SyncErrors.Load(),
		SyncAvgNanos:           avg(b.SyncTotalNanos.Load(), b.SyncCount.Load()),
		BackgroundCount:        b.BackgroundCount.Load(),
		BackgroundAvgWaitNanos: avg(b.BackgroundWaitNs.Load(), b.BackgroundCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ReadCount              int64
	ReadBytes              int64
	ReadErrors             int64
	WriteCount             int64
	WriteBytes             int64
	WriteErrors            int64
	WriteAvgNanos          int64
	SyncCount              int64
	ManifestSyncs          int64
	SyncErrors             int64
	SyncAvgNanos           int64
	BackgroundCount        int64
	BackgroundAvgWaitNanos int64
}
