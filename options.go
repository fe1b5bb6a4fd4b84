package fsenv

import (
	"github.com/hupe1980/fsenv/internal/clock"
	"github.com/hupe1980/fsenv/vfs"
)

const (
	// DefaultWriteBufferSize is the capacity of each appender's staging buffer.
	DefaultWriteBufferSize = 65536

	// DefaultManifestPrefix marks files whose Sync must sync their directory first.
	DefaultManifestPrefix = "MANIFEST"
)

type options struct {
	fs               vfs.FileSystem
	logger           *Logger
	metricsCollector MetricsCollector
	clock            clock.Clock
	fdLimit          int // <0 derives from RLIMIT_NOFILE
	mmapLimit        int // <0 uses the platform default
	writeBufferSize  int
	manifestPrefix   string
	sequentialSkip   bool
	writeRateLimit   int64
}

func defaultOptions() options {
	return options{
		fs:               vfs.Default,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		clock:            clock.Real(),
		fdLimit:          -1,
		mmapLimit:        -1,
		writeBufferSize:  DefaultWriteBufferSize,
		manifestPrefix:   DefaultManifestPrefix,
		sequentialSkip:   true,
	}
}

// Option configures an Env.
type Option func(*options)

// WithFileSystem sets the storage backend.
//
// If nil is passed, vfs.Default is used.
func WithFileSystem(fs vfs.FileSystem) Option {
	return func(o *options) {
		if fs == nil {
			fs = vfs.Default
		}
		o.fs = fs
	}
}

// WithLogger sets a custom logger for structured logging.
// If nil is passed, logging is disabled (NoopLogger).
//
// Example:
//
//	logger := fsenv.NewJSONLogger(slog.LevelDebug)
//	env := fsenv.New(fsenv.WithLogger(logger))
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets a custom metrics collector for observability.
// If nil is passed, metrics are disabled (NoopMetricsCollector).
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithClock sets the clock behind NowMicros and SleepForMicroseconds.
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c == nil {
			c = clock.Real()
		}
		o.clock = c
	}
}

// WithReadOnlyFDLimit caps how many random access files keep a descriptor
// open. Readers beyond the cap reopen the file on every read.
// A negative value derives the cap from the process descriptor limit.
func WithReadOnlyFDLimit(n int) Option {
	return func(o *options) {
		o.fdLimit = n
	}
}

// WithMmapLimit caps how many random access files are memory-mapped.
// Zero disables mapping. A negative value uses the platform default.
func WithMmapLimit(n int) Option {
	return func(o *options) {
		o.mmapLimit = n
	}
}

// WithWriteBufferSize sets the staging buffer capacity of each appender.
// Values <= 0 use DefaultWriteBufferSize.
func WithWriteBufferSize(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = DefaultWriteBufferSize
		}
		o.writeBufferSize = n
	}
}

// WithManifestPrefix sets the basename prefix that identifies manifest files.
// An empty prefix disables directory syncs.
func WithManifestPrefix(prefix string) Option {
	return func(o *options) {
		o.manifestPrefix = prefix
	}
}

// WithSequentialSkip enables or disables SequentialFile.Skip. Backends
// that cannot seek forward should disable it, in which case Skip returns
// ErrNotSupported.
func WithSequentialSkip(enabled bool) Option {
	return func(o *options) {
		o.sequentialSkip = enabled
	}
}

// WithWriteRateLimit limits the bytes per second that writers push to the
// backend. Zero or negative means unlimited.
func WithWriteRateLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.writeRateLimit = bytesPerSec
	}
}
