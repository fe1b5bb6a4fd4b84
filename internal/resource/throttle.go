package resource

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// Throttle limits I/O throughput in bytes per second.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle creates a Throttle. A non-positive rate returns nil (unlimited).
func NewThrottle(bytesPerSec int64) *Throttle {
	if bytesPerSec <= 0 {
		return nil
	}
	return &Throttle{
		limiter: rate.NewLimiter(rate.Limit(bytesPerSec), int(bytesPerSec)),
	}
}

// WaitN blocks until n bytes may be transferred or ctx is done.
// Requests larger than the bucket are split into bucket-sized waits.
func (t *Throttle) WaitN(ctx context.Context, n int) error {
	if t == nil {
		return nil
	}
	burst := t.limiter.Burst()
	for n > 0 {
		chunk := min(n, burst)
		if err := t.limiter.WaitN(ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// Writer wraps w so every Write first waits for its bytes.
func (t *Throttle) Writer(w io.Writer) io.Writer {
	if t == nil {
		return w
	}
	return &throttledWriter{w: w, t: t}
}

type throttledWriter struct {
	w io.Writer
	t *Throttle
}

func (w *throttledWriter) Write(p []byte) (int, error) {
	if err := w.t.WaitN(context.Background(), len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}
