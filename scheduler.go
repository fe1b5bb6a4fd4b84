package fsenv

import (
	"sync"
	"time"

	"github.com/hupe1980/fsenv/internal/clock"
	"github.com/hupe1980/fsenv/internal/queue"
)

type workItem struct {
	fn     func()
	queued time.Time
}

// scheduler runs work items one at a time, in submission order, on a single
// worker goroutine started by the first Schedule call.
type scheduler struct {
	mu       sync.Mutex
	cond     *sync.Cond
	queue    queue.FIFO[workItem]
	started  bool
	stopping bool
	done     chan struct{}

	clock   clock.Clock
	logger  *Logger
	metrics MetricsCollector
}

func newScheduler(c clock.Clock, logger *Logger, metrics MetricsCollector) *scheduler {
	s := &scheduler{
		done:    make(chan struct{}),
		clock:   c,
		logger:  logger,
		metrics: metrics,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Schedule queues fn for the worker. A panicking fn is not recovered.
func (s *scheduler) Schedule(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopping {
		panic("fsenv: Schedule called on a closed Env")
	}
	if !s.started {
		s.started = true
		s.logger.Debug("background worker started")
		go s.run()
	}
	// The worker only waits on an empty queue.
	if s.queue.Empty() {
		s.cond.Signal()
	}
	s.queue.Push(workItem{fn: fn, queued: s.clock.Now()})
}

func (s *scheduler) run() {
	defer close(s.done)
	for {
		s.mu.Lock()
		for s.queue.Empty() && !s.stopping {
			s.cond.Wait()
		}
		item, ok := s.queue.Pop()
		s.mu.Unlock()

		if !ok {
			return
		}

		start := s.clock.Now()
		item.fn()
		s.metrics.RecordBackgroundWork(start.Sub(item.queued), s.clock.Now().Sub(start))
	}
}

// stop lets the worker drain the queue, then waits for it to exit.
func (s *scheduler) stop() {
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		return
	}
	s.stopping = true
	started := s.started
	s.cond.Broadcast()
	s.mu.Unlock()

	if started {
		<-s.done
		s.logger.Debug("background worker stopped")
	}
}
