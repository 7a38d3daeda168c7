package gc

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Glowing-Pixels-UG/just-storage-sub001/internal/logger"
)

// minInterval is the floor for the collection interval.
const minInterval = 10 * time.Second

// Runner drives the collector on a fixed interval, first pass
// immediately. A failing cycle never stops the loop.
type Runner struct {
	collector *Collector
	interval  time.Duration

	mu      sync.Mutex
	started bool

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewRunner wraps collector with a schedule.
func NewRunner(collector *Collector, interval time.Duration) *Runner {
	if interval < minInterval {
		interval = minInterval
	}
	return &Runner{
		collector: collector,
		interval:  interval,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start launches the collection loop. Calling Start twice is a no-op.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.mu.Unlock()

	logger.Info("starting garbage collector",
		logger.Component("gc"),
		"interval", r.interval.String(),
	)
	go r.loop(ctx)
}

// Stop signals the loop and waits for the current cycle, up to timeout.
func (r *Runner) Stop(timeout time.Duration) {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	close(r.stopCh)
	select {
	case <-r.doneCh:
		logger.Info("garbage collector stopped", logger.Component("gc"))
	case <-time.After(timeout):
		logger.Warn("garbage collector stop timed out", logger.Component("gc"))
	}
}

func (r *Runner) loop(ctx context.Context) {
	defer close(r.doneCh)

	r.safeCycle(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.safeCycle(ctx)
		}
	}
}

// safeCycle shields the loop from a panicking cycle.
func (r *Runner) safeCycle(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("panic in collection cycle",
				logger.Component("gc"),
				logger.Err(fmt.Errorf("panic: %v", rec)),
			)
		}
	}()
	r.collector.RunCycle(ctx)
}
