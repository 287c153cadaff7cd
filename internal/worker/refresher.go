package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"finance/internal/core"
)

// Refresher periodically refreshes the current month. It covers events lost
// while the broker or the worker was down.
type Refresher struct {
	worker   *SummaryWorker
	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewRefresher(w *SummaryWorker, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &Refresher{worker: w, interval: interval, now: time.Now}
}

// Start begins the refresh loop. Returns an error if already running.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return fmt.Errorf("refresher is already running")
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})

	go r.runLoop(ctx)

	r.worker.logger.InfoContext(ctx, "Refresher started", "interval", r.interval)
	return nil
}

// Stop signals the loop and waits for it to exit or for ctx to expire.
func (r *Refresher) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	r.running = false
	close(r.stopCh)
	done := r.doneCh
	r.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Refresher) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Refresher) runLoop(ctx context.Context) {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.refreshCurrent(ctx)
	for {
		select {
		case <-r.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refreshCurrent(ctx)
		}
	}
}

func (r *Refresher) refreshCurrent(ctx context.Context) {
	p := core.CurrentPeriod(r.now())
	if err := r.worker.Refresh(ctx, p); err != nil {
		r.worker.logger.ErrorContext(ctx, "Periodic refresh failed",
			"year", p.Year, "month", p.Month, "error", err)
	}
}
