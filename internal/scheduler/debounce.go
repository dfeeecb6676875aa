package scheduler

import (
	"context"
	"sync"
	"time"
)

// Debouncer runs a callback once after a quiet period. A new Trigger before the delay
// elapses replaces the pending callback. Callbacks receive a context that Stop cancels.
type Debouncer struct {
	delay  time.Duration
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	wg      sync.WaitGroup
}

func NewDebouncer(parent context.Context, delay time.Duration) *Debouncer {
	ctx, cancel := context.WithCancel(parent)
	return &Debouncer{delay: delay, ctx: ctx, cancel: cancel}
}

// Trigger schedules fn, dropping any callback that has not fired yet.
func (d *Debouncer) Trigger(fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.dropPending()
	d.wg.Add(1)
	d.timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		if d.ctx.Err() != nil {
			return
		}
		fn(d.ctx)
	})
}

// Cancel drops the pending callback, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dropPending()
}

// dropPending needs d.mu held.
func (d *Debouncer) dropPending() {
	if d.timer != nil && d.timer.Stop() {
		d.wg.Done()
	}
	d.timer = nil
}

// Stop cancels the callback context, drops the pending callback and waits for running ones.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	d.cancel()
	d.dropPending()
	d.mu.Unlock()
	d.wg.Wait()
}
