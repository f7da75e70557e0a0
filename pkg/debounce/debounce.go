// Package debounce coalesces bursts of calls that share a key so only the most
// recent one runs.
package debounce

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSuperseded is returned to callers whose task was replaced by a newer call
// for the same key before or while it ran.
var ErrSuperseded = errors.New("debounce: superseded by a newer call")

// Debouncer schedules one task per key after a quiet period. Scheduling a new
// task for a key cancels the pending or running task for that key.
type Debouncer struct {
	interval time.Duration

	mu      sync.Mutex
	seq     uint64
	pending map[string]*task
}

type task struct {
	id         uint64
	cancel     context.CancelFunc
	superseded chan struct{}
}

// New returns a Debouncer that waits interval before running a task.
func New(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		pending:  make(map[string]*task),
	}
}

// Interval returns the quiet period.
func (d *Debouncer) Interval() time.Duration {
	return d.interval
}

// Do waits for the quiet period and then runs fn, unless a newer call for the
// same key arrives first, in which case it returns ErrSuperseded. The context
// handed to fn is cancelled when the task is superseded while running.
func (d *Debouncer) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	t := d.schedule(key, cancel)

	timer := time.NewTimer(d.interval)
	select {
	case <-timer.C:
	case <-t.superseded:
		timer.Stop()
		return ErrSuperseded
	case <-ctx.Done():
		timer.Stop()
		d.release(key, t)
		return ctx.Err()
	}

	err := fn(taskCtx)

	if !d.release(key, t) {
		return ErrSuperseded
	}
	return err
}

// Run is the value-returning form of Do.
func Run[T any](ctx context.Context, d *Debouncer, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	err := d.Do(ctx, key, func(ctx context.Context) error {
		var err error
		result, err = fn(ctx)
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// Pending returns the number of keys with a scheduled or running task.
func (d *Debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

func (d *Debouncer) schedule(key string, cancel context.CancelFunc) *task {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	t := &task{id: d.seq, cancel: cancel, superseded: make(chan struct{})}
	if prev, ok := d.pending[key]; ok {
		close(prev.superseded)
		prev.cancel()
	}
	d.pending[key] = t
	return t
}

// release removes t from the pending set and reports whether it was still the
// current task for key.
func (d *Debouncer) release(key string, t *task) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	current, ok := d.pending[key]
	if !ok || current.id != t.id {
		return false
	}
	delete(d.pending, key)
	return true
}
