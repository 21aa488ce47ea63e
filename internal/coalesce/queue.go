// Package coalesce merges bursts of keyed updates into one deferred flush
// carrying only the latest value per key.
package coalesce

import (
	"sync"
	"time"
)

// Queue collects values by key and flushes them once no new value has
// arrived for the configured interval. Every Schedule call restarts the
// single shared timer.
type Queue[K comparable, V any] struct {
	mu       sync.Mutex
	interval time.Duration
	flush    func(map[K]V)
	pending  map[K]V
	timer    *time.Timer
	stopped  bool
}

// New returns a Queue that hands drained batches to flush.
func New[K comparable, V any](interval time.Duration, flush func(map[K]V)) *Queue[K, V] {
	return &Queue[K, V]{
		interval: interval,
		flush:    flush,
		pending:  make(map[K]V),
	}
}

// Schedule records v as the latest value for k and restarts the quiet
// interval. Calls after Stop are ignored.
func (q *Queue[K, V]) Schedule(k K, v V) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return
	}
	q.pending[k] = v
	if q.timer != nil {
		q.timer.Stop()
	}
	q.timer = time.AfterFunc(q.interval, q.fire)
}

// Cancel drops the pending value for k, if any.
func (q *Queue[K, V]) Cancel(k K) {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.pending, k)
	if len(q.pending) == 0 && q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
}

// Discard drops every pending value without flushing.
func (q *Queue[K, V]) Discard() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.reset()
}

// Pending reports how many keys are waiting to be flushed.
func (q *Queue[K, V]) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// FlushNow disarms the timer and flushes synchronously on the caller's
// goroutine. It does nothing when no values are pending.
func (q *Queue[K, V]) FlushNow() {
	batch := q.drain()
	if len(batch) == 0 {
		return
	}
	q.flush(batch)
}

// Stop discards pending values and ignores later Schedule calls.
func (q *Queue[K, V]) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stopped = true
	q.reset()
}

func (q *Queue[K, V]) fire() {
	q.FlushNow()
}

func (q *Queue[K, V]) drain() map[K]V {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	if len(q.pending) == 0 {
		return nil
	}
	batch := q.pending
	q.pending = make(map[K]V)
	return batch
}

func (q *Queue[K, V]) reset() {
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.pending = make(map[K]V)
}
