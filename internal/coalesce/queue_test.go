package coalesce

import (
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu      sync.Mutex
	batches []map[string]int
	done    chan struct{}
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{}, 16)}
}

func (r *recorder) flush(batch map[string]int) {
	r.mu.Lock()
	r.batches = append(r.batches, batch)
	r.mu.Unlock()
	r.done <- struct{}{}
}

func (r *recorder) snapshot() []map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]map[string]int, len(r.batches))
	copy(out, r.batches)
	return out
}

func TestQueue_KeepsLatestValuePerKey(t *testing.T) {
	rec := newRecorder()
	q := New(time.Hour, rec.flush)

	q.Schedule("i1", 2)
	q.Schedule("i1", 3)
	q.Schedule("i1", 4)
	if q.Pending() != 1 {
		t.Fatalf("Pending = %d, want 1", q.Pending())
	}

	q.FlushNow()
	got := rec.snapshot()
	if len(got) != 1 || len(got[0]) != 1 || got[0]["i1"] != 4 {
		t.Fatalf("batches = %#v, want one batch {i1: 4}", got)
	}
	if q.Pending() != 0 {
		t.Fatalf("Pending after flush = %d, want 0", q.Pending())
	}
}

func TestQueue_SeparateKeysShareOneFlush(t *testing.T) {
	rec := newRecorder()
	q := New(time.Hour, rec.flush)

	q.Schedule("a", 1)
	q.Schedule("b", 5)
	q.Schedule("a", 2)
	q.FlushNow()

	got := rec.snapshot()
	if len(got) != 1 || got[0]["a"] != 2 || got[0]["b"] != 5 {
		t.Fatalf("batches = %#v, want {a: 2, b: 5}", got)
	}
}

func TestQueue_FlushNowWithNothingPending(t *testing.T) {
	rec := newRecorder()
	q := New(time.Hour, rec.flush)
	q.FlushNow()
	if len(rec.snapshot()) != 0 {
		t.Fatalf("FlushNow on empty queue invoked flush")
	}
}

func TestQueue_TimerFiresAfterQuietInterval(t *testing.T) {
	rec := newRecorder()
	q := New(20*time.Millisecond, rec.flush)

	q.Schedule("a", 1)
	time.Sleep(5 * time.Millisecond)
	q.Schedule("a", 7)

	select {
	case <-rec.done:
	case <-time.After(2 * time.Second):
		t.Fatalf("flush did not fire")
	}
	got := rec.snapshot()
	if len(got) != 1 || got[0]["a"] != 7 {
		t.Fatalf("batches = %#v, want single {a: 7}", got)
	}
}

func TestQueue_CancelAndDiscard(t *testing.T) {
	rec := newRecorder()
	q := New(time.Hour, rec.flush)

	q.Schedule("a", 1)
	q.Schedule("b", 2)
	q.Cancel("a")
	q.FlushNow()
	got := rec.snapshot()
	if len(got) != 1 || len(got[0]) != 1 || got[0]["b"] != 2 {
		t.Fatalf("batches = %#v, want only b", got)
	}

	q.Schedule("c", 3)
	q.Discard()
	q.FlushNow()
	if len(rec.snapshot()) != 1 {
		t.Fatalf("Discard did not drop pending values")
	}
}

func TestQueue_StopIgnoresLaterSchedules(t *testing.T) {
	rec := newRecorder()
	q := New(time.Millisecond, rec.flush)

	q.Schedule("a", 1)
	q.Stop()
	q.Schedule("b", 2)
	time.Sleep(20 * time.Millisecond)
	q.FlushNow()

	if got := rec.snapshot(); len(got) != 0 {
		t.Fatalf("batches after Stop = %#v, want none", got)
	}
}
