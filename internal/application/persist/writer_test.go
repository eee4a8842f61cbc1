package persist

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	writes []int
}

func (r *recorder) write(_ context.Context, v int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, v)
	return nil
}

func (r *recorder) got() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.writes...)
}

func TestSchedule_CoalescesBurstIntoOneWrite(t *testing.T) {
	rec := &recorder{}
	w := NewWriter[int](context.Background(), "test", rec.write, Options{Delay: 20 * time.Millisecond})
	defer w.Close()

	for i := 1; i <= 5; i++ {
		w.Schedule(i)
	}

	time.Sleep(100 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	got := rec.got()
	if len(got) != 1 || got[0] != 5 {
		t.Fatalf("writes = %v, want [5]", got)
	}
}

func TestFlush_WritesPendingImmediately(t *testing.T) {
	rec := &recorder{}
	w := NewWriter[int](context.Background(), "test", rec.write, Options{Delay: time.Hour})
	defer w.Close()

	w.Schedule(7)
	if !w.Pending() {
		t.Fatalf("expected pending snapshot")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if got := rec.got(); len(got) != 1 || got[0] != 7 {
		t.Fatalf("writes = %v, want [7]", got)
	}
	if w.Pending() {
		t.Fatalf("writer should be idle after flush")
	}
}

func TestAtMostOneWriteInFlight_LatestSupersedes(t *testing.T) {
	var active, maxActive int32
	release := make(chan struct{})
	started := make(chan int, 10)

	var mu sync.Mutex
	var written []int

	write := func(ctx context.Context, v int) error {
		n := atomic.AddInt32(&active, 1)
		for {
			m := atomic.LoadInt32(&maxActive)
			if n <= m || atomic.CompareAndSwapInt32(&maxActive, m, n) {
				break
			}
		}
		started <- v
		if v == 1 {
			<-release
		}
		mu.Lock()
		written = append(written, v)
		mu.Unlock()
		atomic.AddInt32(&active, -1)
		return nil
	}

	w := NewWriter[int](context.Background(), "test", write, Options{Delay: 5 * time.Millisecond})
	defer w.Close()

	w.Schedule(1)
	select {
	case v := <-started:
		if v != 1 {
			t.Fatalf("first write = %d", v)
		}
	case <-time.After(time.Second):
		t.Fatalf("first write did not start")
	}

	// scheduled while 1 is in flight; 2 must be superseded by 3
	w.Schedule(2)
	time.Sleep(20 * time.Millisecond)
	w.Schedule(3)
	time.Sleep(20 * time.Millisecond)
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(written) != 2 || written[0] != 1 || written[1] != 3 {
		t.Fatalf("written = %v, want [1 3]", written)
	}
	if atomic.LoadInt32(&maxActive) != 1 {
		t.Fatalf("max concurrent writes = %d, want 1", maxActive)
	}
}

func TestCancel_DropsPending(t *testing.T) {
	rec := &recorder{}
	w := NewWriter[int](context.Background(), "test", rec.write, Options{Delay: 20 * time.Millisecond})
	defer w.Close()

	w.Schedule(1)
	w.Cancel()
	time.Sleep(60 * time.Millisecond)

	if got := rec.got(); len(got) != 0 {
		t.Fatalf("writes = %v, want none", got)
	}
}

type countingObserver struct {
	ok, failed int32
}

func (o *countingObserver) RemoteWrite(_ string, _ time.Duration, err error) {
	if err != nil {
		atomic.AddInt32(&o.failed, 1)
		return
	}
	atomic.AddInt32(&o.ok, 1)
}

func TestWriteError_IsObservedAndSwallowed(t *testing.T) {
	obs := &countingObserver{}
	w := NewWriter[int](context.Background(), "test", func(context.Context, int) error {
		return errors.New("unavailable")
	}, Options{Delay: time.Millisecond, Observer: obs})
	defer w.Close()

	w.Schedule(1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := w.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if atomic.LoadInt32(&obs.failed) != 1 || atomic.LoadInt32(&obs.ok) != 0 {
		t.Fatalf("observer ok=%d failed=%d", obs.ok, obs.failed)
	}
}

func TestClose_RejectsFlush(t *testing.T) {
	w := NewWriter[int](context.Background(), "test", (&recorder{}).write, Options{})
	w.Close()
	if err := w.Flush(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}
