// internal/application/persist/writer.go
package persist

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

var ErrClosed = errors.New("persist: writer closed")

// Defaults mirror the storefront's sync behavior.
const (
	DefaultDelay   = 300 * time.Millisecond
	DefaultTimeout = 10 * time.Second
)

// WriteFunc persists one whole snapshot.
type WriteFunc[T any] func(ctx context.Context, v T) error

// Observer receives one call per completed remote write.
type Observer interface {
	RemoteWrite(store string, elapsed time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) RemoteWrite(string, time.Duration, error) {}

// Options configures a Writer. Zero values fall back to defaults.
type Options struct {
	Delay    time.Duration
	Timeout  time.Duration
	Observer Observer
}

// Writer is a per-container write queue:
//   - Schedule (re)starts a debounce timer; only the latest snapshot is kept
//   - at most one write is in flight
//   - a snapshot scheduled during an in-flight write supersedes older pending ones
//     and is written after the in-flight write completes
//
// Each write runs with its own timeout derived from the writer's lifetime context;
// Close cancels that context.
type Writer[T any] struct {
	name  string
	write WriteFunc[T]
	delay time.Duration
	tmo   time.Duration
	obs   Observer

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	pending  *T
	due      bool // pending snapshot's debounce already elapsed
	gen      uint64
	timer    *time.Timer
	inFlight bool
	closed   bool
	changed  chan struct{} // closed and replaced on every state change
}

// NewWriter creates a writer bound to parent's lifetime.
func NewWriter[T any](parent context.Context, name string, write WriteFunc[T], opts Options) *Writer[T] {
	if parent == nil {
		parent = context.Background()
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	ctx, cancel := context.WithCancel(parent)
	return &Writer[T]{
		name:    name,
		write:   write,
		delay:   opts.Delay,
		tmo:     opts.Timeout,
		obs:     opts.Observer,
		ctx:     ctx,
		cancel:  cancel,
		changed: make(chan struct{}),
	}
}

// Schedule queues v to be written after the debounce delay.
func (w *Writer[T]) Schedule(v T) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	w.pending = &v
	w.due = false
	w.gen++
	if w.timer != nil {
		w.timer.Stop()
	}
	gen := w.gen
	w.timer = time.AfterFunc(w.delay, func() { w.fire(gen) })
}

// Pending reports whether a snapshot is waiting or being written.
func (w *Writer[T]) Pending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending != nil || w.inFlight
}

// Cancel drops the pending snapshot (an in-flight write still completes).
func (w *Writer[T]) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dropPendingLocked()
	w.signalLocked()
}

// Flush writes the pending snapshot now (skipping the rest of the debounce window)
// and waits until the queue is idle or ctx is done.
func (w *Writer[T]) Flush(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if w.pending != nil {
		if w.timer != nil {
			w.timer.Stop()
			w.timer = nil
		}
		w.gen++
		w.due = true
		if !w.inFlight {
			w.startLocked()
		}
	}
	w.mu.Unlock()

	for {
		w.mu.Lock()
		idle := w.pending == nil && !w.inFlight
		ch := w.changed
		w.mu.Unlock()
		if idle {
			return nil
		}
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close drops pending work, aborts an in-flight write and stops the writer.
func (w *Writer[T]) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.dropPendingLocked()
	w.signalLocked()
	w.mu.Unlock()
	w.cancel()
}

func (w *Writer[T]) fire(gen uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || gen != w.gen || w.pending == nil {
		return
	}
	w.timer = nil
	w.due = true
	if w.inFlight {
		// picked up when the in-flight write completes
		return
	}
	w.startLocked()
}

// startLocked hands the pending snapshot to a goroutine. Caller holds mu.
func (w *Writer[T]) startLocked() {
	v := *w.pending
	w.pending = nil
	w.due = false
	w.inFlight = true
	w.signalLocked()
	go w.run(v)
}

func (w *Writer[T]) run(v T) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(w.ctx, w.tmo)
	err := w.write(ctx, v)
	cancel()

	elapsed := time.Since(start)
	w.obs.RemoteWrite(w.name, elapsed, err)
	if err != nil {
		log.Printf("[persist.%s] remote write failed elapsed=%s err=%v", w.name, elapsed, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = false
	if !w.closed && w.pending != nil && w.due {
		w.startLocked()
		return
	}
	w.signalLocked()
}

func (w *Writer[T]) dropPendingLocked() {
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.pending = nil
	w.due = false
	w.gen++
}

func (w *Writer[T]) signalLocked() {
	close(w.changed)
	w.changed = make(chan struct{})
}
