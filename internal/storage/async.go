package storage

import (
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// BestStore is a synchronous best-score backend.
type BestStore interface {
	Get() (int, error)
	Set(score int) error
}

// Async makes writes to a BestStore fire-and-forget. Set records the value
// and returns immediately; a background goroutine writes the latest value.
// Intermediate values may be skipped. Write failures are logged.
type Async struct {
	inner  BestStore
	logger *log.Logger

	mu      sync.Mutex
	pending int
	dirty   bool
	closed  bool

	wake chan struct{}
	done chan struct{}
}

// NewAsync starts the writer goroutine. Call Close to flush and stop it.
func NewAsync(inner BestStore, logger *log.Logger) *Async {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	a := &Async{
		inner:  inner,
		logger: logger,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

// Get reads through to the wrapped store.
func (a *Async) Get() (int, error) {
	return a.inner.Get()
}

// Set queues score for writing. It never blocks on the backend.
func (a *Async) Set(score int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrClosed
	}
	a.pending = score
	a.dirty = true
	select {
	case a.wake <- struct{}{}:
	default:
	}
	return nil
}

// Close writes any queued value and stops the writer.
func (a *Async) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.wake)
	a.mu.Unlock()

	<-a.done
	return nil
}

func (a *Async) run() {
	defer close(a.done)
	for range a.wake {
		a.flush()
	}
}

func (a *Async) flush() {
	a.mu.Lock()
	if !a.dirty {
		a.mu.Unlock()
		return
	}
	v := a.pending
	a.dirty = false
	a.mu.Unlock()

	if err := a.inner.Set(v); err != nil {
		a.logger.Warn("could not persist best score", "score", v, "error", err)
	}
}
