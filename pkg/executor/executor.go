// Package executor provides dispatch targets for observer notifications.
//
// Every observer registered with the adapter state broker or a ranging
// session names the executor its callbacks run on. Notifications handed to
// an executor are fire-and-forget: a failed hand-off is dropped, never
// retried.
package executor

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Execute after the executor has been closed.
var ErrClosed = errors.New("executor closed")

// Executor runs a function on its dispatch target. Implementations must be
// safe for concurrent use. Execute only enqueues the work; it must not
// block on the work itself.
type Executor interface {
	Execute(fn func()) error
}

// Func adapts a plain function to the Executor interface.
type Func func(fn func()) error

// Execute calls f with fn.
func (f Func) Execute(fn func()) error {
	return f(fn)
}

// Direct runs work inline on the calling goroutine. Intended for tests and
// simple tools; observers that re-enter the broker must not use it.
type Direct struct{}

// Execute runs fn immediately.
func (Direct) Execute(fn func()) error {
	fn()
	return nil
}

// Compile-time interface satisfaction checks.
var (
	_ Executor = Func(nil)
	_ Executor = Direct{}
)

// Serial executes work on a single background goroutine in FIFO order.
// The queue is unbounded; there is no backpressure.
type Serial struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []func()
	closed  bool
	done    chan struct{}
}

// NewSerial creates a serial executor and starts its worker goroutine.
func NewSerial() *Serial {
	s := &Serial{done: make(chan struct{})}
	s.cond = sync.NewCond(&s.mu)
	go s.run()
	return s
}

// Execute enqueues fn. Returns ErrClosed if the executor was closed.
func (s *Serial) Execute(fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	s.pending = append(s.pending, fn)
	s.cond.Signal()
	return nil
}

// Close stops the executor after draining already-queued work and waits for
// the worker goroutine to exit. Safe to call multiple times.
func (s *Serial) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		s.cond.Broadcast()
	}
	s.mu.Unlock()
	<-s.done
}

// Len returns the number of queued functions not yet run.
func (s *Serial) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Serial) run() {
	defer close(s.done)

	for {
		s.mu.Lock()
		for len(s.pending) == 0 && !s.closed {
			s.cond.Wait()
		}
		if len(s.pending) == 0 {
			s.mu.Unlock()
			return
		}
		fn := s.pending[0]
		s.pending = s.pending[1:]
		s.mu.Unlock()

		fn()
	}
}

var _ Executor = (*Serial)(nil)
