package fedauth

import (
	"context"
	"sync"
)

// Dispatcher is the completion context callbacks are delivered on.
type Dispatcher interface {
	Dispatch(fn func())
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc func(fn func())

func (f DispatcherFunc) Dispatch(fn func()) { f(fn) }

// Inline runs callbacks on the calling goroutine. Useful in tests and for
// blocking adapters that already serialize on a channel.
var Inline Dispatcher = DispatcherFunc(func(fn func()) { fn() })

// SerialQueue runs dispatched functions one at a time in FIFO order on a
// single background goroutine. Dispatch never blocks.
type SerialQueue struct {
	mu      sync.Mutex
	pending []func()
	running bool
}

// NewSerialQueue returns an empty queue. The drain goroutine only exists
// while work is pending.
func NewSerialQueue() *SerialQueue {
	return &SerialQueue{}
}

// Dispatch enqueues fn.
func (q *SerialQueue) Dispatch(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	if q.running {
		q.mu.Unlock()
		return
	}
	q.running = true
	q.mu.Unlock()

	go q.drain()
}

func (q *SerialQueue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		fn := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		fn()
	}
}

var mainQueue = sync.OnceValue(func() *SerialQueue { return NewSerialQueue() })

// MainQueue is the process-wide default completion context.
func MainQueue() Dispatcher { return mainQueue() }

func queueOrMain(d Dispatcher) Dispatcher {
	if d == nil {
		return MainQueue()
	}
	return d
}

// Await runs a callback-style operation and blocks until its handler fires
// or ctx is done. Late or duplicate handler calls are dropped.
func Await[T any](ctx context.Context, start func(handler func(T, error))) (T, error) {
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	start(func(v T, err error) {
		select {
		case ch <- result{v: v, err: err}:
		default:
		}
	})

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
