package future

import (
	"sync"
	"sync/atomic"

	"github.com/wippyai/r3d-bridge/errors"
)

// Waker is notified when a cell resolves.
type Waker interface {
	Wake()
}

// WakerFunc adapts a function to the Waker interface.
type WakerFunc func()

func (f WakerFunc) Wake() { f() }

// Result is the outcome of a resolved cell. Value is the submitted payload,
// returned on failure as well so the caller can reuse or release it.
type Result[T any] struct {
	Value T
	Err   error
}

// Cell holds a payload while the engine works on it and transitions from
// pending to resolved exactly once.
type Cell[T any] struct {
	payload  T
	err      error
	waker    Waker
	settle   func(T)
	mu       sync.Mutex
	done     atomic.Bool
	resolved bool
	taken    bool
}

// NewCell returns a pending cell holding payload. settle, if non-nil, runs on
// the resolving goroutine before the result becomes observable.
func NewCell[T any](payload T, settle func(T)) *Cell[T] {
	return &Cell[T]{payload: payload, settle: settle}
}

// Resolve publishes err as the outcome and wakes the registered waker.
// A second call panics.
func (c *Cell[T]) Resolve(err error) {
	c.mu.Lock()
	if c.resolved {
		c.mu.Unlock()
		panic("future: cell resolved twice")
	}
	c.resolved = true
	if c.settle != nil {
		c.settle(c.payload)
	}
	c.err = err
	// done is stored under the lock so a concurrent Poll either sees it or
	// has already registered the waker read below.
	c.done.Store(true)
	w := c.waker
	c.waker = nil
	c.mu.Unlock()

	if w != nil {
		w.Wake()
	}
}

// Done reports whether the cell has resolved. It never blocks.
func (c *Cell[T]) Done() bool {
	return c.done.Load()
}

// Poll registers w, replacing any earlier registration, then reports the
// result if the cell has resolved. The result can be taken once; later polls
// return ErrResultTaken.
func (c *Cell[T]) Poll(w Waker) (Result[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.done.Load() {
		c.waker = w
		return Result[T]{}, false
	}
	if c.taken {
		return Result[T]{Err: errors.New(errors.PhaseRuntime, errors.KindResultTaken).Detail("result already taken").Build()}, true
	}
	c.taken = true

	r := Result[T]{Value: c.payload, Err: c.err}
	var zero T
	c.payload = zero
	return r, true
}
