package future

import (
	"context"

	"go.uber.org/zap"

	"github.com/wippyai/r3d-bridge/errors"
)

// Submission describes one unit of work handed to the engine.
type Submission[T any] struct {
	// Payload is owned by the engine until the future resolves.
	Payload T
	// Map converts status codes to errors.
	Map StatusMapper
	// Submit performs the foreign call with the completion token and returns
	// the engine's immediate status code.
	Submit func(token uintptr) int32
	// Settle, if set, runs on the completing goroutine before the result is
	// published, and on synchronous rejection.
	Settle func(T)
}

// Future is the awaitable side of a submitted job.
type Future[T any] struct {
	cell  *Cell[T]
	token uintptr
}

type pendingCell[T any] struct {
	cell *Cell[T]
	mapf StatusMapper
}

func (p *pendingCell[T]) complete(code int32) {
	p.cell.Resolve(p.mapf(errors.PhaseComplete, code))
}

// Submit registers s with r and hands it to the engine. A non-success code
// from s.Submit is a synchronous rejection: no future is returned and the
// completion callback will not fire.
func Submit[T any](r *Registry, s Submission[T]) (*Future[T], error) {
	cell := NewCell(s.Payload, s.Settle)
	token := r.register(&pendingCell[T]{cell: cell, mapf: s.Map})

	code := s.Submit(token)
	if err := s.Map(errors.PhaseSubmit, code); err != nil {
		if !r.withdraw(token) {
			// The engine reported failure but still completed the job.
			Logger().Error("rejected submission already completed",
				zap.Uint64("token", uint64(token)),
				zap.Int32("code", code))
			return nil, err
		}
		if s.Settle != nil {
			s.Settle(s.Payload)
		}
		return nil, err
	}

	return &Future[T]{cell: cell, token: token}, nil
}

// Token returns the completion token carried by the engine for this job.
func (f *Future[T]) Token() uintptr {
	return f.token
}

// Done reports whether the job has completed. It never blocks.
func (f *Future[T]) Done() bool {
	return f.cell.Done()
}

// Poll registers w to be woken on completion, replacing any earlier waker,
// and returns the result once the job has completed.
func (f *Future[T]) Poll(w Waker) (Result[T], bool) {
	return f.cell.Poll(w)
}

// Wait blocks until the job completes or ctx is done. Abandoning a future
// on cancellation is safe; the late completion is absorbed by the cell.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	ch := make(chan struct{}, 1)
	w := WakerFunc(func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	})

	for {
		if r, ok := f.Poll(w); ok {
			return r.Value, r.Err
		}
		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-ch:
		}
	}
}

// Results returns a channel that receives the result once and is then closed.
func (f *Future[T]) Results() <-chan Result[T] {
	out := make(chan Result[T], 1)
	var poll func()
	poll = func() {
		if r, ok := f.Poll(WakerFunc(poll)); ok {
			out <- r
			close(out)
		}
	}
	poll()
	return out
}
