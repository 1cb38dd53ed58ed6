package future

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/r3d-bridge/errors"
)

// StatusMapper converts an engine status code to an error, returning nil on
// success. phase tells the mapper whether the code came back synchronously
// from submission or asynchronously from the completion callback.
type StatusMapper func(phase errors.Phase, code int32) error

type resolver interface {
	complete(code int32)
}

// Registry routes completion tokens to pending cells. Tokens are plain
// integers; the engine carries them in the job's private data field and
// never sees a Go pointer.
type Registry struct {
	pending map[uintptr]resolver
	next    uintptr
	mu      sync.Mutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pending: make(map[uintptr]resolver)}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by Deliver.
func Default() *Registry {
	return defaultRegistry
}

func (r *Registry) register(res resolver) uintptr {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	if r.next == 0 {
		r.next++
	}
	token := r.next
	r.pending[token] = res
	return token
}

func (r *Registry) withdraw(token uintptr) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pending[token]
	delete(r.pending, token)
	return ok
}

// Deliver resolves the cell registered under token with code. It is the body
// of the completion trampoline and runs on engine threads. Unknown, zero or
// already delivered tokens are logged and ignored.
func (r *Registry) Deliver(token uintptr, code int32) bool {
	if token == 0 {
		Logger().Error("completion without private data")
		return false
	}

	r.mu.Lock()
	res, ok := r.pending[token]
	delete(r.pending, token)
	r.mu.Unlock()

	if !ok {
		Logger().Error("completion for unknown token",
			zap.Uint64("token", uint64(token)),
			zap.Int32("code", code))
		return false
	}
	res.complete(code)
	return true
}

// Pending returns the number of submitted jobs still awaiting completion.
func (r *Registry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Deliver routes a completion through the default registry.
func Deliver(token uintptr, code int32) bool {
	return defaultRegistry.Deliver(token, code)
}
