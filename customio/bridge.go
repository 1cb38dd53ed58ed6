package customio

import (
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/r3d-bridge/errors"
)

// Runtime is the engine side of an installation: it points the engine's
// file access at the entry points, tagged with an instance value that every
// entry point call carries back.
type Runtime interface {
	SetIOInterface(instance uintptr) bool
	ResetIOInterface()
}

type installation struct {
	backend  Backend
	rt       Runtime
	instance uintptr
}

var (
	installMu  sync.Mutex
	active     atomic.Pointer[installation]
	generation uintptr
)

// Install makes b the process-wide backend and, when rt is non-nil, routes
// the engine's file access through it. A previous installation is reset
// first. Install must not be called from within a backend method.
func Install(b Backend, rt Runtime) error {
	if isNil(b) {
		return errors.InvalidInput(errors.PhaseIO, "nil backend")
	}

	installMu.Lock()
	defer installMu.Unlock()

	resetLocked()

	generation++
	inst := &installation{backend: b, rt: rt, instance: generation}
	active.Store(inst)

	if rt != nil && !rt.SetIOInterface(inst.instance) {
		active.Store(nil)
		return errors.New(errors.PhaseIO, errors.KindUnsupported).
			Detail("engine refused the I/O interface").
			Build()
	}

	Logger().Info("io backend installed",
		zap.String("backend", backendName(b)),
		zap.Uint64("instance", uint64(inst.instance)))
	return nil
}

// Reset restores the engine's default file access. Calls already inside an
// entry point finish against the old backend; later calls fail.
func Reset() {
	installMu.Lock()
	defer installMu.Unlock()
	resetLocked()
}

func resetLocked() {
	prev := active.Swap(nil)
	if prev == nil {
		return
	}
	if prev.rt != nil {
		prev.rt.ResetIOInterface()
	}
	Logger().Info("io backend reset", zap.Uint64("instance", uint64(prev.instance)))
}

// Active returns the installed backend and its instance value.
func Active() (Backend, uintptr, bool) {
	inst := active.Load()
	if inst == nil {
		return nil, 0, false
	}
	return inst.backend, inst.instance, true
}

func current(instance uintptr) (Backend, bool) {
	if instance == 0 {
		return nil, false
	}
	inst := active.Load()
	if inst == nil || inst.instance != instance {
		return nil, false
	}
	return inst.backend, true
}

// isNil also catches typed nils such as (*Streams)(nil), which would only
// fail later on an engine thread.
func isNil(b Backend) bool {
	if b == nil {
		return true
	}
	v := reflect.ValueOf(b)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func backendName(b Backend) string {
	switch b.(type) {
	case *Filesystem:
		return "filesystem"
	case *Streams:
		return "streams"
	default:
		return "custom"
	}
}
