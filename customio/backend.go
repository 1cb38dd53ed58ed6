package customio

import (
	"github.com/wippyai/r3d-bridge/resource"
	"github.com/wippyai/r3d-bridge/status"
)

// Handle is the opaque value returned to the engine from Open.
type Handle uintptr

const (
	// HandleError tells the engine the path is recognized but cannot be
	// served; the surrounding operation aborts.
	HandleError Handle = 0
	// HandleFallback tells the engine this backend does not claim the path;
	// the engine tries its own file access instead.
	HandleFallback Handle = ^Handle(0)
)

// Valid reports whether h is neither sentinel.
func (h Handle) Valid() bool {
	return h != HandleError && h != HandleFallback
}

func (h Handle) String() string {
	switch h {
	case HandleError:
		return "error"
	case HandleFallback:
		return "fallback"
	default:
		return "handle"
	}
}

func fromTable(h resource.Handle) Handle {
	return Handle(h)
}

func (h Handle) table() (resource.Handle, bool) {
	if !h.Valid() {
		return 0, false
	}
	return resource.Handle(h), true
}

// Backend serves file operations on behalf of the engine. All methods are
// called synchronously from engine threads, possibly concurrently, and must
// not block on anything the consumer of a decode future controls.
type Backend interface {
	// Open returns a valid handle, HandleError or HandleFallback.
	Open(path string, access status.FileAccess) Handle
	// Filesize returns the current length, or 0 when unknown.
	Filesize(h Handle) uint64
	// Close retires h. Unknown handles are ignored.
	Close(h Handle)
	// Read fills buf entirely from absolute offset, or reports false.
	Read(buf []byte, offset uint64, h Handle) bool
	// Write appends all of data, or reports false.
	Write(data []byte, h Handle) bool
	// CreatePath creates path and its parents. An existing directory is success.
	CreatePath(path string) bool
}
