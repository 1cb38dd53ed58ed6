package customio

import (
	"math"
	"unsafe"

	"github.com/wippyai/r3d-bridge/status"
)

// The Entry functions are what the engine calls. Arguments arrive raw from
// foreign code; nil pointers, unknown access modes and stale instance values
// degrade to the failure result of each operation.

// EntryOpen opens the NUL-terminated path.
func EntryOpen(instance uintptr, path unsafe.Pointer, access int32) Handle {
	if path == nil || instance == 0 {
		return HandleFallback
	}
	a := status.FileAccess(access)
	if !a.Valid() {
		return HandleFallback
	}
	b, ok := current(instance)
	if !ok {
		return HandleFallback
	}
	return b.Open(cString(path), a)
}

// EntryFilesize reports the size behind h.
func EntryFilesize(instance uintptr, h Handle) uint64 {
	if h == HandleError || instance == 0 {
		return 0
	}
	b, ok := current(instance)
	if !ok {
		return 0
	}
	return b.Filesize(h)
}

// EntryClose retires h.
func EntryClose(instance uintptr, h Handle) {
	if h == HandleError || instance == 0 {
		return
	}
	b, ok := current(instance)
	if !ok {
		return
	}
	b.Close(h)
}

// EntryRead fills size bytes at buf from offset.
func EntryRead(instance uintptr, buf unsafe.Pointer, size, offset uint64, h Handle) bool {
	if h == HandleError || instance == 0 || buf == nil || size > math.MaxInt {
		return false
	}
	b, ok := current(instance)
	if !ok {
		return false
	}
	return b.Read(unsafe.Slice((*byte)(buf), int(size)), offset, h)
}

// EntryWrite appends size bytes from buf.
func EntryWrite(instance uintptr, buf unsafe.Pointer, size uint64, h Handle) bool {
	if h == HandleError || instance == 0 || buf == nil || size > math.MaxInt {
		return false
	}
	b, ok := current(instance)
	if !ok {
		return false
	}
	return b.Write(unsafe.Slice((*byte)(buf), int(size)), h)
}

// EntryCreatePath creates the NUL-terminated directory path.
func EntryCreatePath(instance uintptr, path unsafe.Pointer) bool {
	if path == nil || instance == 0 {
		return false
	}
	b, ok := current(instance)
	if !ok {
		return false
	}
	return b.CreatePath(cString(path))
}
