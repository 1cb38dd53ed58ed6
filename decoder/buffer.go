package decoder

import (
	"sync"
	"unsafe"

	"github.com/wippyai/r3d-bridge/errors"
)

// BufferAlignment is the output alignment the engine requires.
const BufferAlignment = 16

// AlignedBuffer is engine output memory. Its start is aligned to at least
// BufferAlignment and it does not move while a job owns it.
type AlignedBuffer struct {
	data  []byte
	free  func([]byte) error
	once  sync.Once
	freed error
}

// NewAlignedBuffer allocates size zeroed bytes.
func NewAlignedBuffer(size int) (*AlignedBuffer, error) {
	if size <= 0 {
		return nil, errors.AllocationFailed(errors.PhaseRuntime, size, BufferAlignment,
			errors.InvalidInput(errors.PhaseRuntime, "size must be positive"))
	}
	data, free, err := allocAligned(size)
	if err != nil {
		return nil, errors.AllocationFailed(errors.PhaseRuntime, size, BufferAlignment, err)
	}
	return &AlignedBuffer{data: data, free: free}, nil
}

// Bytes returns the buffer memory. It is nil after Free.
func (b *AlignedBuffer) Bytes() []byte { return b.data }

// Len returns the buffer size in bytes.
func (b *AlignedBuffer) Len() int { return len(b.data) }

// Free releases the memory. Later calls return the first result.
func (b *AlignedBuffer) Free() error {
	b.once.Do(func() {
		if b.free != nil {
			b.freed = b.free(b.data)
		}
		b.data = nil
	})
	return b.freed
}

// heapAligned over-allocates and slices at an aligned offset.
func heapAligned(size int) ([]byte, func([]byte) error, error) {
	raw := make([]byte, size+BufferAlignment)
	off := alignOffset(raw)
	return raw[off : off+size : off+size], nil, nil
}

func alignOffset(b []byte) int {
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	return int((BufferAlignment - addr%BufferAlignment) % BufferAlignment)
}
