//go:build unix

package decoder

import "golang.org/x/sys/unix"

// allocAligned maps anonymous, page-aligned memory outside the Go heap.
func allocAligned(size int) ([]byte, func([]byte) error, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return heapAligned(size)
	}
	return data, unix.Munmap, nil
}
