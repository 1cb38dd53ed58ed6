//go:build !unix

package decoder

func allocAligned(size int) ([]byte, func([]byte) error, error) {
	return heapAligned(size)
}
