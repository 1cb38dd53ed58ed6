//go:build unix

package customio

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

func cString(p unsafe.Pointer) string {
	return unix.BytePtrToString((*byte)(p))
}
