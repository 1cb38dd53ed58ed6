//go:build windows

package customio

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

func cString(p unsafe.Pointer) string {
	return windows.BytePtrToString((*byte)(p))
}
