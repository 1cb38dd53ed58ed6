//go:build !(darwin || linux)

package sdk

import (
	"runtime"

	"github.com/wippyai/r3d-bridge/errors"
)

// Native is unavailable on this platform.
type Native struct{ Engine }

// NativeOption configures Open.
type NativeOption func()

// WithLibrary is accepted for API compatibility.
func WithLibrary(string) NativeOption { return func() {} }

// WithCompletion is accepted for API compatibility.
func WithCompletion(CompletionFunc) NativeOption { return func() {} }

// Open always fails on this platform.
func Open(...NativeOption) (*Native, error) {
	return nil, errors.Unsupported(errors.PhaseInit, "native engine on "+runtime.GOOS)
}
