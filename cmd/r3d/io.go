package main

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/r3d-bridge/config"
	"github.com/wippyai/r3d-bridge/customio"
	"github.com/wippyai/r3d-bridge/decoder"
)

// ioSession is the I/O backend installed for one command.
type ioSession struct {
	sdk     *decoder.SDK
	backend customio.Backend
	streams *customio.Streams
	prefix  string
}

// installBackend builds the configured backend, or the one named by
// override, and routes the engine's file access through it.
func installBackend(s *decoder.SDK, cfg *config.Config, override string) (*ioSession, error) {
	local := *cfg
	switch override = strings.ToLower(strings.TrimSpace(override)); override {
	case "":
	case "none", "filesystem", "streams":
		local.IO.Backend = override
	default:
		return nil, fmt.Errorf("unknown io backend %q (want none, filesystem or streams)", override)
	}

	b, err := local.Backend()
	if err != nil {
		return nil, err
	}
	io := &ioSession{sdk: s, backend: b, prefix: local.IO.StreamPrefix}
	if b == nil {
		return io, nil
	}
	io.streams, _ = b.(*customio.Streams)
	if err := s.InstallIO(b); err != nil {
		io.shutdown()
		return nil, err
	}
	return io, nil
}

// clipPath returns the path to hand the engine for arg. With the streams
// backend an unregistered local file is registered under the stream prefix.
func (io *ioSession) clipPath(arg string) (string, error) {
	if io.streams == nil || strings.HasPrefix(arg, io.prefix) {
		return arg, nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("resolve clip path: %w", err)
	}
	name := io.prefix + filepath.Base(abs)
	if slices.Contains(io.streams.Names(), name) {
		return name, nil
	}
	if err := io.streams.RegisterFile(name, abs); err != nil {
		return "", err
	}
	return name, nil
}

func (io *ioSession) Close() {
	if io.backend == nil {
		return
	}
	io.sdk.ResetIO()
	io.shutdown()
}

func (io *ioSession) shutdown() {
	sd, ok := io.backend.(interface{ Shutdown() error })
	if !ok {
		return
	}
	if err := sd.Shutdown(); err != nil {
		customio.Logger().Warn("shutdown io backend", zap.Error(err))
	}
}
