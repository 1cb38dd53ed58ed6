package decoder

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/r3d-bridge/customio"
	"github.com/wippyai/r3d-bridge/errors"
	"github.com/wippyai/r3d-bridge/future"
	"github.com/wippyai/r3d-bridge/sdk"
	"github.com/wippyai/r3d-bridge/status"
)

// SDK is an initialized engine. Clips, decoders and jobs are created from it.
type SDK struct {
	engine   sdk.Engine
	registry *future.Registry
	mu       sync.Mutex
	closed   bool
}

// Option configures Initialize.
type Option func(*SDK)

// WithRegistry routes completions through r. The engine's completion
// function must deliver to the same registry.
func WithRegistry(r *future.Registry) Option {
	return func(s *SDK) { s.registry = r }
}

// Initialize loads the engine libraries from libraryPath with flags.
func Initialize(engine sdk.Engine, libraryPath string, flags status.InitializeFlags, opts ...Option) (*SDK, error) {
	if engine == nil {
		return nil, errors.InvalidInput(errors.PhaseInit, "nil engine")
	}
	if err := flags.Validate(); err != nil {
		return nil, errors.Wrap(errors.PhaseInit, errors.KindInvalidInput, err, "initialize flags")
	}

	s := &SDK{engine: engine, registry: future.Default()}
	for _, opt := range opts {
		opt(s)
	}

	if st := engine.Initialize(libraryPath, flags); !st.OK() {
		err := errors.FromInitializeStatus(st)
		err.Path = []string{libraryPath}
		return nil, err
	}
	Logger().Info("engine initialized",
		zap.String("library", libraryPath),
		zap.Stringer("flags", flags),
		zap.String("version", engine.Version()))
	return s, nil
}

// Engine returns the underlying engine.
func (s *SDK) Engine() sdk.Engine { return s.engine }

// Version returns the engine version string.
func (s *SDK) Version() string { return s.engine.Version() }

// IdentifyFile reports what kind of clip path is without opening it.
func (s *SDK) IdentifyFile(path string) status.FileID {
	return s.engine.IdentifyFile(path)
}

// InstallIO routes the engine's file access through b.
func (s *SDK) InstallIO(b customio.Backend) error {
	if err := s.check(); err != nil {
		return err
	}
	return customio.Install(b, s.engine)
}

// ResetIO restores the engine's own file access.
func (s *SDK) ResetIO() {
	customio.Reset()
}

// Close finalizes the engine. Objects created from s must be closed first.
func (s *SDK) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if _, _, ok := customio.Active(); ok {
		customio.Reset()
	}
	s.engine.Finalize()
	Logger().Info("engine finalized")
	return nil
}

func (s *SDK) check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.Closed(errors.PhaseRuntime, "sdk")
	}
	return nil
}
