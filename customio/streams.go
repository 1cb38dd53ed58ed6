package customio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/r3d-bridge/resource"
	"github.com/wippyai/r3d-bridge/status"
)

// stream is shared by every handle opened on the same name. Reads serialize
// on the stream's own lock.
type stream struct {
	r    io.ReadSeeker
	name string
	size uint64
	mu   sync.Mutex
}

func (s *stream) readAt(buf []byte, offset uint64) bool {
	n := uint64(len(buf))
	if n > s.size || offset > s.size-n {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.r.Seek(int64(offset), io.SeekStart); err != nil {
		return false
	}
	_, err := io.ReadFull(s.r, buf)
	return err == nil
}

// Streams serves read-only engine access from caller-registered sources,
// such as prefetched buffers or remote objects wrapped in an io.ReadSeeker.
type Streams struct {
	byName  map[string]*stream
	handles *resource.Table[*stream]
	closers []io.Closer
	prefix  string
	mu      sync.RWMutex
}

// StreamsOption configures a Streams backend.
type StreamsOption func(*Streams)

// WithPrefix restricts the backend to paths starting with prefix. Other paths
// are declined with HandleFallback instead of failing with HandleError.
func WithPrefix(prefix string) StreamsOption {
	return func(s *Streams) {
		s.prefix = prefix
	}
}

// NewStreams creates a backend with no registered streams.
func NewStreams(opts ...StreamsOption) *Streams {
	s := &Streams{
		byName:  make(map[string]*stream),
		handles: resource.NewTable[*stream](),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register makes r available under name. size must be the exact number of
// readable bytes. Registering an existing name replaces it for future opens;
// handles already open keep reading the old source.
func (s *Streams) Register(name string, r io.ReadSeeker, size uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byName[name] = &stream{r: r, name: name, size: size}
}

// RegisterBytes registers an in-memory buffer under name.
func (s *Streams) RegisterBytes(name string, data []byte) {
	s.Register(name, bytes.NewReader(data), uint64(len(data)))
}

// RegisterFile registers the file at path under name. The file stays open
// until Shutdown.
func (s *Streams) RegisterFile(name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("register stream %q: %w", name, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("register stream %q: %w", name, err)
	}
	s.Register(name, f, uint64(info.Size()))

	s.mu.Lock()
	s.closers = append(s.closers, f)
	s.mu.Unlock()
	return nil
}

// Unregister removes name for future opens.
func (s *Streams) Unregister(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byName[name]
	delete(s.byName, name)
	return ok
}

// Names returns the registered stream names.
func (s *Streams) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.byName))
	for n := range s.byName {
		names = append(names, n)
	}
	return names
}

// Subscribe observes handle creation and retirement.
func (s *Streams) Subscribe(o resource.Observer) (unsubscribe func()) {
	return s.handles.Subscribe(o)
}

// OpenCount returns the number of live handles.
func (s *Streams) OpenCount() int {
	return s.handles.Len()
}

func (s *Streams) Open(path string, access status.FileAccess) Handle {
	if s.prefix != "" && !strings.HasPrefix(path, s.prefix) {
		return HandleFallback
	}
	if access != status.AccessRead {
		return HandleFallback
	}

	s.mu.RLock()
	st, ok := s.byName[path]
	s.mu.RUnlock()
	if !ok {
		Logger().Debug("stream not registered", zap.String("name", path))
		return HandleError
	}

	h, err := s.handles.Insert(st)
	if err != nil {
		return HandleError
	}
	return fromTable(h)
}

func (s *Streams) lookup(h Handle) (*stream, bool) {
	th, ok := h.table()
	if !ok {
		return nil, false
	}
	return s.handles.Get(th)
}

func (s *Streams) Filesize(h Handle) uint64 {
	st, ok := s.lookup(h)
	if !ok {
		return 0
	}
	return st.size
}

func (s *Streams) Close(h Handle) {
	th, ok := h.table()
	if !ok {
		return
	}
	s.handles.Remove(th)
}

func (s *Streams) Read(buf []byte, offset uint64, h Handle) bool {
	st, ok := s.lookup(h)
	if !ok {
		return false
	}
	return st.readAt(buf, offset)
}

// Write always fails; streams are read-only.
func (s *Streams) Write([]byte, Handle) bool {
	return false
}

// CreatePath always fails; streams have no directories.
func (s *Streams) CreatePath(string) bool {
	return false
}

// Shutdown retires all handles and closes files added with RegisterFile.
func (s *Streams) Shutdown() error {
	_ = s.handles.Close()

	s.mu.Lock()
	closers := s.closers
	s.closers = nil
	s.mu.Unlock()

	var firstErr error
	for _, c := range closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
