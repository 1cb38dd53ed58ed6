package customio

import (
	"errors"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/r3d-bridge/resource"
	"github.com/wippyai/r3d-bridge/status"
)

type fsFile struct {
	f      *os.File
	path   string
	access status.FileAccess
}

func (e *fsFile) Drop() {
	_ = e.f.Close()
}

// Filesystem serves engine file access from the local filesystem.
type Filesystem struct {
	files *resource.Table[*fsFile]
}

// NewFilesystem creates a filesystem backend with no open files.
func NewFilesystem() *Filesystem {
	return &Filesystem{files: resource.NewTable[*fsFile]()}
}

// Subscribe observes handle creation and retirement.
func (b *Filesystem) Subscribe(o resource.Observer) (unsubscribe func()) {
	return b.files.Subscribe(o)
}

// OpenCount returns the number of live handles.
func (b *Filesystem) OpenCount() int {
	return b.files.Len()
}

func (b *Filesystem) Open(path string, access status.FileAccess) Handle {
	var (
		f   *os.File
		err error
	)
	switch access {
	case status.AccessRead:
		f, err = os.Open(path)
	case status.AccessWrite:
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	default:
		return HandleFallback
	}
	if err != nil {
		if access == status.AccessRead && errors.Is(err, fs.ErrNotExist) {
			return HandleError
		}
		Logger().Debug("filesystem open declined",
			zap.String("path", path),
			zap.Stringer("access", access),
			zap.Error(err))
		return HandleFallback
	}

	h, err := b.files.Insert(&fsFile{f: f, path: path, access: access})
	if err != nil {
		_ = f.Close()
		return HandleError
	}
	Logger().Debug("filesystem open",
		zap.String("path", path),
		zap.Stringer("access", access),
		zap.Uint64("handle", uint64(h)))
	return fromTable(h)
}

func (b *Filesystem) lookup(h Handle) (*fsFile, bool) {
	th, ok := h.table()
	if !ok {
		return nil, false
	}
	return b.files.Get(th)
}

func (b *Filesystem) Filesize(h Handle) uint64 {
	e, ok := b.lookup(h)
	if !ok {
		return 0
	}
	info, err := e.f.Stat()
	if err != nil {
		return 0
	}
	return uint64(info.Size())
}

func (b *Filesystem) Close(h Handle) {
	th, ok := h.table()
	if !ok {
		return
	}
	b.files.Remove(th)
}

// Read uses positioned reads, so no cursor is shared between concurrent
// readers or with the write position.
func (b *Filesystem) Read(buf []byte, offset uint64, h Handle) bool {
	e, ok := b.lookup(h)
	if !ok {
		return false
	}
	if offset > uint64(1<<63-1) {
		return false
	}
	// ReadAt may report io.EOF alongside a full read that ends at EOF.
	n, _ := e.f.ReadAt(buf, int64(offset))
	return n == len(buf)
}

func (b *Filesystem) Write(data []byte, h Handle) bool {
	e, ok := b.lookup(h)
	if !ok {
		return false
	}
	n, err := e.f.Write(data)
	return err == nil && n == len(data)
}

func (b *Filesystem) CreatePath(path string) bool {
	if path == "" {
		return false
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		Logger().Debug("create path failed", zap.String("path", path), zap.Error(err))
		return false
	}
	return true
}

// Shutdown releases every open file.
func (b *Filesystem) Shutdown() error {
	return b.files.Close()
}
