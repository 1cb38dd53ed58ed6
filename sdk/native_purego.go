//go:build darwin || linux

package sdk

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/wippyai/r3d-bridge/customio"
	"github.com/wippyai/r3d-bridge/future"
	"github.com/wippyai/r3d-bridge/status"
)

// LibraryEnv names the environment variable holding the shim library path.
const LibraryEnv = "R3D_BRIDGE_LIB"

// libr3dbridge is a thin C shim over the C++ SDK. It exposes plain functions
// taking opaque pointers and the structs below, so no C++ ABI crosses into Go.
var (
	r3dbInitialize     func(path string, flags uint32) int32
	r3dbFinalize       func()
	r3dbVersion        func() uintptr
	r3dbIdentifyFile   func(path string) int32
	r3dbClipOpen       func(path string, status *int32) uintptr
	r3dbClipInfo       func(clip uintptr, out *nativeClipInfo)
	r3dbClipClose      func(clip uintptr)
	r3dbDecoderOpen    func(kind int32, opts *nativeDecoderOptions, status *int32) uintptr
	r3dbDecoderClose   func(dec uintptr)
	r3dbThreadsAvail   func() uint64
	r3dbGPUSupported   func(clip uintptr) int32
	r3dbJobNew         func(kind int32) uintptr
	r3dbJobConfigure   func(job uintptr, p *nativeJobParams)
	r3dbJobSizeNeeded  func(job uintptr) uint64
	r3dbJobSubmit      func(dec, job, token, callback uintptr) int32
	r3dbJobAbort       func(job uintptr)
	r3dbJobPrivateData func(job uintptr) uintptr
	r3dbJobMetadata    func(job uintptr, buf *byte, capacity uint64) uint64
	r3dbJobRelease     func(job uintptr)
	r3dbIOSet          func(instance uintptr, cbs *nativeIOCallbacks) int32
	r3dbIOReset        func()
)

type nativeClipInfo struct {
	Width      uint64
	Height     uint64
	FrameCount uint64
	TrackCount uint64
	FrameRate  float64
}

type nativeDecoderOptions struct {
	ScratchFolder       uintptr // const char *
	Threads             int64
	ConcurrentImages    int64
	MemoryPoolMB        int64
	GPUMemoryPoolMB     int64
	GPUConcurrentFrames int64
	DeviceKind          int64
	DeviceIndex         int64
}

type nativeJobParams struct {
	Clip       uintptr
	Output     uintptr
	OutputSize uint64
	Track      uint64
	Frame      uint64
	Mode       uint32
	PixelType  uint32
	Metadata   int32
	_          int32
}

type nativeIOCallbacks struct {
	Open       uintptr
	Filesize   uintptr
	Close      uintptr
	Read       uintptr
	Write      uintptr
	CreatePath uintptr
}

var (
	libOnce    sync.Once
	libHandle  uintptr
	libInitErr error

	callbackOnce sync.Once
	completionCB uintptr
	ioCallbacks  nativeIOCallbacks

	completion atomic.Pointer[CompletionFunc]
)

// Native drives the real engine through the shim library.
type Native struct {
	path string
	pins pinSet
}

// NativeOption configures Open.
type NativeOption func(*nativeConfig)

type nativeConfig struct {
	library    string
	completion CompletionFunc
}

// WithLibrary sets an explicit shim library path.
func WithLibrary(path string) NativeOption {
	return func(c *nativeConfig) { c.library = path }
}

// WithCompletion overrides where completions go. The default is future.Deliver.
func WithCompletion(fn CompletionFunc) NativeOption {
	return func(c *nativeConfig) { c.completion = fn }
}

func libraryName() string {
	if runtime.GOOS == "darwin" {
		return "libr3dbridge.dylib"
	}
	return "libr3dbridge.so"
}

func findLibrary(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("shim library %s: %w", explicit, err)
		}
		return explicit, nil
	}

	name := libraryName()
	searchPaths := []string{os.Getenv(LibraryEnv)}
	if exe, err := os.Executable(); err == nil {
		searchPaths = append(searchPaths, filepath.Dir(exe))
	}
	searchPaths = append(searchPaths, "build", "../build", "/usr/local/lib", "/usr/lib")

	for _, p := range searchPaths {
		if p == "" {
			continue
		}
		candidate := p
		if !strings.HasSuffix(p, name) {
			candidate = filepath.Join(p, name)
		}
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%s not found (set %s)", name, LibraryEnv)
}

func loadLibrary(path string) error {
	libOnce.Do(func() {
		var err error
		libHandle, err = purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			libInitErr = fmt.Errorf("failed to load %s: %w", path, err)
			return
		}

		purego.RegisterLibFunc(&r3dbInitialize, libHandle, "r3db_initialize")
		purego.RegisterLibFunc(&r3dbFinalize, libHandle, "r3db_finalize")
		purego.RegisterLibFunc(&r3dbVersion, libHandle, "r3db_version")
		purego.RegisterLibFunc(&r3dbIdentifyFile, libHandle, "r3db_identify_file")
		purego.RegisterLibFunc(&r3dbClipOpen, libHandle, "r3db_clip_open")
		purego.RegisterLibFunc(&r3dbClipInfo, libHandle, "r3db_clip_info")
		purego.RegisterLibFunc(&r3dbClipClose, libHandle, "r3db_clip_close")
		purego.RegisterLibFunc(&r3dbDecoderOpen, libHandle, "r3db_decoder_open")
		purego.RegisterLibFunc(&r3dbDecoderClose, libHandle, "r3db_decoder_close")
		purego.RegisterLibFunc(&r3dbThreadsAvail, libHandle, "r3db_threads_available")
		purego.RegisterLibFunc(&r3dbGPUSupported, libHandle, "r3db_gpu_supported")
		purego.RegisterLibFunc(&r3dbJobNew, libHandle, "r3db_job_new")
		purego.RegisterLibFunc(&r3dbJobConfigure, libHandle, "r3db_job_configure")
		purego.RegisterLibFunc(&r3dbJobSizeNeeded, libHandle, "r3db_job_size_buffer_needed")
		purego.RegisterLibFunc(&r3dbJobSubmit, libHandle, "r3db_job_submit")
		purego.RegisterLibFunc(&r3dbJobAbort, libHandle, "r3db_job_abort")
		purego.RegisterLibFunc(&r3dbJobPrivateData, libHandle, "r3db_job_private_data")
		purego.RegisterLibFunc(&r3dbJobMetadata, libHandle, "r3db_job_metadata")
		purego.RegisterLibFunc(&r3dbJobRelease, libHandle, "r3db_job_release")
		purego.RegisterLibFunc(&r3dbIOSet, libHandle, "r3db_io_set")
		purego.RegisterLibFunc(&r3dbIOReset, libHandle, "r3db_io_reset")
	})
	return libInitErr
}

// initCallbacks creates the C-callable trampolines once. purego callbacks are
// never freed, so they are shared by every Native.
func initCallbacks() {
	callbackOnce.Do(func() {
		completionCB = purego.NewCallback(completionHandler)
		ioCallbacks = nativeIOCallbacks{
			Open:       purego.NewCallback(ioOpen),
			Filesize:   purego.NewCallback(ioFilesize),
			Close:      purego.NewCallback(ioClose),
			Read:       purego.NewCallback(ioRead),
			Write:      purego.NewCallback(ioWrite),
			CreatePath: purego.NewCallback(ioCreatePath),
		}
	})
}

// completionHandler is called by engine threads for both job structures.
func completionHandler(job uintptr, code int32) {
	if job == 0 {
		Logger().Error("completion with nil job")
		return
	}
	token := r3dbJobPrivateData(job)
	if token == 0 {
		Logger().Error("no private data in job")
		return
	}
	if fn := completion.Load(); fn != nil {
		(*fn)(token, code)
	}
}

func ioOpen(instance, path uintptr, access int32) uintptr {
	return uintptr(customio.EntryOpen(instance, unsafe.Pointer(path), access))
}

func ioFilesize(instance, h uintptr) uint64 {
	return customio.EntryFilesize(instance, customio.Handle(h))
}

func ioClose(instance, h uintptr) {
	customio.EntryClose(instance, customio.Handle(h))
}

func ioRead(instance, buf uintptr, size, offset uint64, h uintptr) int32 {
	return boolInt(customio.EntryRead(instance, unsafe.Pointer(buf), size, offset, customio.Handle(h)))
}

func ioWrite(instance, buf uintptr, size uint64, h uintptr) int32 {
	return boolInt(customio.EntryWrite(instance, unsafe.Pointer(buf), size, customio.Handle(h)))
}

func ioCreatePath(instance, path uintptr) int32 {
	return boolInt(customio.EntryCreatePath(instance, unsafe.Pointer(path)))
}

func boolInt(ok bool) int32 {
	if ok {
		return 1
	}
	return 0
}

// Open loads the shim library. The engine is a process-wide singleton, so
// the most recently opened Native receives all completions.
func Open(opts ...NativeOption) (*Native, error) {
	cfg := nativeConfig{completion: func(token uintptr, code int32) { future.Deliver(token, code) }}
	for _, opt := range opts {
		opt(&cfg)
	}

	path, err := findLibrary(cfg.library)
	if err != nil {
		return nil, err
	}
	if err := loadLibrary(path); err != nil {
		return nil, err
	}
	initCallbacks()

	fn := cfg.completion
	completion.Store(&fn)
	Logger().Info("engine library loaded", zap.String("path", path))
	return &Native{path: path}, nil
}

// Path returns the loaded shim library path.
func (n *Native) Path() string { return n.path }

func (n *Native) Initialize(libraryPath string, flags status.InitializeFlags) status.InitializeStatus {
	return status.InitializeStatus(r3dbInitialize(libraryPath, uint32(flags)))
}

func (n *Native) Finalize() { r3dbFinalize() }

func (n *Native) Version() string {
	return cString(r3dbVersion())
}

func (n *Native) IdentifyFile(path string) status.FileID {
	return status.FileID(r3dbIdentifyFile(path))
}

func (n *Native) OpenClip(path string) (Ref, status.LoadStatus) {
	var st int32
	clip := r3dbClipOpen(path, &st)
	return Ref(clip), status.LoadStatus(st)
}

func (n *Native) ClipInfo(clip Ref) ClipInfo {
	var info nativeClipInfo
	r3dbClipInfo(uintptr(clip), &info)
	return ClipInfo{
		Width:      int(info.Width),
		Height:     int(info.Height),
		FrameCount: int(info.FrameCount),
		TrackCount: int(info.TrackCount),
		FrameRate:  info.FrameRate,
	}
}

func (n *Native) CloseClip(clip Ref) { r3dbClipClose(uintptr(clip)) }

func (n *Native) OpenDecoder(kind DecoderKind, opts DecoderOptions) (Ref, status.R3DStatus) {
	var scratch []byte
	native := nativeDecoderOptions{
		Threads:             int64(opts.Threads),
		ConcurrentImages:    int64(opts.ConcurrentImages),
		MemoryPoolMB:        int64(opts.MemoryPoolMB),
		GPUMemoryPoolMB:     int64(opts.GPUMemoryPoolMB),
		GPUConcurrentFrames: int64(opts.GPUConcurrentFrames),
		DeviceKind:          int64(opts.Device.Kind),
		DeviceIndex:         int64(opts.Device.Index),
	}
	if opts.ScratchFolder != "" {
		scratch = append([]byte(opts.ScratchFolder), 0)
		native.ScratchFolder = uintptr(unsafe.Pointer(&scratch[0]))
	}

	var st int32
	dec := r3dbDecoderOpen(int32(kind), &native, &st)
	runtime.KeepAlive(scratch)
	return Ref(dec), status.R3DStatus(st)
}

func (n *Native) CloseDecoder(dec Ref) { r3dbDecoderClose(uintptr(dec)) }

func (n *Native) ThreadsAvailable() int { return int(r3dbThreadsAvail()) }

func (n *Native) GPUSupportedForClip(clip Ref) bool {
	return status.DecodeStatus(r3dbGPUSupported(uintptr(clip))) == status.DecodeOK
}

func (n *Native) NewJob(kind JobKind) Ref { return Ref(r3dbJobNew(int32(kind))) }

func (n *Native) ConfigureJob(job Ref, p JobParams) {
	native := nativeJobParams{
		Clip:      uintptr(p.Clip),
		Track:     uint64(p.Track),
		Frame:     uint64(p.Frame),
		Mode:      uint32(p.Mode),
		PixelType: uint32(p.PixelType),
	}
	n.pins.pin(job, p.Output)
	if len(p.Output) > 0 {
		native.Output = uintptr(unsafe.Pointer(&p.Output[0]))
		native.OutputSize = uint64(len(p.Output))
	}
	if p.Metadata {
		native.Metadata = 1
	}
	r3dbJobConfigure(uintptr(job), &native)
}

func (n *Native) SizeBufferNeeded(job Ref) uint64 { return r3dbJobSizeNeeded(uintptr(job)) }

func (n *Native) Submit(dec, job Ref, token uintptr) int32 {
	return r3dbJobSubmit(uintptr(dec), uintptr(job), token, completionCB)
}

func (n *Native) AbortJob(job Ref) { r3dbJobAbort(uintptr(job)) }

func (n *Native) FrameMetadata(job Ref) (map[string]string, bool) {
	size := r3dbJobMetadata(uintptr(job), nil, 0)
	if size == 0 {
		return nil, false
	}
	buf := make([]byte, size)
	r3dbJobMetadata(uintptr(job), &buf[0], size)
	return ParseMetadata(buf), true
}

func (n *Native) ReleaseJob(job Ref) {
	r3dbJobRelease(uintptr(job))
	n.pins.release(job)
}

func (n *Native) SetIOInterface(instance uintptr) bool {
	cbs := ioCallbacks
	return r3dbIOSet(instance, &cbs) == 0
}

func (n *Native) ResetIOInterface() { r3dbIOReset() }

func cString(p uintptr) string {
	if p == 0 {
		return ""
	}
	return unix.BytePtrToString((*byte)(unsafe.Pointer(p)))
}
