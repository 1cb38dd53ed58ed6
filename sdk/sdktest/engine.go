package sdktest

import (
	"fmt"
	"math/rand/v2"
	"os"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/r3d-bridge/customio"
	"github.com/wippyai/r3d-bridge/future"
	"github.com/wippyai/r3d-bridge/sdk"
	"github.com/wippyai/r3d-bridge/status"
)

// DecompressBytesPerPixel is the raw output size per pixel of decompress jobs.
const DecompressBytesPerPixel = 2

type clipState struct {
	path  string
	info  sdk.ClipInfo
	viaIO bool
}

type decoderState struct {
	kind sdk.DecoderKind
	opts sdk.DecoderOptions
}

type jobState struct {
	kind     sdk.JobKind
	params   sdk.JobParams
	inFlight bool
	aborted  atomic.Bool
	meta     map[string]string
}

type work struct {
	job   *jobState
	ref   sdk.Ref
	dec   sdk.DecoderKind
	token uintptr
}

// Engine is an in-process sdk.Engine. Completions are delivered from worker
// goroutines, or held for the test to release in manual mode.
type Engine struct {
	mu          sync.Mutex
	completion  sdk.CompletionFunc
	log         *zap.Logger
	version     string
	initStatus  status.InitializeStatus
	initialized bool
	gpu         bool
	jitter      time.Duration

	registered map[string]sdk.ClipInfo
	clips      map[sdk.Ref]*clipState
	decoders   map[sdk.Ref]*decoderState
	jobs       map[sdk.Ref]*jobState
	nextRef    sdk.Ref

	rejects  map[int]int32
	failures map[int]int32

	ioInstance uintptr
	ioReads    atomic.Int64

	manual  bool
	held    []work
	queue   chan work
	wg      sync.WaitGroup
	closed  bool
	workers int
}

// Option configures an Engine.
type Option func(*Engine)

// WithCompletion routes completions to fn instead of future.Deliver.
func WithCompletion(fn sdk.CompletionFunc) Option {
	return func(e *Engine) { e.completion = fn }
}

// WithWorkers sets the number of worker goroutines.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithManualCompletion holds accepted jobs until Complete or CompleteAll.
func WithManualCompletion() Option {
	return func(e *Engine) { e.manual = true }
}

// WithJitter delays each job by a random duration up to d.
func WithJitter(d time.Duration) Option {
	return func(e *Engine) { e.jitter = d }
}

// WithInitializeStatus makes Initialize return s.
func WithInitializeStatus(s status.InitializeStatus) Option {
	return func(e *Engine) { e.initStatus = s }
}

// WithGPU sets what GPUSupportedForClip reports.
func WithGPU(supported bool) Option {
	return func(e *Engine) { e.gpu = supported }
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New starts an Engine. Close stops its workers.
func New(opts ...Option) *Engine {
	e := &Engine{
		completion: func(token uintptr, code int32) { future.Deliver(token, code) },
		log:        zap.NewNop(),
		version:    "sdktest 1.0",
		gpu:        true,
		registered: make(map[string]sdk.ClipInfo),
		clips:      make(map[sdk.Ref]*clipState),
		decoders:   make(map[sdk.Ref]*decoderState),
		jobs:       make(map[sdk.Ref]*jobState),
		rejects:    make(map[int]int32),
		failures:   make(map[int]int32),
		workers:    runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	if !e.manual {
		e.queue = make(chan work, 64)
		for range e.workers {
			e.wg.Add(1)
			go e.worker()
		}
	}
	return e
}

// Close stops the workers after the queued jobs complete. Held jobs are
// completed with their computed status.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	held := e.held
	e.held = nil
	e.mu.Unlock()

	for _, w := range held {
		e.run(w)
	}
	if e.queue != nil {
		close(e.queue)
		e.wg.Wait()
	}
}

// AddClip registers an in-memory clip under path.
func (e *Engine) AddClip(path string, info sdk.ClipInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.registered[path] = info
}

// RejectFrame makes Submit reject jobs for frame with code.
func (e *Engine) RejectFrame(frame int, code int32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rejects[frame] = code
}

// FailFrame makes jobs for frame complete with code.
func (e *Engine) FailFrame(frame int, code int32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failures[frame] = code
}

// Held returns the number of jobs waiting for Complete.
func (e *Engine) Held() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.held)
}

// Complete runs the held job for frame. It reports false when none is held.
func (e *Engine) Complete(frame int) bool {
	e.mu.Lock()
	idx := -1
	for i, w := range e.held {
		if w.job.params.Frame == frame {
			idx = i
			break
		}
	}
	if idx < 0 {
		e.mu.Unlock()
		return false
	}
	w := e.held[idx]
	e.held = append(e.held[:idx], e.held[idx+1:]...)
	e.mu.Unlock()

	e.run(w)
	return true
}

// CompleteAll runs every held job, newest first.
func (e *Engine) CompleteAll() {
	e.mu.Lock()
	held := e.held
	e.held = nil
	e.mu.Unlock()

	for i := len(held) - 1; i >= 0; i-- {
		e.run(held[i])
	}
}

// Deliver hands a raw completion to the completion function, as a
// misbehaving engine would.
func (e *Engine) Deliver(token uintptr, code int32) {
	e.completion(token, code)
}

// IOReads counts header reads made through the installed I/O interface.
func (e *Engine) IOReads() int64 { return e.ioReads.Load() }

// Live reports how many clips, decoders and jobs are still open.
func (e *Engine) Live() (clips, decoders, jobs int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.clips), len(e.decoders), len(e.jobs)
}

func (e *Engine) Initialize(libraryPath string, flags status.InitializeFlags) status.InitializeStatus {
	if libraryPath == "" {
		return status.InitInvalidPath
	}
	if err := flags.Validate(); err != nil {
		return status.InitInternalError
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.initStatus != status.InitializeOK {
		return e.initStatus
	}
	e.initialized = true
	return status.InitializeOK
}

func (e *Engine) Finalize() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.initialized = false
}

func (e *Engine) Version() string { return e.version }

func (e *Engine) IdentifyFile(path string) status.FileID {
	e.mu.Lock()
	_, ok := e.registered[path]
	e.mu.Unlock()
	if ok {
		return status.FileR3D
	}
	if _, ls := e.readHeaderDisk(path); ls == status.LoadClipLoaded {
		return status.FileR3D
	}
	return status.FileUnknown
}

func (e *Engine) allocRef() sdk.Ref {
	e.nextRef++
	return e.nextRef
}

func (e *Engine) OpenClip(path string) (sdk.Ref, status.LoadStatus) {
	e.mu.Lock()
	if !e.initialized {
		e.mu.Unlock()
		return 0, status.LoadNotInitialized
	}
	info, registered := e.registered[path]
	instance := e.ioInstance
	e.mu.Unlock()

	st := &clipState{path: path, info: info}
	if !registered {
		var ls status.LoadStatus
		info, st.viaIO, ls = e.readHeader(instance, path)
		if ls != status.LoadClipLoaded {
			return 0, ls
		}
		st.info = info
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	ref := e.allocRef()
	e.clips[ref] = st
	return ref, status.LoadClipLoaded
}

// readHeader reads the clip header through the installed I/O interface, or
// from disk when none is installed or the backend defers.
func (e *Engine) readHeader(instance uintptr, path string) (sdk.ClipInfo, bool, status.LoadStatus) {
	if instance != 0 {
		info, ls, fallback := e.readHeaderIO(instance, path)
		if !fallback {
			return info, true, ls
		}
	}
	info, ls := e.readHeaderDisk(path)
	return info, false, ls
}

func (e *Engine) readHeaderIO(instance uintptr, path string) (sdk.ClipInfo, status.LoadStatus, bool) {
	cpath := append([]byte(path), 0)
	h := customio.EntryOpen(instance, unsafe.Pointer(&cpath[0]), int32(status.AccessRead))
	switch h {
	case customio.HandleFallback:
		return sdk.ClipInfo{}, 0, true
	case customio.HandleError:
		return sdk.ClipInfo{}, status.LoadPathNotFound, false
	}
	defer customio.EntryClose(instance, h)

	if customio.EntryFilesize(instance, h) < HeaderSize {
		return sdk.ClipInfo{}, status.LoadNotAnR3DFile, false
	}
	buf := make([]byte, HeaderSize)
	if !customio.EntryRead(instance, unsafe.Pointer(&buf[0]), HeaderSize, 0, h) {
		return sdk.ClipInfo{}, status.LoadFailedToOpen, false
	}
	e.ioReads.Add(1)
	info, ok := decodeHeader(buf)
	if !ok {
		return sdk.ClipInfo{}, status.LoadNotAnR3DFile, false
	}
	return info, status.LoadClipLoaded, false
}

func (e *Engine) readHeaderDisk(path string) (sdk.ClipInfo, status.LoadStatus) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return sdk.ClipInfo{}, status.LoadPathNotFound
		}
		return sdk.ClipInfo{}, status.LoadFailedToOpen
	}
	defer f.Close()
	buf := make([]byte, HeaderSize)
	if n, _ := f.Read(buf); n < HeaderSize {
		return sdk.ClipInfo{}, status.LoadNotAnR3DFile
	}
	info, ok := decodeHeader(buf)
	if !ok {
		return sdk.ClipInfo{}, status.LoadNotAnR3DFile
	}
	return info, status.LoadClipLoaded
}

func (e *Engine) ClipInfo(clip sdk.Ref) sdk.ClipInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st, ok := e.clips[clip]; ok {
		return st.info
	}
	return sdk.ClipInfo{}
}

func (e *Engine) CloseClip(clip sdk.Ref) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.clips, clip)
}

func (e *Engine) OpenDecoder(kind sdk.DecoderKind, opts sdk.DecoderOptions) (sdk.Ref, status.R3DStatus) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.initialized {
		return 0, status.R3DUnableToLoadLibrary
	}
	switch kind {
	case sdk.DecoderR3D:
		if opts.Threads < 0 || opts.ConcurrentImages < 0 || opts.MemoryPoolMB < 0 {
			return 0, status.R3DInvalidJobParameter
		}
		if opts.Device.Kind != sdk.DeviceNone && !e.gpu {
			return 0, status.R3DUnableToUseGPUDevice
		}
	case sdk.DecoderAsync, sdk.DecoderGPU:
	default:
		return 0, status.R3DParameterUnsupported
	}
	ref := e.allocRef()
	e.decoders[ref] = &decoderState{kind: kind, opts: opts}
	return ref, status.R3DOK
}

func (e *Engine) CloseDecoder(dec sdk.Ref) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.decoders, dec)
}

func (e *Engine) ThreadsAvailable() int { return runtime.NumCPU() }

func (e *Engine) GPUSupportedForClip(clip sdk.Ref) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.clips[clip]
	return ok && e.gpu
}

func (e *Engine) NewJob(kind sdk.JobKind) sdk.Ref {
	e.mu.Lock()
	defer e.mu.Unlock()
	ref := e.allocRef()
	e.jobs[ref] = &jobState{kind: kind}
	return ref
}

func (e *Engine) ConfigureJob(job sdk.Ref, p sdk.JobParams) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st, ok := e.jobs[job]; ok && !st.inFlight {
		st.params = p
	}
}

func (e *Engine) SizeBufferNeeded(job sdk.Ref) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.jobs[job]
	if !ok {
		return 0
	}
	return uint64(e.neededLocked(st))
}

func (e *Engine) neededLocked(st *jobState) int {
	clip, ok := e.clips[st.params.Clip]
	if !ok {
		return 0
	}
	div := st.params.Mode.Divisor()
	if div == 0 {
		return 0
	}
	if st.kind == sdk.JobDecompress {
		return (clip.info.Width / div) * (clip.info.Height / div) * DecompressBytesPerPixel
	}
	n, err := status.BufferSize(clip.info.Width, clip.info.Height, st.params.Mode, st.params.PixelType)
	if err != nil {
		return 0
	}
	return n
}

func (e *Engine) Submit(dec sdk.Ref, job sdk.Ref, token uintptr) int32 {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.jobs[job]
	if !ok {
		return int32(status.R3DInvalidJobParameter)
	}
	code, d := e.validateLocked(dec, st)
	if code != 0 {
		return code
	}
	if e.closed {
		return reject(d.kind, status.R3DErrorProcessing, status.DecodeDecoderNotOpened)
	}
	st.inFlight = true
	st.aborted.Store(false)
	st.meta = nil
	w := work{job: st, ref: job, dec: d.kind, token: token}
	if e.manual {
		e.held = append(e.held, w)
		return 0
	}
	select {
	case e.queue <- w:
	default:
		// Queue full: run on a fresh goroutine, as the engine's own thread pool would.
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.run(w)
		}()
	}
	return 0
}

func reject(kind sdk.DecoderKind, r3d status.R3DStatus, ds status.DecodeStatus) int32 {
	if kind == sdk.DecoderR3D {
		return int32(r3d)
	}
	return int32(ds)
}

func (e *Engine) validateLocked(dec sdk.Ref, st *jobState) (int32, *decoderState) {
	d, ok := e.decoders[dec]
	if !ok {
		if st.kind == sdk.JobDecode {
			return int32(status.R3DErrorProcessing), nil
		}
		return int32(status.DecodeDecoderNotOpened), nil
	}
	if d.kind.JobKind() != st.kind || st.inFlight {
		return reject(d.kind, status.R3DInvalidJobParameter, status.DecodeInvalidParameter), d
	}
	p := st.params
	clip, ok := e.clips[p.Clip]
	if !ok {
		return reject(d.kind, status.R3DInvalidJobParameterClip, status.DecodeNoClipOpen), d
	}
	if p.Mode.Divisor() == 0 {
		return reject(d.kind, status.R3DInvalidJobParameterMode, status.DecodeInvalidParameter), d
	}
	if st.kind == sdk.JobDecode {
		if _, ok := p.PixelType.Layout(); !ok {
			return int32(status.R3DInvalidJobParameterPixelType), d
		}
	}
	if p.Frame < 0 || p.Frame >= clip.info.FrameCount || p.Track < 0 {
		return reject(d.kind, status.R3DInvalidJobParameter, status.DecodeRequestOutOfRange), d
	}
	if len(p.Output) == 0 {
		return reject(d.kind, status.R3DInvalidJobParameterOutputMem, status.DecodeOutputBufferInvalid), d
	}
	if len(p.Output) < e.neededLocked(st) {
		return reject(d.kind, status.R3DInvalidJobParameterOutputMemSize, status.DecodeOutputBufferInvalid), d
	}
	if code, ok := e.rejects[p.Frame]; ok {
		return code, d
	}
	return 0, d
}

// AbortJob flags a job. A queued or running job completes as cancelled.
func (e *Engine) AbortJob(job sdk.Ref) {
	e.mu.Lock()
	st, ok := e.jobs[job]
	e.mu.Unlock()
	if ok {
		st.aborted.Store(true)
	}
}

func (e *Engine) FrameMetadata(job sdk.Ref) (map[string]string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	st, ok := e.jobs[job]
	if !ok || st.meta == nil {
		return nil, false
	}
	out := make(map[string]string, len(st.meta))
	for k, v := range st.meta {
		out[k] = v
	}
	return out, true
}

func (e *Engine) ReleaseJob(job sdk.Ref) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st, ok := e.jobs[job]; ok && st.inFlight {
		e.log.Warn("job released while in flight", zap.Uintptr("job", uintptr(job)))
	}
	delete(e.jobs, job)
}

func (e *Engine) SetIOInterface(instance uintptr) bool {
	if instance == 0 {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ioInstance = instance
	return true
}

func (e *Engine) ResetIOInterface() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ioInstance = 0
}

func (e *Engine) worker() {
	defer e.wg.Done()
	for w := range e.queue {
		e.run(w)
	}
}

// run performs one job on the calling goroutine and delivers its completion.
func (e *Engine) run(w work) {
	if e.jitter > 0 {
		time.Sleep(rand.N(e.jitter))
	}

	e.mu.Lock()
	p := w.job.params
	failure, failed := e.failures[p.Frame]
	clip := e.clips[p.Clip]
	instance := e.ioInstance
	e.mu.Unlock()

	var code int32
	switch {
	case w.job.aborted.Load():
		code = reject(w.dec, status.R3DErrorProcessing, status.DecodeCancelled)
	case failed:
		code = failure
	case clip == nil:
		code = reject(w.dec, status.R3DInvalidJobParameterClip, status.DecodeNoClipOpen)
	case clip.viaIO && !e.rereadIO(instance, clip.path):
		code = reject(w.dec, status.R3DErrorProcessing, status.DecodeCannotReadFromFile)
	default:
		fill(p.Output, byte(p.Frame))
	}

	e.mu.Lock()
	if code == 0 && p.Metadata {
		w.job.meta = frameMetadata(p.Frame, clip.info)
	}
	w.job.inFlight = false
	e.mu.Unlock()

	e.completion(w.token, code)
}

// rereadIO touches the clip through the I/O interface from the worker, the
// way the engine reads frame data on its own threads.
func (e *Engine) rereadIO(instance uintptr, path string) bool {
	_, _, ls := e.readHeader(instance, path)
	return ls == status.LoadClipLoaded
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}

func frameMetadata(frame int, info sdk.ClipInfo) map[string]string {
	fps := info.FrameRate
	if fps <= 0 {
		fps = 24
	}
	secs := int(float64(frame) / fps)
	ff := frame - int(float64(secs)*fps)
	return map[string]string{
		"frame":     fmt.Sprint(frame),
		"timecode":  fmt.Sprintf("%02d:%02d:%02d:%02d", secs/3600, secs/60%60, secs%60, ff),
		"width":     fmt.Sprint(info.Width),
		"height":    fmt.Sprint(info.Height),
		"framerate": fmt.Sprintf("%.3f", fps),
	}
}

var _ sdk.Engine = (*Engine)(nil)
var _ customio.Runtime = (*Engine)(nil)
