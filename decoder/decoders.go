package decoder

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/r3d-bridge/errors"
	"github.com/wippyai/r3d-bridge/future"
	"github.com/wippyai/r3d-bridge/sdk"
	"github.com/wippyai/r3d-bridge/status"
)

func mapR3D(phase errors.Phase, code int32) error {
	s := status.R3DStatus(code)
	if s.OK() {
		return nil
	}
	return errors.FromR3DStatus(phase, s)
}

func mapDecode(phase errors.Phase, code int32) error {
	s := status.DecodeStatus(code)
	if s.OK() {
		return nil
	}
	return errors.FromDecodeStatus(phase, s)
}

type decoderCore struct {
	sdk     *SDK
	ref     sdk.Ref
	kind    sdk.DecoderKind
	pending atomic.Int64

	// gate orders the closed check and the pending increment in submit
	// against the pending check and the closed store in Close.
	gate   sync.Mutex
	closed atomic.Bool
}

func (d *decoderCore) open(s *SDK, kind sdk.DecoderKind, opts sdk.DecoderOptions) error {
	if err := s.check(); err != nil {
		return err
	}
	ref, st := s.engine.OpenDecoder(kind, opts)
	if !st.OK() {
		err := errors.FromR3DStatus(errors.PhaseInit, st)
		err.Path = []string{kind.String() + " decoder"}
		return err
	}
	d.sdk, d.ref, d.kind = s, ref, kind
	Logger().Debug("decoder opened", zap.Stringer("kind", kind))
	return nil
}

// submit hands j to the engine and returns the future for payload, which
// embeds j.
func submit[T any](d *decoderCore, j *jobCore, payload T, pixel status.VideoPixelType, mapf future.StatusMapper) (*future.Future[T], error) {
	if j.sdk != d.sdk {
		return nil, errors.InvalidInput(errors.PhaseSubmit, "job belongs to another engine")
	}
	if j.kind != d.kind.JobKind() {
		return nil, errors.InvalidInput(errors.PhaseSubmit, "job kind does not match decoder "+d.kind.String())
	}
	if err := d.acquire(); err != nil {
		return nil, err
	}
	if err := j.begin("submit"); err != nil {
		d.pending.Add(-1)
		return nil, err
	}

	engine := d.sdk.engine
	engine.ConfigureJob(j.ref, j.params(pixel))

	f, err := future.Submit(d.sdk.registry, future.Submission[T]{
		Payload: payload,
		Map:     mapf,
		Submit: func(token uintptr) int32 {
			return engine.Submit(d.ref, j.ref, token)
		},
		Settle: func(T) {
			j.settle()
			d.pending.Add(-1)
		},
	})
	if err != nil {
		Logger().Debug("job rejected",
			zap.Stringer("job", j.id),
			zap.Stringer("decoder", d.kind),
			zap.Error(err))
		return nil, err
	}
	Logger().Debug("job submitted",
		zap.Stringer("job", j.id),
		zap.Stringer("decoder", d.kind),
		zap.Int("frame", j.frame),
		zap.Uint64("token", uint64(f.Token())))
	return f, nil
}

// acquire counts a submission in flight unless the decoder is closed.
func (d *decoderCore) acquire() error {
	d.gate.Lock()
	defer d.gate.Unlock()
	if d.closed.Load() {
		return errors.Closed(errors.PhaseSubmit, d.kind.String()+" decoder")
	}
	d.pending.Add(1)
	return nil
}

// Pending returns the number of submitted jobs not yet completed.
func (d *decoderCore) Pending() int { return int(d.pending.Load()) }

// Close releases the decoder. It fails while jobs are in flight.
func (d *decoderCore) Close() error {
	d.gate.Lock()
	if n := d.pending.Load(); n > 0 {
		d.gate.Unlock()
		return errors.New(errors.PhaseRuntime, errors.KindJobInFlight).
			Value(n).
			Detail("%s decoder has %d jobs in flight", d.kind, n).
			Build()
	}
	already := d.closed.Swap(true)
	d.gate.Unlock()
	if already {
		return nil
	}
	d.sdk.engine.CloseDecoder(d.ref)
	Logger().Debug("decoder closed", zap.Stringer("kind", d.kind))
	return nil
}

// Decoder is the R3D decoder: full decode and image processing on CPU or an
// OpenCL/CUDA device.
type Decoder struct {
	decoderCore
	opts sdk.DecoderOptions
}

// OpenDecoder opens an R3D decoder configured by opts.
func (s *SDK) OpenDecoder(opts sdk.DecoderOptions) (*Decoder, error) {
	if opts.Threads < 0 || opts.ConcurrentImages < 0 || opts.MemoryPoolMB < 0 ||
		opts.GPUMemoryPoolMB < 0 || opts.GPUConcurrentFrames < 0 {
		return nil, errors.New(errors.PhaseInit, errors.KindInvalidInput).
			Path("R3D decoder").
			Value(opts).
			Detail("decoder options must not be negative").
			Build()
	}
	d := &Decoder{opts: opts}
	if err := d.open(s, sdk.DecoderR3D, opts); err != nil {
		return nil, err
	}
	return d, nil
}

// Options returns the options the decoder was opened with.
func (d *Decoder) Options() sdk.DecoderOptions { return d.opts }

// Decode submits j. The future yields j back once the frame is in its
// output buffer, or j with an R3DStatus error.
func (d *Decoder) Decode(j *DecodeJob) (*future.Future[*DecodeJob], error) {
	return submit(&d.decoderCore, &j.jobCore, j, j.pixel, mapR3D)
}

// AsyncDecoder decompresses frames on CPU threads for later GPU processing.
type AsyncDecoder struct {
	decoderCore
}

// OpenAsyncDecoder opens the asynchronous CPU decompressor.
func (s *SDK) OpenAsyncDecoder() (*AsyncDecoder, error) {
	d := &AsyncDecoder{}
	if err := d.open(s, sdk.DecoderAsync, sdk.DecoderOptions{}); err != nil {
		return nil, err
	}
	return d, nil
}

// ThreadsAvailable returns the number of decompression threads.
func (d *AsyncDecoder) ThreadsAvailable() int {
	return d.sdk.engine.ThreadsAvailable()
}

// SizeBufferNeeded returns the output size j needs with its current clip and
// mode.
func (d *AsyncDecoder) SizeBufferNeeded(j *AsyncJob) (int, error) {
	j.mutable("SizeBufferNeeded")
	return j.sizeNeeded()
}

// DecodeForGPU submits j. The future yields j back, or j with a
// DecodeStatus error.
func (d *AsyncDecoder) DecodeForGPU(j *AsyncJob) (*future.Future[*AsyncJob], error) {
	return submit(&d.decoderCore, &j.jobCore, j, 0, mapDecode)
}

// GPUDecoder prepares frames for GPU decompression.
type GPUDecoder struct {
	decoderCore
}

// OpenGPUDecoder opens the GPU decompression front end.
func (s *SDK) OpenGPUDecoder() (*GPUDecoder, error) {
	d := &GPUDecoder{}
	if err := d.open(s, sdk.DecoderGPU, sdk.DecoderOptions{}); err != nil {
		return nil, err
	}
	return d, nil
}

// SupportedForClip reports whether c can be decompressed on the GPU.
func (d *GPUDecoder) SupportedForClip(c *Clip) bool {
	ref := c.engineRef()
	return ref != 0 && d.sdk.engine.GPUSupportedForClip(ref)
}

// DecodeForGPU submits j. The future yields j back, or j with a
// DecodeStatus error.
func (d *GPUDecoder) DecodeForGPU(j *AsyncJob) (*future.Future[*AsyncJob], error) {
	return submit(&d.decoderCore, &j.jobCore, j, 0, mapDecode)
}
