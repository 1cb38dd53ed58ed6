package decoder

import (
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/r3d-bridge/errors"
	"github.com/wippyai/r3d-bridge/sdk"
	"github.com/wippyai/r3d-bridge/status"
)

// jobCore holds the fields shared by both job kinds. While inFlight is set
// the engine owns the job: mutators panic and only Abort is allowed.
type jobCore struct {
	id       uuid.UUID
	sdk      *SDK
	ref      sdk.Ref
	kind     sdk.JobKind
	clip     *Clip
	track    int
	frame    int
	mode     status.VideoDecodeMode
	output   []byte
	buffer   *AlignedBuffer
	metadata bool
	meta     map[string]string
	tag      any
	inFlight atomic.Bool
	closed   bool
}

func (j *jobCore) init(s *SDK, kind sdk.JobKind) {
	j.id = uuid.New()
	j.sdk = s
	j.ref = s.engine.NewJob(kind)
	j.kind = kind
	j.mode = status.ModeFullResPremium
}

func (j *jobCore) mutable(op string) {
	if j.inFlight.Load() {
		panic(errors.JobInFlight(errors.PhaseRuntime, op))
	}
}

// ID identifies the job in logs.
func (j *jobCore) ID() uuid.UUID { return j.id }

// InFlight reports whether the engine currently owns the job.
func (j *jobCore) InFlight() bool { return j.inFlight.Load() }

func (j *jobCore) Clip() *Clip                  { return j.clip }
func (j *jobCore) Mode() status.VideoDecodeMode { return j.mode }
func (j *jobCore) VideoTrack() int              { return j.track }
func (j *jobCore) VideoFrame() int              { return j.frame }
func (j *jobCore) Tag() any                     { return j.tag }

// Output returns the buffer the engine writes the frame into.
func (j *jobCore) Output() []byte { return j.output }

func (j *jobCore) SetClip(c *Clip) {
	j.mutable("SetClip")
	j.clip = c
}

func (j *jobCore) SetMode(m status.VideoDecodeMode) {
	j.mutable("SetMode")
	j.mode = m
}

func (j *jobCore) SetVideoTrack(track int) {
	j.mutable("SetVideoTrack")
	j.track = track
}

func (j *jobCore) SetVideoFrame(frame int) {
	j.mutable("SetVideoFrame")
	j.frame = frame
}

// SetTag attaches a caller value that travels with the job through the
// engine and back.
func (j *jobCore) SetTag(v any) {
	j.mutable("SetTag")
	j.tag = v
}

// SetOutput points the job at caller-owned memory. buf must not be touched
// until the job's future resolves. The engine keeps the pointer until the job
// is reconfigured or closed; Go-heap memory stays pinned for that long. A
// previous internal buffer is freed.
func (j *jobCore) SetOutput(buf []byte) {
	j.mutable("SetOutput")
	j.freeBuffer()
	j.output = buf
}

// AllocateFrameMetadata requests the frame metadata block with the next
// decode.
func (j *jobCore) AllocateFrameMetadata() {
	j.mutable("AllocateFrameMetadata")
	j.metadata = true
	j.meta = nil
}

// Metadata returns the metadata of the last completed decode.
func (j *jobCore) Metadata() (map[string]string, error) {
	j.mutable("Metadata")
	if !j.metadata {
		return nil, errors.MetadataNotRequested()
	}
	return j.meta, nil
}

// Abort asks the engine to stop work on the job. It may be called at any
// time; the future still resolves, typically with a cancellation error.
func (j *jobCore) Abort() {
	if j.closed {
		return
	}
	j.sdk.engine.AbortJob(j.ref)
}

func (j *jobCore) setBuffer(b *AlignedBuffer) {
	j.freeBuffer()
	j.buffer = b
	j.output = b.Bytes()
}

func (j *jobCore) freeBuffer() {
	if j.buffer == nil {
		return
	}
	if err := j.buffer.Free(); err != nil {
		Logger().Warn("free output buffer", zap.Stringer("job", j.id), zap.Error(err))
	}
	j.buffer = nil
	j.output = nil
}

func (j *jobCore) params(pixel status.VideoPixelType) sdk.JobParams {
	return sdk.JobParams{
		Output:    j.output,
		Clip:      j.clip.engineRef(),
		Track:     j.track,
		Frame:     j.frame,
		Mode:      j.mode,
		PixelType: pixel,
		Metadata:  j.metadata,
	}
}

// begin takes engine ownership of the job.
func (j *jobCore) begin(op string) error {
	if j.closed {
		return errors.Closed(errors.PhaseSubmit, "job")
	}
	if !j.inFlight.CompareAndSwap(false, true) {
		return errors.JobInFlight(errors.PhaseSubmit, op)
	}
	return nil
}

// settle returns ownership to the caller. It runs on the completing thread
// before the future resolves.
func (j *jobCore) settle() {
	if j.metadata {
		j.meta, _ = j.sdk.engine.FrameMetadata(j.ref)
	}
	j.inFlight.Store(false)
}

// Close releases the engine job and any internal buffer.
func (j *jobCore) Close() error {
	if j.closed {
		return nil
	}
	if j.inFlight.Load() {
		return errors.JobInFlight(errors.PhaseRuntime, "Close")
	}
	j.closed = true
	j.sdk.engine.ReleaseJob(j.ref)
	j.freeBuffer()
	return nil
}

// DecodeJob decodes one frame with the R3D decoder into a processed image.
type DecodeJob struct {
	jobCore
	pixel status.VideoPixelType
}

// NewDecodeJob creates a job for Decoder.Decode.
func (s *SDK) NewDecodeJob() *DecodeJob {
	j := &DecodeJob{pixel: status.PixelRGB16Interleaved}
	j.init(s, sdk.JobDecode)
	return j
}

func (j *DecodeJob) PixelType() status.VideoPixelType { return j.pixel }

func (j *DecodeJob) SetPixelType(p status.VideoPixelType) {
	j.mutable("SetPixelType")
	j.pixel = p
}

// AllocateInternalBuffer sizes an aligned output buffer for the job's clip,
// mode and pixel type. The job owns it and frees it on Close.
func (j *DecodeJob) AllocateInternalBuffer() error {
	j.mutable("AllocateInternalBuffer")
	if j.clip == nil {
		return errors.InvalidInput(errors.PhaseRuntime, "job has no clip")
	}
	b, err := j.clip.AllocateBuffer(j.mode, j.pixel)
	if err != nil {
		return err
	}
	j.setBuffer(b)
	return nil
}

// AsyncJob decompresses one frame for later GPU processing. It is accepted by
// AsyncDecoder and GPUDecoder.
type AsyncJob struct {
	jobCore
}

// NewAsyncJob creates a job for AsyncDecoder and GPUDecoder.
func (s *SDK) NewAsyncJob() *AsyncJob {
	j := &AsyncJob{}
	j.init(s, sdk.JobDecompress)
	return j
}

// AllocateInternalBuffer sizes an aligned output buffer from what the engine
// reports for the job's clip and mode.
func (j *AsyncJob) AllocateInternalBuffer() error {
	j.mutable("AllocateInternalBuffer")
	n, err := j.sizeNeeded()
	if err != nil {
		return err
	}
	b, err := NewAlignedBuffer(n)
	if err != nil {
		return err
	}
	j.setBuffer(b)
	return nil
}

func (j *AsyncJob) sizeNeeded() (int, error) {
	if j.clip == nil {
		return 0, errors.InvalidInput(errors.PhaseRuntime, "job has no clip")
	}
	j.sdk.engine.ConfigureJob(j.ref, j.params(0))
	n := j.sdk.engine.SizeBufferNeeded(j.ref)
	if n == 0 {
		return 0, errors.InvalidInput(errors.PhaseRuntime, "engine cannot size the job; check clip and mode")
	}
	return int(n), nil
}
