package sdk

import (
	"github.com/wippyai/r3d-bridge/status"
)

// Ref is an opaque engine object: a clip, decoder or job.
type Ref uintptr

// DecoderKind selects one of the engine's decoders.
type DecoderKind uint8

const (
	// DecoderR3D decodes and image-processes on CPU or GPU. Jobs report R3DStatus.
	DecoderR3D DecoderKind = iota + 1
	// DecoderAsync decompresses on CPU for later GPU processing. Jobs report DecodeStatus.
	DecoderAsync
	// DecoderGPU prepares frames for GPU decompression. Jobs report DecodeStatus.
	DecoderGPU
)

func (k DecoderKind) String() string {
	switch k {
	case DecoderR3D:
		return "r3d"
	case DecoderAsync:
		return "async"
	case DecoderGPU:
		return "gpu"
	default:
		return "unknown"
	}
}

// JobKind returns the kind of job k accepts.
func (k DecoderKind) JobKind() JobKind {
	if k == DecoderR3D {
		return JobDecode
	}
	return JobDecompress
}

// JobKind selects the engine job structure.
type JobKind uint8

const (
	JobDecode     JobKind = iota + 1 // R3D decode job
	JobDecompress                    // async decompress job
)

// DeviceKind selects the GPU API for the R3D decoder.
type DeviceKind uint8

const (
	DeviceNone DeviceKind = iota
	DeviceCUDA
	DeviceOpenCL
)

// Device identifies a GPU by API and index in the engine's device list.
type Device struct {
	Kind  DeviceKind
	Index int
}

// DecoderOptions configures an R3D decoder. Zero values leave engine defaults.
type DecoderOptions struct {
	ScratchFolder       string
	Device              Device
	Threads             int
	ConcurrentImages    int
	MemoryPoolMB        int
	GPUMemoryPoolMB     int
	GPUConcurrentFrames int
}

// ClipInfo is the subset of clip properties the bridge needs.
type ClipInfo struct {
	Width      int
	Height     int
	FrameCount int
	TrackCount int
	FrameRate  float64
}

// JobParams is written into an engine job before submission.
type JobParams struct {
	// Output must stay valid and unmoved until the job completes.
	Output    []byte
	Clip      Ref
	Track     int
	Frame     int
	Mode      status.VideoDecodeMode
	PixelType status.VideoPixelType // decode jobs only
	Metadata  bool
}

// CompletionFunc receives every job completion with the token passed to
// Submit. It runs on engine threads.
type CompletionFunc func(token uintptr, code int32)

// Engine is the narrow contract to the decoding engine. Implementations are
// safe for concurrent use except where the engine itself forbids it
// (Initialize, Finalize and the I/O interface).
type Engine interface {
	Initialize(libraryPath string, flags status.InitializeFlags) status.InitializeStatus
	Finalize()
	Version() string
	IdentifyFile(path string) status.FileID

	OpenClip(path string) (Ref, status.LoadStatus)
	ClipInfo(clip Ref) ClipInfo
	CloseClip(clip Ref)

	OpenDecoder(kind DecoderKind, opts DecoderOptions) (Ref, status.R3DStatus)
	CloseDecoder(dec Ref)
	ThreadsAvailable() int
	GPUSupportedForClip(clip Ref) bool

	NewJob(kind JobKind) Ref
	ConfigureJob(job Ref, p JobParams)
	// SizeBufferNeeded reports the output size for a configured decompress
	// job, or 0 when its clip or mode is invalid.
	SizeBufferNeeded(job Ref) uint64
	// Submit hands job to dec. A non-zero result is a synchronous rejection
	// and no completion follows; otherwise exactly one completion carrying
	// token is delivered later.
	Submit(dec Ref, job Ref, token uintptr) int32
	AbortJob(job Ref)
	FrameMetadata(job Ref) (map[string]string, bool)
	ReleaseJob(job Ref)

	SetIOInterface(instance uintptr) bool
	ResetIOInterface()
}
