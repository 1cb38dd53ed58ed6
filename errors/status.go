package errors

import (
	"fmt"

	"github.com/wippyai/r3d-bridge/status"
)

// Kinds mapped from foreign status codes. Codes that share a meaning across
// families share a kind.
const (
	// initialization
	KindLibraryNotLoaded       Kind = "library_not_loaded"
	KindSDKLibraryNotFound     Kind = "sdk_library_not_found"
	KindCUDALibraryNotFound    Kind = "cuda_library_not_found"
	KindOpenCLLibraryNotFound  Kind = "opencl_library_not_found"
	KindDecoderLibraryNotFound Kind = "decoder_library_not_found"
	KindMetalLibraryNotFound   Kind = "metal_library_not_found"
	KindLibraryVersionMismatch Kind = "library_version_mismatch"
	KindInvalidSDKLibrary      Kind = "invalid_sdk_library"
	KindInvalidCUDALibrary     Kind = "invalid_cuda_library"
	KindInvalidOpenCLLibrary   Kind = "invalid_opencl_library"
	KindInvalidDecoderLibrary  Kind = "invalid_decoder_library"
	KindInvalidMetalLibrary    Kind = "invalid_metal_library"
	KindCUDAInitFailed         Kind = "cuda_init_failed"
	KindOpenCLInitFailed       Kind = "opencl_init_failed"
	KindDecoderInitFailed      Kind = "decoder_init_failed"
	KindSDKInitFailed          Kind = "sdk_init_failed"
	KindMetalInitFailed        Kind = "metal_init_failed"
	KindInvalidPath            Kind = "invalid_path"
	KindInternal               Kind = "internal_error"
	KindMetalNotAvailable      Kind = "metal_not_available"

	// clip loading
	KindClipPathNotFound   Kind = "clip_path_not_found"
	KindClipOpenFailed     Kind = "clip_open_failed"
	KindNotAnR3DFile       Kind = "not_an_r3d_file"
	KindClipEmpty          Kind = "clip_empty"
	KindClipNotInitialized Kind = "clip_not_initialized"

	// decoding
	KindOutputBufferInvalid   Kind = "output_buffer_invalid"
	KindRequestOutOfRange     Kind = "request_out_of_range"
	KindInvalidParameter      Kind = "invalid_parameter"
	KindDroppedFrame          Kind = "dropped_frame"
	KindDecodeFailed          Kind = "decode_failed"
	KindOutOfMemory           Kind = "out_of_memory"
	KindUnknownError          Kind = "unknown_error"
	KindNoClipOpen            Kind = "no_clip_open"
	KindCannotReadFromFile    Kind = "cannot_read_from_file"
	KindInvalidPixelType      Kind = "invalid_pixel_type"
	KindNotAnHDRxClip         Kind = "not_an_hdrx_clip"
	KindCancelled             Kind = "cancelled"
	KindUnsupportedClipFormat Kind = "unsupported_clip_format"
	KindParameterUnsupported  Kind = "parameter_unsupported"
	KindDecoderNotOpened      Kind = "decoder_not_opened"

	// R3D decoder
	KindErrorProcessing         Kind = "error_processing"
	KindInvalidJobParameter     Kind = "invalid_job_parameter"
	KindInvalidMode             Kind = "invalid_mode"
	KindInvalidRawHostMem       Kind = "invalid_raw_host_mem"
	KindInvalidRawDeviceMem     Kind = "invalid_raw_device_mem"
	KindInvalidOutputMemSize    Kind = "invalid_output_mem_size"
	KindInvalidOutputMem        Kind = "invalid_output_mem"
	KindUnsupportedColorVersion Kind = "unsupported_color_version"
	KindInvalidClip             Kind = "invalid_clip"
	KindGPUDeviceUnusable       Kind = "gpu_device_unusable"
	KindNoGPUDevice             Kind = "no_gpu_device"
	KindLibraryLoadFailed       Kind = "library_load_failed"
)

// Sentinels for errors.Is; they match on kind regardless of phase.
var (
	ErrCancelled            = &Error{Kind: KindCancelled}
	ErrDroppedFrame         = &Error{Kind: KindDroppedFrame}
	ErrOutOfMemory          = &Error{Kind: KindOutOfMemory}
	ErrRequestOutOfRange    = &Error{Kind: KindRequestOutOfRange}
	ErrUnrecognizedStatus   = &Error{Kind: KindUnrecognizedStatus}
	ErrJobInFlight          = &Error{Kind: KindJobInFlight}
	ErrResultTaken          = &Error{Kind: KindResultTaken}
	ErrMetadataNotRequested = &Error{Kind: KindMetadataNotRequested}
	ErrBufferTooSmall       = &Error{Kind: KindBufferTooSmall}
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrClosed               = &Error{Kind: KindClosed}
)

var initializeKinds = map[status.InitializeStatus]Kind{
	status.InitLibraryNotLoaded:          KindLibraryNotLoaded,
	status.InitR3DSDKLibraryNotFound:     KindSDKLibraryNotFound,
	status.InitRedCudaLibraryNotFound:    KindCUDALibraryNotFound,
	status.InitRedOpenCLLibraryNotFound:  KindOpenCLLibraryNotFound,
	status.InitR3DDecoderLibraryNotFound: KindDecoderLibraryNotFound,
	status.InitLibraryVersionMismatch:    KindLibraryVersionMismatch,
	status.InitInvalidR3DSDKLibrary:      KindInvalidSDKLibrary,
	status.InitInvalidRedCudaLibrary:     KindInvalidCUDALibrary,
	status.InitInvalidRedOpenCLLibrary:   KindInvalidOpenCLLibrary,
	status.InitInvalidR3DDecoderLibrary:  KindInvalidDecoderLibrary,
	status.InitRedCudaInitFailed:         KindCUDAInitFailed,
	status.InitRedOpenCLInitFailed:       KindOpenCLInitFailed,
	status.InitR3DDecoderInitFailed:      KindDecoderInitFailed,
	status.InitR3DSDKInitFailed:          KindSDKInitFailed,
	status.InitInvalidPath:               KindInvalidPath,
	status.InitInternalError:             KindInternal,
	status.InitRedMetalLibraryNotFound:   KindMetalLibraryNotFound,
	status.InitInvalidRedMetalLibrary:    KindInvalidMetalLibrary,
	status.InitRedMetalInitFailed:        KindMetalInitFailed,
	status.InitMetalNotAvailable:         KindMetalNotAvailable,
}

var loadKinds = map[status.LoadStatus]Kind{
	status.LoadPathNotFound:   KindClipPathNotFound,
	status.LoadFailedToOpen:   KindClipOpenFailed,
	status.LoadNotAnR3DFile:   KindNotAnR3DFile,
	status.LoadClipIsEmpty:    KindClipEmpty,
	status.LoadOutOfMemory:    KindOutOfMemory,
	status.LoadUnknownError:   KindUnknownError,
	status.LoadNoClipOpen:     KindNoClipOpen,
	status.LoadNotInitialized: KindClipNotInitialized,
}

var decodeKinds = map[status.DecodeStatus]Kind{
	status.DecodeOutputBufferInvalid:   KindOutputBufferInvalid,
	status.DecodeRequestOutOfRange:     KindRequestOutOfRange,
	status.DecodeInvalidParameter:      KindInvalidParameter,
	status.DecodeIsDroppedFrame:        KindDroppedFrame,
	status.DecodeFailed:                KindDecodeFailed,
	status.DecodeOutOfMemory:           KindOutOfMemory,
	status.DecodeUnknownError:          KindUnknownError,
	status.DecodeNoClipOpen:            KindNoClipOpen,
	status.DecodeCannotReadFromFile:    KindCannotReadFromFile,
	status.DecodeInvalidPixelType:      KindInvalidPixelType,
	status.DecodeNotAnHDRxClip:         KindNotAnHDRxClip,
	status.DecodeCancelled:             KindCancelled,
	status.DecodeUnsupportedClipFormat: KindUnsupportedClipFormat,
	status.DecodeParameterUnsupported:  KindParameterUnsupported,
	status.DecodeDecoderNotOpened:      KindDecoderNotOpened,
}

var r3dKinds = map[status.R3DStatus]Kind{
	status.R3DErrorProcessing:                  KindErrorProcessing,
	status.R3DInvalidJobParameter:              KindInvalidJobParameter,
	status.R3DInvalidJobParameterMode:          KindInvalidMode,
	status.R3DInvalidJobParameterRawHostMem:    KindInvalidRawHostMem,
	status.R3DInvalidJobParameterRawDeviceMem:  KindInvalidRawDeviceMem,
	status.R3DInvalidJobParameterPixelType:     KindInvalidPixelType,
	status.R3DInvalidJobParameterOutputMemSize: KindInvalidOutputMemSize,
	status.R3DInvalidJobParameterOutputMem:     KindInvalidOutputMem,
	status.R3DInvalidJobParameterColorVersion1: KindUnsupportedColorVersion,
	status.R3DInvalidJobParameterClip:          KindInvalidClip,
	status.R3DUnableToUseGPUDevice:             KindGPUDeviceUnusable,
	status.R3DNoGPUDeviceSpecified:             KindNoGPUDevice,
	status.R3DUnableToLoadLibrary:              KindLibraryLoadFailed,
	status.R3DParameterUnsupported:             KindParameterUnsupported,
}

// FromInitializeStatus maps a failed initialization code. It panics on success.
func FromInitializeStatus(s status.InitializeStatus) *Error {
	if s.OK() {
		panic("errors: InitializeStatus OK is not an error")
	}
	return fromStatus(PhaseInit, initializeKinds, s)
}

// FromLoadStatus maps a failed clip load code. It panics on success.
func FromLoadStatus(s status.LoadStatus) *Error {
	if s.OK() {
		panic("errors: LoadStatus ClipLoaded is not an error")
	}
	return fromStatus(PhaseLoad, loadKinds, s)
}

// FromDecodeStatus maps a failed decompression code. It panics on success.
func FromDecodeStatus(phase Phase, s status.DecodeStatus) *Error {
	if s.OK() {
		panic("errors: DecodeStatus OK is not an error")
	}
	return fromStatus(phase, decodeKinds, s)
}

// FromR3DStatus maps a failed R3D decoder code. It panics on success.
func FromR3DStatus(phase Phase, s status.R3DStatus) *Error {
	if s.OK() {
		panic("errors: R3DStatus Ok is not an error")
	}
	return fromStatus(phase, r3dKinds, s)
}

func fromStatus[S interface {
	~int32
	fmt.Stringer
}](phase Phase, kinds map[S]Kind, s S) *Error {
	kind, ok := kinds[s]
	if !ok {
		kind = KindUnrecognizedStatus
	}
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Status: s.String(),
		Code:   int32(s),
	}
}
