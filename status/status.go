package status

import "strconv"

// DecodeStatus is returned by the asynchronous and GPU decompression paths.
type DecodeStatus int32

const (
	DecodeOK                    DecodeStatus = 0
	DecodeOutputBufferInvalid   DecodeStatus = 1
	DecodeRequestOutOfRange     DecodeStatus = 3
	DecodeInvalidParameter      DecodeStatus = 4
	DecodeIsDroppedFrame        DecodeStatus = 5
	DecodeFailed                DecodeStatus = 6
	DecodeOutOfMemory           DecodeStatus = 7
	DecodeUnknownError          DecodeStatus = 8
	DecodeNoClipOpen            DecodeStatus = 9
	DecodeCannotReadFromFile    DecodeStatus = 10
	DecodeInvalidPixelType      DecodeStatus = 11
	DecodeNotAnHDRxClip         DecodeStatus = 12
	DecodeCancelled             DecodeStatus = 13
	DecodeUnsupportedClipFormat DecodeStatus = 14
	DecodeParameterUnsupported  DecodeStatus = 15
	DecodeDecoderNotOpened      DecodeStatus = 16
)

var decodeStatusNames = map[DecodeStatus]string{
	DecodeOK:                    "DSDecodeOK",
	DecodeOutputBufferInvalid:   "DSOutputBufferInvalid",
	DecodeRequestOutOfRange:     "DSRequestOutOfRange",
	DecodeInvalidParameter:      "DSInvalidParameter",
	DecodeIsDroppedFrame:        "DSIsDroppedFrame",
	DecodeFailed:                "DSDecodeFailed",
	DecodeOutOfMemory:           "DSOutOfMemory",
	DecodeUnknownError:          "DSUnknownError",
	DecodeNoClipOpen:            "DSNoClipOpen",
	DecodeCannotReadFromFile:    "DSCannotReadFromFile",
	DecodeInvalidPixelType:      "DSInvalidPixelType",
	DecodeNotAnHDRxClip:         "DSNotAnHDRxClip",
	DecodeCancelled:             "DSCancelled",
	DecodeUnsupportedClipFormat: "DSUnsupportedClipFormat",
	DecodeParameterUnsupported:  "DSParameterUnsupported",
	DecodeDecoderNotOpened:      "DSDecoderNotOpened",
}

func (s DecodeStatus) String() string { return name(decodeStatusNames, s, "DecodeStatus") }

// OK reports whether s is the success code.
func (s DecodeStatus) OK() bool { return s == DecodeOK }

// Known reports whether s is a documented code.
func (s DecodeStatus) Known() bool { _, ok := decodeStatusNames[s]; return ok }

// R3DStatus is returned by the R3D decoder (CPU/GPU image processing) path.
type R3DStatus int32

const (
	R3DOK                               R3DStatus = 0
	R3DErrorProcessing                  R3DStatus = 1
	R3DInvalidJobParameter              R3DStatus = 2
	R3DInvalidJobParameterMode          R3DStatus = 3
	R3DInvalidJobParameterRawHostMem    R3DStatus = 4
	R3DInvalidJobParameterRawDeviceMem  R3DStatus = 5
	R3DInvalidJobParameterPixelType     R3DStatus = 6
	R3DInvalidJobParameterOutputMemSize R3DStatus = 7
	R3DInvalidJobParameterOutputMem     R3DStatus = 8
	R3DInvalidJobParameterColorVersion1 R3DStatus = 9
	R3DInvalidJobParameterClip          R3DStatus = 10
	R3DUnableToUseGPUDevice             R3DStatus = 11
	R3DNoGPUDeviceSpecified             R3DStatus = 12
	R3DUnableToLoadLibrary              R3DStatus = 13
	R3DParameterUnsupported             R3DStatus = 14
)

var r3dStatusNames = map[R3DStatus]string{
	R3DOK:                               "R3DStatus_Ok",
	R3DErrorProcessing:                  "R3DStatus_ErrorProcessing",
	R3DInvalidJobParameter:              "R3DStatus_InvalidJobParameter",
	R3DInvalidJobParameterMode:          "R3DStatus_InvalidJobParameter_mode",
	R3DInvalidJobParameterRawHostMem:    "R3DStatus_InvalidJobParameter_raw_host_mem",
	R3DInvalidJobParameterRawDeviceMem:  "R3DStatus_InvalidJobParameter_raw_device_mem",
	R3DInvalidJobParameterPixelType:     "R3DStatus_InvalidJobParameter_pixelType",
	R3DInvalidJobParameterOutputMemSize: "R3DStatus_InvalidJobParameter_output_device_mem_size",
	R3DInvalidJobParameterOutputMem:     "R3DStatus_InvalidJobParameter_output_device_mem",
	R3DInvalidJobParameterColorVersion1: "R3DStatus_InvalidJobParameter_ColorVersion1",
	R3DInvalidJobParameterClip:          "R3DStatus_InvalidJobParameter_clip",
	R3DUnableToUseGPUDevice:             "R3DStatus_UnableToUseGPUDevice",
	R3DNoGPUDeviceSpecified:             "R3DStatus_NoGPUDeviceSpecified",
	R3DUnableToLoadLibrary:              "R3DStatus_UnableToLoadLibrary",
	R3DParameterUnsupported:             "R3DStatus_ParameterUnsupported",
}

func (s R3DStatus) String() string { return name(r3dStatusNames, s, "R3DStatus") }

// OK reports whether s is the success code.
func (s R3DStatus) OK() bool { return s == R3DOK }

// Known reports whether s is a documented code.
func (s R3DStatus) Known() bool { _, ok := r3dStatusNames[s]; return ok }

// InitializeStatus is returned when loading the SDK libraries.
type InitializeStatus int32

const (
	InitializeOK                  InitializeStatus = 0
	InitLibraryNotLoaded          InitializeStatus = 1
	InitR3DSDKLibraryNotFound     InitializeStatus = 2
	InitRedCudaLibraryNotFound    InitializeStatus = 3
	InitRedOpenCLLibraryNotFound  InitializeStatus = 4
	InitR3DDecoderLibraryNotFound InitializeStatus = 5
	InitLibraryVersionMismatch    InitializeStatus = 6
	InitInvalidR3DSDKLibrary      InitializeStatus = 7
	InitInvalidRedCudaLibrary     InitializeStatus = 8
	InitInvalidRedOpenCLLibrary   InitializeStatus = 9
	InitInvalidR3DDecoderLibrary  InitializeStatus = 10
	InitRedCudaInitFailed         InitializeStatus = 11
	InitRedOpenCLInitFailed       InitializeStatus = 12
	InitR3DDecoderInitFailed      InitializeStatus = 13
	InitR3DSDKInitFailed          InitializeStatus = 14
	InitInvalidPath               InitializeStatus = 15
	InitInternalError             InitializeStatus = 16
	InitRedMetalLibraryNotFound   InitializeStatus = 17
	InitInvalidRedMetalLibrary    InitializeStatus = 18
	InitRedMetalInitFailed        InitializeStatus = 19
	InitMetalNotAvailable         InitializeStatus = 20
)

var initializeStatusNames = map[InitializeStatus]string{
	InitializeOK:                  "ISInitializeOK",
	InitLibraryNotLoaded:          "ISLibraryNotLoaded",
	InitR3DSDKLibraryNotFound:     "ISR3DSDKLibraryNotFound",
	InitRedCudaLibraryNotFound:    "ISRedCudaLibraryNotFound",
	InitRedOpenCLLibraryNotFound:  "ISRedOpenCLLibraryNotFound",
	InitR3DDecoderLibraryNotFound: "ISR3DDecoderLibraryNotFound",
	InitLibraryVersionMismatch:    "ISLibraryVersionMismatch",
	InitInvalidR3DSDKLibrary:      "ISInvalidR3DSDKLibrary",
	InitInvalidRedCudaLibrary:     "ISInvalidRedCudaLibrary",
	InitInvalidRedOpenCLLibrary:   "ISInvalidRedOpenCLLibrary",
	InitInvalidR3DDecoderLibrary:  "ISInvalidR3DDecoderLibrary",
	InitRedCudaInitFailed:         "ISRedCudaLibraryInitializeFailed",
	InitRedOpenCLInitFailed:       "ISRedOpenCLLibraryInitializeFailed",
	InitR3DDecoderInitFailed:      "ISR3DDecoderLibraryInitializeFailed",
	InitR3DSDKInitFailed:          "ISR3DSDKLibraryInitializeFailed",
	InitInvalidPath:               "ISInvalidPath",
	InitInternalError:             "ISInternalError",
	InitRedMetalLibraryNotFound:   "ISRedMetalLibraryNotFound",
	InitInvalidRedMetalLibrary:    "ISInvalidRedMetalLibrary",
	InitRedMetalInitFailed:        "ISRedMetalLibraryInitializeFailed",
	InitMetalNotAvailable:         "ISMetalNotAvailable",
}

func (s InitializeStatus) String() string {
	return name(initializeStatusNames, s, "InitializeStatus")
}

// OK reports whether s is the success code.
func (s InitializeStatus) OK() bool { return s == InitializeOK }

// LoadStatus is returned when opening a clip.
type LoadStatus int32

const (
	LoadClipLoaded     LoadStatus = 0
	LoadPathNotFound   LoadStatus = 1
	LoadFailedToOpen   LoadStatus = 2
	LoadNotAnR3DFile   LoadStatus = 3
	LoadClipIsEmpty    LoadStatus = 4
	LoadOutOfMemory    LoadStatus = 5
	LoadUnknownError   LoadStatus = 6
	LoadNoClipOpen     LoadStatus = 7
	LoadNotInitialized LoadStatus = 8
)

var loadStatusNames = map[LoadStatus]string{
	LoadClipLoaded:     "LSClipLoaded",
	LoadPathNotFound:   "LSPathNotFound",
	LoadFailedToOpen:   "LSFailedToOpenFile",
	LoadNotAnR3DFile:   "LSNotAnR3DFile",
	LoadClipIsEmpty:    "LSClipIsEmpty",
	LoadOutOfMemory:    "LSOutOfMemory",
	LoadUnknownError:   "LSUnknownError",
	LoadNoClipOpen:     "LSNoClipOpen",
	LoadNotInitialized: "LSNotInitialized",
}

func (s LoadStatus) String() string { return name(loadStatusNames, s, "LoadStatus") }

// OK reports whether s is the success code.
func (s LoadStatus) OK() bool { return s == LoadClipLoaded }

func name[S ~int32](names map[S]string, s S, family string) string {
	if n, ok := names[s]; ok {
		return n
	}
	return family + "(" + strconv.Itoa(int(s)) + ")"
}
