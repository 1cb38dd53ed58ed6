package status

import (
	"fmt"
	"strings"
)

// VideoDecodeMode selects resolution and quality. Values are the engine's FourCC codes.
type VideoDecodeMode uint32

const (
	ModeFullResPremium   VideoDecodeMode = 0x44465250 // 'DFRP'
	ModeHalfResPremium   VideoDecodeMode = 0x44485250 // 'DHRP'
	ModeHalfResGood      VideoDecodeMode = 0x44485247 // 'DHRG'
	ModeQuarterResGood   VideoDecodeMode = 0x44515247 // 'DQRG'
	ModeEighthResGood    VideoDecodeMode = 0x44455247 // 'DERG'
	ModeSixteenthResGood VideoDecodeMode = 0x44535247 // 'DSRG'
)

var modeInfo = map[VideoDecodeMode]struct {
	name    string
	divisor int
}{
	ModeFullResPremium:   {"full-premium", 1},
	ModeHalfResPremium:   {"half-premium", 2},
	ModeHalfResGood:      {"half-good", 2},
	ModeQuarterResGood:   {"quarter-good", 4},
	ModeEighthResGood:    {"eighth-good", 8},
	ModeSixteenthResGood: {"sixteenth-good", 16},
}

func (m VideoDecodeMode) String() string {
	if info, ok := modeInfo[m]; ok {
		return info.name
	}
	return fmt.Sprintf("VideoDecodeMode(0x%08x)", uint32(m))
}

// Divisor returns the factor the source dimensions are divided by, or 0 for an unknown mode.
func (m VideoDecodeMode) Divisor() int {
	return modeInfo[m].divisor
}

// ParseMode accepts the names produced by VideoDecodeMode.String.
func ParseMode(s string) (VideoDecodeMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, info := range modeInfo {
		if info.name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown decode mode %q", s)
}

// VideoPixelType selects the output pixel layout. Values are the engine's FourCC codes.
type VideoPixelType uint32

const (
	PixelRGB16Interleaved   VideoPixelType = 0x52423649 // 'RB6I'
	PixelRGBHalfInterleaved VideoPixelType = 0x52424846 // 'RBHF'
	PixelRGBHalfACESInt     VideoPixelType = 0x52424841 // 'RBHA'
	PixelRGB16Planar        VideoPixelType = 0x52423650 // 'RB6P'
	PixelBGR8Interleaved    VideoPixelType = 0x42475238 // 'BGR8'
	PixelBGRA8Interleaved   VideoPixelType = 0x42524138 // 'BRA8'
	PixelDPX10MethodB       VideoPixelType = 0x44503042 // 'DP0B'
)

// PixelLayout describes how many bytes a pixel type occupies.
type PixelLayout struct {
	// BytesPerUnit is bytes per pixel when interleaved, bytes per sample per plane otherwise.
	BytesPerUnit int
	Planes       int
	Interleaved  bool
}

var pixelInfo = map[VideoPixelType]struct {
	name   string
	layout PixelLayout
}{
	PixelRGB16Interleaved:   {"rgb16", PixelLayout{6, 1, true}},
	PixelRGBHalfInterleaved: {"rgb-half", PixelLayout{6, 1, true}},
	PixelRGBHalfACESInt:     {"rgb-half-aces", PixelLayout{6, 1, true}},
	PixelRGB16Planar:        {"rgb16-planar", PixelLayout{2, 3, false}},
	PixelBGR8Interleaved:    {"bgr8", PixelLayout{3, 1, true}},
	PixelBGRA8Interleaved:   {"bgra8", PixelLayout{4, 1, true}},
	PixelDPX10MethodB:       {"dpx10", PixelLayout{4, 1, true}},
}

func (p VideoPixelType) String() string {
	if info, ok := pixelInfo[p]; ok {
		return info.name
	}
	return fmt.Sprintf("VideoPixelType(0x%08x)", uint32(p))
}

// Layout returns the byte layout of p; ok is false for an unknown pixel type.
func (p VideoPixelType) Layout() (PixelLayout, bool) {
	info, ok := pixelInfo[p]
	return info.layout, ok
}

// ParsePixelType accepts the names produced by VideoPixelType.String.
func ParsePixelType(s string) (VideoPixelType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, info := range pixelInfo {
		if info.name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown pixel type %q", s)
}

// BufferSize returns the contiguous output size for a width x height source
// decoded at mode into pixel type p. Rows carry no padding.
func BufferSize(width, height int, mode VideoDecodeMode, p VideoPixelType) (int, error) {
	div := mode.Divisor()
	if div == 0 {
		return 0, fmt.Errorf("unknown decode mode %s", mode)
	}
	layout, ok := p.Layout()
	if !ok {
		return 0, fmt.Errorf("unknown pixel type %s", p)
	}
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	w, h := width/div, height/div
	return w * h * layout.BytesPerUnit * layout.Planes, nil
}

// InitializeFlags selects which optional engine libraries to load.
type InitializeFlags uint32

const (
	InitNone            InitializeFlags = 0
	InitCUDA            InitializeFlags = 0x01
	InitOpenCL          InitializeFlags = 0x02
	InitR3DDecoder      InitializeFlags = 0x04 // exclusive with CUDA, OpenCL and Metal
	InitMetal           InitializeFlags = 0x08
	InitDelayGPUCompile InitializeFlags = 0x10
)

var flagNames = []struct {
	flag InitializeFlags
	name string
}{
	{InitCUDA, "cuda"},
	{InitOpenCL, "opencl"},
	{InitR3DDecoder, "r3d-decoder"},
	{InitMetal, "metal"},
	{InitDelayGPUCompile, "delay-gpu-compile"},
}

func (f InitializeFlags) String() string {
	if f == InitNone {
		return "none"
	}
	var parts []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			parts = append(parts, fn.name)
		}
	}
	return strings.Join(parts, "|")
}

// ParseInitializeFlags parses flag names as produced by InitializeFlags.String.
func ParseInitializeFlags(names []string) (InitializeFlags, error) {
	var f InitializeFlags
outer:
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" || n == "none" {
			continue
		}
		for _, fn := range flagNames {
			if fn.name == n {
				f |= fn.flag
				continue outer
			}
		}
		return 0, fmt.Errorf("unknown initialize flag %q", n)
	}
	return f, nil
}

// Validate rejects combinations the engine refuses.
func (f InitializeFlags) Validate() error {
	if f&InitR3DDecoder != 0 && f&(InitCUDA|InitOpenCL|InitMetal) != 0 {
		return fmt.Errorf("initialize flag r3d-decoder cannot be combined with cuda, opencl or metal")
	}
	return nil
}

// FileAccess is the access mode requested when the engine opens a file.
type FileAccess int32

const (
	AccessRead  FileAccess = 1
	AccessWrite FileAccess = 2
)

func (a FileAccess) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	default:
		return fmt.Sprintf("FileAccess(%d)", int32(a))
	}
}

// Valid reports whether a is a documented access mode.
func (a FileAccess) Valid() bool { return a == AccessRead || a == AccessWrite }

// FileID is the quick identification result for a path.
type FileID int32

const (
	FileUnknown FileID = 0
	FileR3D     FileID = 1
	FileNevNraw FileID = 3
	FileR3DNE   FileID = 4
)

func (f FileID) String() string {
	switch f {
	case FileR3D:
		return "r3d"
	case FileNevNraw:
		return "nev-nraw"
	case FileR3DNE:
		return "r3d-ne"
	default:
		return "unknown"
	}
}
