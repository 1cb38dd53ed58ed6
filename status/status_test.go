package status

import (
	"strings"
	"testing"
)

func TestStatusString(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"decode ok", DecodeOK.String(), "DSDecodeOK"},
		{"decode cancelled", DecodeCancelled.String(), "DSCancelled"},
		{"decode gap", DecodeStatus(2).String(), "DecodeStatus(2)"},
		{"r3d clip", R3DInvalidJobParameterClip.String(), "R3DStatus_InvalidJobParameter_clip"},
		{"r3d unknown", R3DStatus(99).String(), "R3DStatus(99)"},
		{"init metal", InitMetalNotAvailable.String(), "ISMetalNotAvailable"},
		{"load loaded", LoadClipLoaded.String(), "LSClipLoaded"},
		{"load unknown", LoadStatus(-1).String(), "LoadStatus(-1)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestStatusKnown(t *testing.T) {
	if DecodeStatus(2).Known() {
		t.Error("DecodeStatus 2 is not a documented code")
	}
	if !DecodeDecoderNotOpened.Known() {
		t.Error("DecodeDecoderNotOpened should be known")
	}
	if R3DStatus(15).Known() {
		t.Error("R3DStatus 15 is not a documented code")
	}
	if !DecodeOK.OK() || DecodeFailed.OK() {
		t.Error("DecodeStatus.OK mismatch")
	}
	if !R3DOK.OK() || !InitializeOK.OK() || !LoadClipLoaded.OK() {
		t.Error("success codes should report OK")
	}
}

func TestModeRoundTrip(t *testing.T) {
	for m := range modeInfo {
		parsed, err := ParseMode(m.String())
		if err != nil {
			t.Fatalf("ParseMode(%q): %v", m.String(), err)
		}
		if parsed != m {
			t.Errorf("ParseMode(%q) = %v, want %v", m.String(), parsed, m)
		}
	}
	if _, err := ParseMode("bogus"); err == nil {
		t.Error("expected error for unknown mode")
	}
	if VideoDecodeMode(1).Divisor() != 0 {
		t.Error("unknown mode should have divisor 0")
	}
}

func TestPixelTypeRoundTrip(t *testing.T) {
	for p := range pixelInfo {
		parsed, err := ParsePixelType(p.String())
		if err != nil {
			t.Fatalf("ParsePixelType(%q): %v", p.String(), err)
		}
		if parsed != p {
			t.Errorf("got %v, want %v", parsed, p)
		}
	}
	if !strings.HasPrefix(VideoPixelType(7).String(), "VideoPixelType(") {
		t.Errorf("unexpected name %q", VideoPixelType(7).String())
	}
}

func TestBufferSize(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		mode    VideoDecodeMode
		pixel   VideoPixelType
		want    int
		wantErr bool
	}{
		{"full bgra8", 1920, 1080, ModeFullResPremium, PixelBGRA8Interleaved, 1920 * 1080 * 4, false},
		{"half rgb16", 1920, 1080, ModeHalfResGood, PixelRGB16Interleaved, 960 * 540 * 6, false},
		{"quarter planar", 4096, 2160, ModeQuarterResGood, PixelRGB16Planar, 1024 * 540 * 2 * 3, false},
		{"sixteenth bgr8", 8192, 4320, ModeSixteenthResGood, PixelBGR8Interleaved, 512 * 270 * 3, false},
		{"unknown mode", 100, 100, VideoDecodeMode(5), PixelBGR8Interleaved, 0, true},
		{"unknown pixel", 100, 100, ModeFullResPremium, VideoPixelType(5), 0, true},
		{"zero width", 0, 100, ModeFullResPremium, PixelBGR8Interleaved, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BufferSize(tt.w, tt.h, tt.mode, tt.pixel)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("BufferSize = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestInitializeFlags(t *testing.T) {
	f, err := ParseInitializeFlags([]string{"cuda", " OpenCL ", ""})
	if err != nil {
		t.Fatal(err)
	}
	if f != InitCUDA|InitOpenCL {
		t.Errorf("flags = %v", f)
	}
	if f.String() != "cuda|opencl" {
		t.Errorf("String() = %q", f.String())
	}
	if err := f.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if err := (InitR3DDecoder | InitCUDA).Validate(); err == nil {
		t.Error("r3d-decoder with cuda should be rejected")
	}
	if _, err := ParseInitializeFlags([]string{"vulkan"}); err == nil {
		t.Error("expected error for unknown flag")
	}
	if InitNone.String() != "none" {
		t.Errorf("InitNone.String() = %q", InitNone.String())
	}
}

func TestFileAccess(t *testing.T) {
	if !AccessRead.Valid() || !AccessWrite.Valid() || FileAccess(3).Valid() {
		t.Error("FileAccess.Valid mismatch")
	}
	if AccessWrite.String() != "write" {
		t.Errorf("String() = %q", AccessWrite.String())
	}
}
