package sdktest

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/r3d-bridge/sdk"
)

// HeaderSize is the length of the synthetic clip header.
const HeaderSize = 24

var magic = [4]byte{'R', '3', 'D', 'T'}

// EncodeClip returns a synthetic clip file the engine can open from disk or
// through an I/O backend. payload bytes are appended after the header.
func EncodeClip(info sdk.ClipInfo, payload []byte) []byte {
	b := make([]byte, HeaderSize, HeaderSize+len(payload))
	copy(b[0:4], magic[:])
	binary.LittleEndian.PutUint32(b[4:8], uint32(info.Width))
	binary.LittleEndian.PutUint32(b[8:12], uint32(info.Height))
	binary.LittleEndian.PutUint32(b[12:16], uint32(info.FrameCount))
	binary.LittleEndian.PutUint32(b[16:20], uint32(info.TrackCount))
	binary.LittleEndian.PutUint32(b[20:24], math.Float32bits(float32(info.FrameRate)))
	return append(b, payload...)
}

func decodeHeader(b []byte) (sdk.ClipInfo, bool) {
	if len(b) < HeaderSize || [4]byte(b[0:4]) != magic {
		return sdk.ClipInfo{}, false
	}
	info := sdk.ClipInfo{
		Width:      int(binary.LittleEndian.Uint32(b[4:8])),
		Height:     int(binary.LittleEndian.Uint32(b[8:12])),
		FrameCount: int(binary.LittleEndian.Uint32(b[12:16])),
		TrackCount: int(binary.LittleEndian.Uint32(b[16:20])),
		FrameRate:  float64(math.Float32frombits(binary.LittleEndian.Uint32(b[20:24]))),
	}
	if info.Width <= 0 || info.Height <= 0 || info.FrameCount <= 0 {
		return sdk.ClipInfo{}, false
	}
	return info, true
}
