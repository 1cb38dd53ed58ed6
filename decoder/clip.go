package decoder

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/r3d-bridge/errors"
	"github.com/wippyai/r3d-bridge/sdk"
	"github.com/wippyai/r3d-bridge/status"
)

// Clip is an open R3D clip.
type Clip struct {
	sdk    *SDK
	ref    sdk.Ref
	path   string
	info   sdk.ClipInfo
	closed atomic.Bool
}

// OpenClip opens the clip at path. With an I/O backend installed the engine
// reads it through the backend.
func (s *SDK) OpenClip(path string) (*Clip, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	ref, ls := s.engine.OpenClip(path)
	if !ls.OK() {
		err := errors.FromLoadStatus(ls)
		err.Path = []string{path}
		return nil, err
	}
	c := &Clip{sdk: s, ref: ref, path: path, info: s.engine.ClipInfo(ref)}
	Logger().Debug("clip opened",
		zap.String("path", path),
		zap.Int("width", c.info.Width),
		zap.Int("height", c.info.Height),
		zap.Int("frames", c.info.FrameCount))
	return c, nil
}

// Path returns the path the clip was opened from.
func (c *Clip) Path() string { return c.path }

// Info returns the clip properties read at open.
func (c *Clip) Info() sdk.ClipInfo { return c.info }

func (c *Clip) Width() int           { return c.info.Width }
func (c *Clip) Height() int          { return c.info.Height }
func (c *Clip) FrameCount() int      { return c.info.FrameCount }
func (c *Clip) VideoTrackCount() int { return c.info.TrackCount }
func (c *Clip) FrameRate() float64   { return c.info.FrameRate }

// BufferSize returns the output size needed to decode one frame at mode into
// pixel type p.
func (c *Clip) BufferSize(mode status.VideoDecodeMode, p status.VideoPixelType) (int, error) {
	n, err := status.BufferSize(c.info.Width, c.info.Height, mode, p)
	if err != nil {
		return 0, errors.Wrap(errors.PhaseRuntime, errors.KindInvalidInput, err, "buffer size")
	}
	return n, nil
}

// AllocateBuffer returns an aligned buffer sized for one frame at mode and p.
func (c *Clip) AllocateBuffer(mode status.VideoDecodeMode, p status.VideoPixelType) (*AlignedBuffer, error) {
	n, err := c.BufferSize(mode, p)
	if err != nil {
		return nil, err
	}
	return NewAlignedBuffer(n)
}

// Close releases the clip. Jobs referring to it must have completed.
func (c *Clip) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.sdk.engine.CloseClip(c.ref)
	Logger().Debug("clip closed", zap.String("path", c.path))
	return nil
}

// engineRef returns the engine clip, or 0 once closed.
func (c *Clip) engineRef() sdk.Ref {
	if c == nil || c.closed.Load() {
		return 0
	}
	return c.ref
}
