package sdktest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wippyai/r3d-bridge/customio"
	"github.com/wippyai/r3d-bridge/sdk"
	"github.com/wippyai/r3d-bridge/status"
)

var testClip = sdk.ClipInfo{Width: 64, Height: 32, FrameCount: 10, TrackCount: 1, FrameRate: 24}

type completion struct {
	token uintptr
	code  int32
}

func newEngine(t *testing.T, opts ...Option) (*Engine, chan completion) {
	t.Helper()
	ch := make(chan completion, 32)
	opts = append([]Option{WithCompletion(func(token uintptr, code int32) {
		ch <- completion{token, code}
	})}, opts...)
	e := New(opts...)
	t.Cleanup(e.Close)
	if s := e.Initialize("/opt/r3d", status.InitNone); s != status.InitializeOK {
		t.Fatalf("Initialize = %s", s)
	}
	return e, ch
}

func receive(t *testing.T, ch chan completion) completion {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(5 * time.Second):
		t.Fatal("no completion")
		return completion{}
	}
}

func openDecode(t *testing.T, e *Engine, frame int) (dec, job sdk.Ref) {
	t.Helper()
	e.AddClip("clip.r3d", testClip)
	clip, ls := e.OpenClip("clip.r3d")
	if ls != status.LoadClipLoaded {
		t.Fatalf("OpenClip = %s", ls)
	}
	dec, rs := e.OpenDecoder(sdk.DecoderR3D, sdk.DecoderOptions{})
	if rs != status.R3DOK {
		t.Fatalf("OpenDecoder = %s", rs)
	}
	size, _ := status.BufferSize(testClip.Width, testClip.Height, status.ModeHalfResGood, status.PixelBGRA8Interleaved)
	job = e.NewJob(sdk.JobDecode)
	e.ConfigureJob(job, sdk.JobParams{
		Output:    make([]byte, size),
		Clip:      clip,
		Frame:     frame,
		Mode:      status.ModeHalfResGood,
		PixelType: status.PixelBGRA8Interleaved,
		Metadata:  true,
	})
	return dec, job
}

func TestInitialize(t *testing.T) {
	e := New()
	defer e.Close()

	if s := e.Initialize("", status.InitNone); s != status.InitInvalidPath {
		t.Errorf("empty path = %s", s)
	}
	if s := e.Initialize("/opt", status.InitR3DDecoder|status.InitCUDA); s != status.InitInternalError {
		t.Errorf("exclusive flags = %s", s)
	}
	if _, ls := e.OpenClip("x"); ls != status.LoadNotInitialized {
		t.Errorf("OpenClip before init = %s", ls)
	}

	failing := New(WithInitializeStatus(status.InitR3DSDKLibraryNotFound))
	defer failing.Close()
	if s := failing.Initialize("/opt", status.InitNone); s != status.InitR3DSDKLibraryNotFound {
		t.Errorf("injected status = %s", s)
	}
}

func TestOpenClipFromDisk(t *testing.T) {
	e, _ := newEngine(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "good.r3d")
	if err := os.WriteFile(good, EncodeClip(testClip, nil), 0o644); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "bad.r3d")
	if err := os.WriteFile(bad, []byte("not a clip"), 0o644); err != nil {
		t.Fatal(err)
	}

	clip, ls := e.OpenClip(good)
	if ls != status.LoadClipLoaded {
		t.Fatalf("good = %s", ls)
	}
	if got := e.ClipInfo(clip); got != testClip {
		t.Errorf("ClipInfo = %+v", got)
	}
	if _, ls := e.OpenClip(bad); ls != status.LoadNotAnR3DFile {
		t.Errorf("bad = %s", ls)
	}
	if _, ls := e.OpenClip(filepath.Join(dir, "missing.r3d")); ls != status.LoadPathNotFound {
		t.Errorf("missing = %s", ls)
	}
	if id := e.IdentifyFile(good); id != status.FileR3D {
		t.Errorf("IdentifyFile(good) = %s", id)
	}
	if id := e.IdentifyFile(bad); id != status.FileUnknown {
		t.Errorf("IdentifyFile(bad) = %s", id)
	}
}

func TestOpenClipThroughIO(t *testing.T) {
	e, ch := newEngine(t)
	streams := customio.NewStreams()
	streams.RegisterBytes("mem://a.r3d", EncodeClip(testClip, nil))
	if err := customio.Install(streams, e); err != nil {
		t.Fatal(err)
	}
	defer customio.Reset()

	clip, ls := e.OpenClip("mem://a.r3d")
	if ls != status.LoadClipLoaded {
		t.Fatalf("OpenClip = %s", ls)
	}
	if e.IOReads() != 1 {
		t.Errorf("IOReads = %d", e.IOReads())
	}
	if _, ls := e.OpenClip("mem://missing.r3d"); ls != status.LoadPathNotFound {
		t.Errorf("unregistered stream = %s", ls)
	}

	dec, _ := e.OpenDecoder(sdk.DecoderAsync, sdk.DecoderOptions{})
	job := e.NewJob(sdk.JobDecompress)
	e.ConfigureJob(job, sdk.JobParams{Clip: clip, Frame: 2, Mode: status.ModeFullResPremium})
	need := e.SizeBufferNeeded(job)
	if need != uint64(testClip.Width*testClip.Height*DecompressBytesPerPixel) {
		t.Fatalf("SizeBufferNeeded = %d", need)
	}
	e.ConfigureJob(job, sdk.JobParams{Output: make([]byte, need), Clip: clip, Frame: 2, Mode: status.ModeFullResPremium})
	if code := e.Submit(dec, job, 7); code != 0 {
		t.Fatalf("Submit = %d", code)
	}
	if c := receive(t, ch); c.token != 7 || c.code != 0 {
		t.Fatalf("completion = %+v", c)
	}
	if e.IOReads() != 2 {
		t.Errorf("worker did not read through I/O: %d", e.IOReads())
	}
	if streams.OpenCount() != 0 {
		t.Errorf("handles leaked: %d", streams.OpenCount())
	}

	// After reset the stream is unreachable for the worker.
	customio.Reset()
	if code := e.Submit(dec, job, 8); code != 0 {
		t.Fatalf("Submit = %d", code)
	}
	if c := receive(t, ch); c.code != int32(status.DecodeCannotReadFromFile) {
		t.Fatalf("after reset = %s", status.DecodeStatus(c.code))
	}
}

func TestDecodeCompletes(t *testing.T) {
	e, ch := newEngine(t)
	dec, job := openDecode(t, e, 3)

	if code := e.Submit(dec, job, 42); code != 0 {
		t.Fatalf("Submit = %s", status.R3DStatus(code))
	}
	c := receive(t, ch)
	if c.token != 42 || c.code != 0 {
		t.Fatalf("completion = %+v", c)
	}
	meta, ok := e.FrameMetadata(job)
	if !ok || meta["frame"] != "3" || meta["timecode"] != "00:00:00:03" {
		t.Errorf("metadata = %v %v", meta, ok)
	}
}

func TestSubmitValidation(t *testing.T) {
	e, _ := newEngine(t)
	dec, job := openDecode(t, e, 0)
	clip, _ := e.OpenClip("clip.r3d")

	tests := []struct {
		name string
		p    sdk.JobParams
		want status.R3DStatus
	}{
		{"no output", sdk.JobParams{Clip: clip, Mode: status.ModeHalfResGood, PixelType: status.PixelBGR8Interleaved}, status.R3DInvalidJobParameterOutputMem},
		{"small output", sdk.JobParams{Output: make([]byte, 8), Clip: clip, Mode: status.ModeHalfResGood, PixelType: status.PixelBGR8Interleaved}, status.R3DInvalidJobParameterOutputMemSize},
		{"frame out of range", sdk.JobParams{Output: make([]byte, 1<<16), Clip: clip, Frame: 10, Mode: status.ModeHalfResGood, PixelType: status.PixelBGR8Interleaved}, status.R3DInvalidJobParameter},
		{"bad mode", sdk.JobParams{Output: make([]byte, 1<<16), Clip: clip, Mode: 99, PixelType: status.PixelBGR8Interleaved}, status.R3DInvalidJobParameterMode},
		{"bad pixel type", sdk.JobParams{Output: make([]byte, 1<<16), Clip: clip, Mode: status.ModeHalfResGood, PixelType: 99}, status.R3DInvalidJobParameterPixelType},
		{"closed clip", sdk.JobParams{Output: make([]byte, 1<<16), Clip: 9999, Mode: status.ModeHalfResGood, PixelType: status.PixelBGR8Interleaved}, status.R3DInvalidJobParameterClip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e.ConfigureJob(job, tt.p)
			if got := status.R3DStatus(e.Submit(dec, job, 1)); got != tt.want {
				t.Errorf("Submit = %s, want %s", got, tt.want)
			}
		})
	}

	async, _ := e.OpenDecoder(sdk.DecoderAsync, sdk.DecoderOptions{})
	if got := status.DecodeStatus(e.Submit(async, job, 1)); got != status.DecodeInvalidParameter {
		t.Errorf("decode job on async decoder = %s", got)
	}
}

func TestManualCompletionOrder(t *testing.T) {
	e, ch := newEngine(t, WithManualCompletion())
	dec, _ := openDecode(t, e, 0)
	clip, _ := e.OpenClip("clip.r3d")
	size, _ := status.BufferSize(testClip.Width, testClip.Height, status.ModeHalfResGood, status.PixelBGRA8Interleaved)

	for frame := range 3 {
		job := e.NewJob(sdk.JobDecode)
		e.ConfigureJob(job, sdk.JobParams{
			Output: make([]byte, size), Clip: clip, Frame: frame,
			Mode: status.ModeHalfResGood, PixelType: status.PixelBGRA8Interleaved,
		})
		if code := e.Submit(dec, job, uintptr(100+frame)); code != 0 {
			t.Fatalf("Submit = %d", code)
		}
	}
	if e.Held() != 3 {
		t.Fatalf("Held = %d", e.Held())
	}
	if !e.Complete(1) {
		t.Fatal("Complete(1) = false")
	}
	if c := receive(t, ch); c.token != 101 {
		t.Errorf("first completion token = %d", c.token)
	}
	if e.Complete(1) {
		t.Error("frame 1 completed twice")
	}
	e.CompleteAll()
	if c := receive(t, ch); c.token != 102 {
		t.Errorf("CompleteAll order: got %d first", c.token)
	}
	if c := receive(t, ch); c.token != 100 {
		t.Errorf("CompleteAll order: got %d last", c.token)
	}
}

func TestAbortAndFailure(t *testing.T) {
	e, ch := newEngine(t, WithManualCompletion())
	dec, job := openDecode(t, e, 4)

	if code := e.Submit(dec, job, 1); code != 0 {
		t.Fatalf("Submit = %d", code)
	}
	if code := e.Submit(dec, job, 2); code != int32(status.R3DInvalidJobParameter) {
		t.Errorf("resubmit while in flight = %s", status.R3DStatus(code))
	}
	e.AbortJob(job)
	e.CompleteAll()
	if c := receive(t, ch); c.code != int32(status.R3DErrorProcessing) {
		t.Errorf("aborted = %s", status.R3DStatus(c.code))
	}

	e.FailFrame(4, int32(status.R3DUnableToUseGPUDevice))
	e.Submit(dec, job, 3)
	e.CompleteAll()
	if c := receive(t, ch); c.code != int32(status.R3DUnableToUseGPUDevice) {
		t.Errorf("injected failure = %s", status.R3DStatus(c.code))
	}

	e.RejectFrame(4, int32(status.R3DErrorProcessing))
	if code := e.Submit(dec, job, 4); code != int32(status.R3DErrorProcessing) {
		t.Errorf("injected reject = %s", status.R3DStatus(code))
	}
	if e.Held() != 0 {
		t.Errorf("rejected job held")
	}
}

func TestLive(t *testing.T) {
	e, _ := newEngine(t)
	dec, job := openDecode(t, e, 0)
	clips, decs, jobs := e.Live()
	if clips != 1 || decs != 1 || jobs != 1 {
		t.Fatalf("Live = %d %d %d", clips, decs, jobs)
	}
	e.ReleaseJob(job)
	e.CloseDecoder(dec)
	clips, decs, jobs = e.Live()
	if decs != 0 || jobs != 0 || clips != 1 {
		t.Fatalf("Live after release = %d %d %d", clips, decs, jobs)
	}
}
