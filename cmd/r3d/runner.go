package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/r3d-bridge/decoder"
	"github.com/wippyai/r3d-bridge/future"
	"github.com/wippyai/r3d-bridge/sdk"
	"github.com/wippyai/r3d-bridge/status"
)

// frameResult is the outcome of decoding one frame.
type frameResult struct {
	Frame    int
	Bytes    int
	Timecode string
	File     string
	Elapsed  time.Duration
	Err      error
}

type runnerOptions struct {
	kind     string
	mode     status.VideoDecodeMode
	pixel    status.VideoPixelType
	track    int
	metadata bool
	outDir   string
}

// frameRunner decodes frames of one clip with one decoder.
type frameRunner struct {
	sdk   *decoder.SDK
	clip  *decoder.Clip
	opts  runnerOptions
	r3d   *decoder.Decoder
	async *decoder.AsyncDecoder
	gpu   *decoder.GPUDecoder
}

func newFrameRunner(s *decoder.SDK, clip *decoder.Clip, decOpts sdk.DecoderOptions, opts runnerOptions) (*frameRunner, error) {
	r := &frameRunner{sdk: s, clip: clip, opts: opts}
	var err error
	switch opts.kind {
	case "r3d":
		r.r3d, err = s.OpenDecoder(decOpts)
	case "async":
		r.async, err = s.OpenAsyncDecoder()
	case "gpu":
		r.gpu, err = s.OpenGPUDecoder()
		if err == nil && !r.gpu.SupportedForClip(clip) {
			_ = r.gpu.Close()
			return nil, fmt.Errorf("clip %s cannot be decompressed on the GPU", clip.Path())
		}
	default:
		return nil, fmt.Errorf("unknown decoder kind %q (want r3d, async or gpu)", opts.kind)
	}
	if err != nil {
		return nil, err
	}
	if opts.outDir != "" {
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			_ = r.Close()
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}
	return r, nil
}

func (r *frameRunner) Close() error {
	switch {
	case r.r3d != nil:
		return r.r3d.Close()
	case r.async != nil:
		return r.async.Close()
	case r.gpu != nil:
		return r.gpu.Close()
	}
	return nil
}

// run decodes frames with at most jobs in flight and reports each result to
// progress as it lands. Results are returned in frame-list order. With
// failFast the first failure cancels frames not yet submitted.
func (r *frameRunner) run(ctx context.Context, frames []int, jobs int, failFast bool, progress func(frameResult)) ([]frameResult, error) {
	if jobs < 1 {
		jobs = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	results := make([]frameResult, len(frames))
	for i, frame := range frames {
		g.Go(func() error {
			res := frameResult{Frame: frame}
			if err := gctx.Err(); err != nil {
				res.Err = err
			} else {
				res = r.decode(gctx, frame)
			}
			results[i] = res
			if progress != nil {
				progress(res)
			}
			if res.Err != nil && failFast {
				return fmt.Errorf("frame %d: %w", frame, res.Err)
			}
			return nil
		})
	}
	return results, g.Wait()
}

func (r *frameRunner) decode(ctx context.Context, frame int) frameResult {
	start := time.Now()
	res := frameResult{Frame: frame}
	if r.r3d != nil {
		res.Err = r.decodeR3D(ctx, &res)
	} else {
		res.Err = r.decompress(ctx, &res)
	}
	res.Elapsed = time.Since(start)
	return res
}

func (r *frameRunner) decodeR3D(ctx context.Context, res *frameResult) error {
	job := r.sdk.NewDecodeJob()
	defer closeJob(job)

	job.SetClip(r.clip)
	job.SetMode(r.opts.mode)
	job.SetPixelType(r.opts.pixel)
	job.SetVideoTrack(r.opts.track)
	job.SetVideoFrame(res.Frame)
	if r.opts.metadata {
		job.AllocateFrameMetadata()
	}
	if err := job.AllocateInternalBuffer(); err != nil {
		return err
	}

	f, err := r.r3d.Decode(job)
	if err != nil {
		return err
	}
	if _, err := await(ctx, f, job.Abort); err != nil {
		return err
	}
	return r.collect(res, job, r.opts.pixel.String())
}

func (r *frameRunner) decompress(ctx context.Context, res *frameResult) error {
	job := r.sdk.NewAsyncJob()
	defer closeJob(job)

	job.SetClip(r.clip)
	job.SetMode(r.opts.mode)
	job.SetVideoTrack(r.opts.track)
	job.SetVideoFrame(res.Frame)
	if r.opts.metadata {
		job.AllocateFrameMetadata()
	}
	if err := job.AllocateInternalBuffer(); err != nil {
		return err
	}

	var f *future.Future[*decoder.AsyncJob]
	var err error
	if r.async != nil {
		f, err = r.async.DecodeForGPU(job)
	} else {
		f, err = r.gpu.DecodeForGPU(job)
	}
	if err != nil {
		return err
	}
	if _, err := await(ctx, f, job.Abort); err != nil {
		return err
	}
	return r.collect(res, job, "compressed")
}

// decodedJob is the read side shared by both job kinds.
type decodedJob interface {
	Output() []byte
	Metadata() (map[string]string, error)
}

func (r *frameRunner) collect(res *frameResult, job decodedJob, layout string) error {
	out := job.Output()
	res.Bytes = len(out)
	if r.opts.metadata {
		meta, err := job.Metadata()
		if err != nil {
			return err
		}
		res.Timecode = meta["timecode"]
	}
	if r.opts.outDir == "" {
		return nil
	}
	base := strings.TrimSuffix(filepath.Base(r.clip.Path()), filepath.Ext(r.clip.Path()))
	name := filepath.Join(r.opts.outDir, fmt.Sprintf("%s_%06d.%s.raw", base, res.Frame, layout))
	if err := os.WriteFile(name, out, 0o644); err != nil {
		return fmt.Errorf("write frame %d: %w", res.Frame, err)
	}
	res.File = name
	return nil
}

// await waits for f. If ctx ends first the job is aborted and its
// settlement awaited so the caller owns it again before closing it.
func await[J any](ctx context.Context, f *future.Future[J], abort func()) (J, error) {
	j, err := f.Wait(ctx)
	if err == nil || err != ctx.Err() {
		return j, err
	}
	abort()
	j, _ = f.Wait(context.Background())
	return j, err
}

func closeJob(j interface{ Close() error }) {
	if err := j.Close(); err != nil {
		decoder.Logger().Warn("close job", zap.Error(err))
	}
}
