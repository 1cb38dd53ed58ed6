package main

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/r3d-bridge/decoder"
	"github.com/wippyai/r3d-bridge/status"
)

type decodeFlags struct {
	frames      string
	kind        string
	mode        string
	pixel       string
	io          string
	outDir      string
	track       int
	jobs        int
	metadata    bool
	failFast    bool
	interactive bool
}

func newDecodeCommand(ctx *commandContext) *cobra.Command {
	var flags decodeFlags

	cmd := &cobra.Command{
		Use:   "decode <clip>",
		Short: "Decode frames of a clip",
		Long: `Decode frames of a clip concurrently.

The r3d kind produces processed images in the requested pixel type. The
async and gpu kinds produce the compressed frame data handed to GPU
decompression.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd, ctx, args[0], flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.frames, "frames", "f", "0", `Frames to decode, e.g. "0-9,12" or "all"`)
	f.StringVarP(&flags.kind, "kind", "k", "r3d", "Decoder: r3d, async or gpu")
	f.StringVarP(&flags.mode, "mode", "m", "", "Decode mode override, e.g. half-good")
	f.StringVarP(&flags.pixel, "pixel", "p", "", "Pixel type override for the r3d kind, e.g. bgra8")
	f.StringVar(&flags.io, "io", "", "I/O backend override: none, filesystem or streams")
	f.StringVarP(&flags.outDir, "out", "o", "", "Write each decoded frame as a raw file into this directory")
	f.IntVar(&flags.track, "track", 0, "Video track")
	f.IntVarP(&flags.jobs, "jobs", "j", runtime.NumCPU(), "Maximum jobs in flight")
	f.BoolVar(&flags.metadata, "metadata", true, "Request per-frame metadata")
	f.BoolVar(&flags.failFast, "fail-fast", false, "Stop submitting after the first failed frame")
	f.BoolVarP(&flags.interactive, "interactive", "i", false, "Show a live progress view")
	return cmd
}

func runDecode(cmd *cobra.Command, ctx *commandContext, clipArg string, flags decodeFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	opts := runnerOptions{
		kind:     flags.kind,
		mode:     cfg.Mode(),
		pixel:    cfg.PixelType(),
		track:    flags.track,
		metadata: flags.metadata,
		outDir:   flags.outDir,
	}
	if flags.mode != "" {
		if opts.mode, err = status.ParseMode(flags.mode); err != nil {
			return err
		}
	}
	if flags.pixel != "" {
		if opts.pixel, err = status.ParsePixelType(flags.pixel); err != nil {
			return err
		}
	}

	session, err := ctx.openEngine()
	if err != nil {
		return err
	}
	defer session.Close()

	io, err := installBackend(session.sdk, cfg, flags.io)
	if err != nil {
		return err
	}
	defer io.Close()

	path, err := io.clipPath(clipArg)
	if err != nil {
		return err
	}
	clip, err := session.sdk.OpenClip(path)
	if err != nil {
		return err
	}
	defer clip.Close()

	frames, err := parseFrames(flags.frames, clip.FrameCount())
	if err != nil {
		return err
	}

	runner, err := newFrameRunner(session.sdk, clip, cfg.DecoderOptions(), opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := runner.Close(); err != nil {
			decoder.Logger().Warn("close decoder", zap.Error(err))
		}
	}()

	run := func(rctx context.Context, progress func(frameResult)) ([]frameResult, error) {
		return runner.run(rctx, frames, flags.jobs, flags.failFast, progress)
	}

	out := cmd.OutOrStdout()
	start := time.Now()
	var results []frameResult
	if flags.interactive && isTerminal(out) {
		title := fmt.Sprintf("%s • %s • %d frames", clipArg, opts.kind, len(frames))
		results, err = runInteractive(cmd.Context(), out, title, len(frames), run)
	} else {
		if flags.interactive {
			fmt.Fprintln(cmd.ErrOrStderr(), "output is not a terminal; progress view disabled")
		}
		results, err = run(cmd.Context(), nil)
	}
	elapsed := time.Since(start)

	fmt.Fprintln(out, renderResults(results))
	failed, total := summarize(results)
	fmt.Fprintf(out, "Decoded %d/%d frames (%s) in %s\n",
		len(results)-failed, len(results), formatBytes(total), elapsed.Round(time.Millisecond))

	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d frames failed", failed, len(results))
	}
	return nil
}

func renderResults(results []frameResult) string {
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		state, bytes := "ok", formatBytes(r.Bytes)
		if r.Err != nil {
			state, bytes = r.Err.Error(), "-"
		}
		rows = append(rows, []string{
			strconv.Itoa(r.Frame),
			bytes,
			r.Timecode,
			r.Elapsed.Round(time.Millisecond).String(),
			state,
		})
	}
	return renderTable(
		[]string{"Frame", "Bytes", "Timecode", "Time", "Status"},
		rows,
		[]columnAlignment{alignRight, alignRight, alignLeft, alignRight, alignLeft},
	)
}

func summarize(results []frameResult) (failed, bytes int) {
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		bytes += r.Bytes
	}
	return failed, bytes
}

func formatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
