package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var ioFlag string

	cmd := &cobra.Command{
		Use:   "probe <clip>...",
		Short: "Show clip properties",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			session, err := ctx.openEngine()
			if err != nil {
				return err
			}
			defer session.Close()

			io, err := installBackend(session.sdk, cfg, ioFlag)
			if err != nil {
				return err
			}
			defer io.Close()

			gpu, gpuErr := session.sdk.OpenGPUDecoder()
			if gpuErr == nil {
				defer gpu.Close()
			}

			mode, pixel := cfg.Mode(), cfg.PixelType()
			rows := make([][]string, 0, len(args))
			var failed int
			for _, arg := range args {
				path, err := io.clipPath(arg)
				if err != nil {
					return err
				}
				kind := session.sdk.IdentifyFile(path)
				clip, err := session.sdk.OpenClip(path)
				if err != nil {
					failed++
					rows = append(rows, []string{arg, kind.String(), "-", "-", "-", "-", "-", "-", err.Error()})
					continue
				}
				size := "-"
				if n, err := clip.BufferSize(mode, pixel); err == nil {
					size = strconv.Itoa(n)
				}
				supported := "n/a"
				if gpuErr == nil {
					supported = yesNo(gpu.SupportedForClip(clip))
				}
				rows = append(rows, []string{
					arg,
					kind.String(),
					fmt.Sprintf("%dx%d", clip.Width(), clip.Height()),
					strconv.Itoa(clip.FrameCount()),
					strconv.Itoa(clip.VideoTrackCount()),
					strconv.FormatFloat(clip.FrameRate(), 'f', 3, 64),
					size,
					supported,
					"",
				})
				if err := clip.Close(); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Clip", "Type", "Resolution", "Frames", "Tracks", "FPS", "Frame Bytes", "GPU", "Error"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft},
			))
			fmt.Fprintf(out, "Frame bytes at %s / %s\n", mode, pixel)
			if failed > 0 {
				return fmt.Errorf("%d of %d clips could not be opened", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ioFlag, "io", "", "I/O backend override: none, filesystem or streams")
	return cmd
}
