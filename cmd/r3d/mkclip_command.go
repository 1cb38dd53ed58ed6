package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wippyai/r3d-bridge/sdk"
	"github.com/wippyai/r3d-bridge/sdk/sdktest"
)

func newMakeClipCommand() *cobra.Command {
	info := sdk.ClipInfo{Width: 1920, Height: 1080, FrameCount: 48, TrackCount: 1, FrameRate: 24}
	var payload int

	cmd := &cobra.Command{
		Use:         "mkclip <path>",
		Short:       "Write a synthetic clip readable by the simulated engine",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if info.Width <= 0 || info.Height <= 0 || info.FrameCount <= 0 || info.TrackCount <= 0 {
				return fmt.Errorf("width, height, frames and tracks must be positive")
			}
			if payload < 0 {
				return fmt.Errorf("payload must not be negative")
			}
			path := args[0]
			if dir := filepath.Dir(path); dir != "" {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create clip directory: %w", err)
				}
			}
			if err := os.WriteFile(path, sdktest.EncodeClip(info, make([]byte, payload)), 0o644); err != nil {
				return fmt.Errorf("write clip: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %dx%d clip with %d frames to %s\n",
				info.Width, info.Height, info.FrameCount, path)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&info.Width, "width", info.Width, "Frame width")
	f.IntVar(&info.Height, "height", info.Height, "Frame height")
	f.IntVar(&info.FrameCount, "frames", info.FrameCount, "Frame count")
	f.IntVar(&info.TrackCount, "tracks", info.TrackCount, "Video track count")
	f.Float64Var(&info.FrameRate, "fps", info.FrameRate, "Frame rate")
	f.IntVar(&payload, "payload", 0, "Bytes of filler after the header")
	return cmd
}
