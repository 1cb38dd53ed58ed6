package main

import (
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCommand() *cobra.Command {
	var configFlag string
	var simulate bool

	ctx := newCommandContext(&configFlag, &simulate)

	rootCmd := &cobra.Command{
		Use:           "r3d",
		Short:         "Decode R3D clips through the RED engine",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVar(&simulate, "simulate", false, "Use the in-process simulated engine instead of the native library")

	rootCmd.AddCommand(newVersionCommand(ctx))
	rootCmd.AddCommand(newProbeCommand(ctx))
	rootCmd.AddCommand(newDecodeCommand(ctx))
	rootCmd.AddCommand(newMakeClipCommand())
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
