package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the bridge and engine versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := ctx.openEngine()
			if err != nil {
				return err
			}
			defer session.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "r3d-bridge %s\n", version)
			fmt.Fprintf(out, "engine     %s\n", session.sdk.Version())
			return nil
		},
	}
}
