package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/axon/internal/cli"
)

var replayCmd = &cobra.Command{
	Use:   "replay <timeline.json>",
	Short: "Step through a timeline one event at a time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")
		delay, _ := cmd.Flags().GetDuration("delay")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.Replay(ctx, cmd.OutOrStdout(), cli.ReplayOptions{TimelinePath: args[0], Delay: delay}, cli.Renderer(cmd.OutOrStdout(), raw))
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().Duration("delay", 0, "Pause between frames (e.g. 500ms)")
}
