package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/axon/internal/cli"
)

var statsCmd = &cobra.Command{
	Use:   "stats <stats.json>",
	Short: "Print persisted sampling stats",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")
		return cli.ShowStats(cmd.OutOrStdout(), args[0], cli.Renderer(cmd.OutOrStdout(), raw))
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
