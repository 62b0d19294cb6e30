package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/axon/internal/cli"
)

var graphCmd = &cobra.Command{
	Use:   "graph <schematic.json>",
	Short: "Export a circuit schematic as a Mermaid diagram",
	Long:  `Reads a persisted schematic and outputs a Mermaid diagram (graph TD). With --timeline, visited nodes are highlighted.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		timeline, _ := cmd.Flags().GetString("timeline")
		return cli.Graph(cmd.OutOrStdout(), cli.GraphOptions{SchematicPath: args[0], TimelinePath: timeline})
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("timeline", "", "Timeline file to overlay")
}
