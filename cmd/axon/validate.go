package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/axon/internal/cli"
)

var validateCmd = &cobra.Command{
	Use:   "validate <schematic.json>...",
	Short: "Validate persisted schematics",
	Long:  `Crawls each schematic from its Ingress node and reports dead edges or unreachable nodes, including inside subgraphs.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cli.Validate(cmd.OutOrStdout(), args); err != nil {
			return err
		}
		cmd.Println("Schematic is valid!")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
