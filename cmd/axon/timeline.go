package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/axon/internal/cli"
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Work with exported timelines",
}

var timelineShowCmd = &cobra.Command{
	Use:   "show <timeline.json>",
	Short: "Print a timeline as a table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")
		return cli.ShowTimeline(cmd.OutOrStdout(), args[0], cli.Renderer(cmd.OutOrStdout(), raw))
	},
}

var timelineProjectCmd = &cobra.Command{
	Use:   "project <timeline.json>",
	Short: "Write public and internal projections of a timeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		service, _ := cmd.Flags().GetString("service")
		circuit, _ := cmd.Flags().GetString("circuit")
		schematic, _ := cmd.Flags().GetString("schematic")
		return cli.ProjectTimeline(cmd.OutOrStdout(), cli.ProjectOptions{
			TimelinePath:  args[0],
			OutDir:        out,
			Service:       service,
			Circuit:       circuit,
			SchematicPath: schematic,
		})
	},
}

func init() {
	rootCmd.AddCommand(timelineCmd)
	timelineCmd.AddCommand(timelineShowCmd, timelineProjectCmd)

	timelineProjectCmd.Flags().String("out", ".", "Directory receiving trace.public.json and trace.internal.json")
	timelineProjectCmd.Flags().String("service", "axon", "Service name for the public projection")
	timelineProjectCmd.Flags().String("circuit", "", "Circuit name (defaults to the schematic name)")
	timelineProjectCmd.Flags().String("schematic", "", "Schematic file used to resolve node kinds")
}
