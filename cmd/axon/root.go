package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "axon",
	Short: "Axon inspects and replays typed pipeline artifacts",
	Long: `Axon works with the artifacts written by axon circuits: schematics,
timelines, projections and sampling stats. It can also run a demo order
pipeline with the configuration taken from the environment.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (YAML or JSON). Defaults to $AXON_CONFIG")
	rootCmd.PersistentFlags().Bool("raw", false, "Print markdown without rendering")
}
