package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/axon/internal/cli"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the built-in order pipeline",
	Long: `Runs a sample order pipeline using the process configuration (AXON_* variables
or --config). Timelines, projections and stats are exported as configured. When
the inspector is enabled it keeps serving after the run until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		raw, _ := cmd.Flags().GetBool("raw")
		orders, _ := cmd.Flags().GetInt("orders")
		discount, _ := cmd.Flags().GetFloat64("discount")
		trace, _ := cmd.Flags().GetBool("trace")

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		return cli.RunDemo(ctx, cli.DemoOptions{
			ConfigPath: configPath,
			Orders:     orders,
			Discount:   discount,
			Trace:      trace,
			Raw:        raw,
			Out:        cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().Int("orders", 12, "Number of sample orders to run")
	demoCmd.Flags().Float64("discount", 0, "Discount percent placed on the bus of every execution")
	demoCmd.Flags().Bool("trace", false, "Print OpenTelemetry spans to stderr")
}
