package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/axon/internal/cli"
	inspector "github.com/aretw0/axon/pkg/adapters/http"
	"github.com/aretw0/axon/pkg/adapters/mcp"
	"github.com/aretw0/axon/pkg/adapters/sqlite"
	"github.com/aretw0/axon/pkg/config"
	"github.com/aretw0/axon/pkg/inspect"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [schematic.json...]",
	Short: "Serve persisted artifacts read-only",
	Long: `Starts the read-only inspector over the artifacts named by the configuration
(timeline file, projections directory, stats file, SQLite archive) and the given
schematic files.

Supported Transports:
- http (default): JSON API on the inspector address.
- mcp-stdio: Model Context Protocol over Standard Input/Output.
- mcp-sse: Model Context Protocol over Server-Sent Events.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if addr == "" {
			addr = cfg.Inspector.Addr
		}
		logger, err := cli.NewLogger(cfg)
		if err != nil {
			return err
		}

		sources, err := cli.LoadSchematics(args)
		if err != nil {
			return err
		}
		opts := []inspect.Option{inspect.WithCircuits(sources...), inspect.FromConfig(cfg.Timeline)}
		if cfg.Sinks.SQLitePath != "" {
			archive, err := sqlite.Open(cfg.Sinks.SQLitePath)
			if err != nil {
				return err
			}
			defer archive.Close()
			opts = append(opts, inspect.WithArchive(archive))
		}
		catalog := inspect.New(opts...)

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		switch transport {
		case "http":
			srv := inspector.NewServer(catalog, inspector.WithLogger(logger))
			return cli.Serve(ctx, addr, srv.Handler(), logger)
		case "mcp-stdio":
			// Keep logs off Stdout, which carries JSON-RPC.
			log.SetOutput(os.Stderr)
			return mcp.NewServer(catalog, logger).ServeStdio()
		case "mcp-sse":
			return mcp.NewServer(catalog, logger).ServeSSE(ctx, addr)
		default:
			return fmt.Errorf("unknown transport: %s. Supported: http, mcp-stdio, mcp-sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().String("transport", "http", "Transport: 'http', 'mcp-stdio' or 'mcp-sse'")
	inspectCmd.Flags().String("addr", "", "Listen address (defaults to the configured inspector address)")
}
