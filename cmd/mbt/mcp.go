package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/mbtassist"
	"github.com/aretw0/mbtassist/pkg/adapters/mcp"
	"github.com/aretw0/mbtassist/pkg/generator"
	"github.com/spf13/cobra"
)

func newMCPCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Exposes test generation to AI agents as MCP tools
(generate_test_cases, validate_model, render_mermaid).

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("transport") {
				a.cfg.MCP.Transport, _ = cmd.Flags().GetString("transport")
			}
			if cmd.Flags().Changed("port") {
				a.cfg.MCP.Port, _ = cmd.Flags().GetInt("port")
			}

			srv := mcp.NewServer(
				mcp.WithVersion(mbtassist.Version),
				mcp.WithStore(a.store),
				mcp.WithLogger(a.logger),
				mcp.WithGeneratorOptions(
					generator.WithSentinel(a.cfg.Sentinel),
					generator.WithMaxPaths(a.cfg.MaxPaths),
				),
			)

			switch a.cfg.MCP.Transport {
			case "stdio":
				// Logs go to stderr; stdout carries JSON-RPC.
				a.logger.Info("Starting MCP Server (Stdio)")
				return srv.ServeStdio()
			case "sse":
				a.logger.Info("Starting MCP Server (SSE)", "port", a.cfg.MCP.Port)

				// Create a context that cancels on interrupt signal
				ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
				defer stop()
				return srv.ServeSSE(ctx, a.cfg.MCP.Port)
			default:
				return fmt.Errorf("unknown transport %q (want stdio or sse)", a.cfg.MCP.Transport)
			}
		},
	}

	cmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	cmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
	return cmd
}
