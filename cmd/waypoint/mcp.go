package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/demo"
	"github.com/aretw0/waypoint/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes the journeys as MCP tools, so AI agents can start journeys, fire
events and navigate back.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		// Logs go to Stderr so they never corrupt JSON-RPC on Stdout.
		if err := newLogger(cmd, cfg); err != nil {
			return err
		}
		logger := loggerFrom(cmd.Context())

		eng, err := waypoint.New(
			waypoint.WithBuilders(demo.Builder()),
			waypoint.WithLogger(logger),
		)
		if err != nil {
			return err
		}
		srv := mcp.NewServer(eng.Manager, waypoint.Version,
			mcp.WithEvents(demo.Events()...),
			mcp.WithLogger(logger),
		)

		transport, _ := cmd.Flags().GetString("transport")
		switch transport {
		case "stdio":
			logger.Info("Starting waypoint MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			port, _ := cmd.Flags().GetInt("port")
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err := srv.ServeSSE(ctx, fmt.Sprintf(":%d", port), fmt.Sprintf("http://localhost:%d", port))
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logger.Info("MCP Server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8081, "Port to listen on (only for SSE)")
}
