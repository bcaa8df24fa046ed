package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/chatflow/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes flow validation as MCP tools, so AI agents can check flows
they generate before handing them to the editor.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")
		flowPath, _ := cmd.Flags().GetString("flow")

		// Logs go to Stderr so they never corrupt JSON-RPC on Stdout.
		logger := newLogger(cfg, false)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sessions := newSessionManager(cfg, logger, nil)
		if _, err := seedSession(ctx, sessions, flowPath, logger); err != nil {
			return err
		}
		srv := mcp.NewServer(mcp.WithSessions(sessions), mcp.WithLogger(logger))

		switch transport {
		case "stdio":
			logger.Info("Starting Chatflow MCP Server (Stdio)")
			return srv.ServeStdio()
		case "sse":
			logger.Info("Starting Chatflow MCP Server (SSE)", "port", port)
			if err := srv.ServeSSE(ctx, port); err != nil {
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
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
	mcpCmd.Flags().String("flow", "", "Flow file (YAML or JSON) to open as the \"default\" session")
}
