package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/internal/presentation/tui"
	httpAdapter "github.com/aretw0/chatflow/pkg/adapters/http"
	"github.com/aretw0/chatflow/pkg/adapters/mcp"
	"github.com/aretw0/chatflow/pkg/observability"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP editing server",
	Long: `Starts the editing server: sessions, the connection gate, undo/redo and
save validation over a JSON API, with Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Addr = addr
		}
		flowPath, _ := cmd.Flags().GetString("flow")
		mcpPort, _ := cmd.Flags().GetInt("mcp-port")
		watch, _ := cmd.Flags().GetBool("watch")

		logger := newLogger(cfg, true)
		metrics := observability.NewMetrics()
		sessions := newSessionManager(cfg, logger, metrics)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		src, err := seedSession(ctx, sessions, flowPath, logger)
		if err != nil {
			return err
		}

		handler, err := httpAdapter.NewHandler(sessions,
			httpAdapter.WithMetrics(metrics),
			httpAdapter.WithLogger(logger),
		)
		if err != nil {
			return fmt.Errorf("failed to build HTTP handler: %w", err)
		}

		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		tui.PrintBanner(os.Stderr, strings.TrimSpace(chatflow.Version))

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("Starting Chatflow Server", "address", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			logger.Info("Start shutdown")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
				return srv.Close()
			}
			return nil
		})
		if watch && src != nil {
			g.Go(func() error {
				return sessions.Follow(ctx, defaultSessionID, src)
			})
		}
		if mcpPort > 0 {
			mcpServer := mcp.NewServer(mcp.WithSessions(sessions), mcp.WithLogger(logger))
			g.Go(func() error {
				return mcpServer.ServeSSE(ctx, mcpPort)
			})
		}

		if err := g.Wait(); err != nil {
			return err
		}
		logger.Info("Chatflow Server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (overrides config)")
	serveCmd.Flags().String("flow", "", "Flow file (YAML or JSON) to open as the \"default\" session")
	serveCmd.Flags().Bool("watch", false, "Reload the \"default\" session when the --flow file changes")
	serveCmd.Flags().Int("mcp-port", 0, "Also serve MCP over SSE on this port (0 disables)")
}
