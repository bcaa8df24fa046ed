package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/chatflow/internal/config"
	"github.com/aretw0/chatflow/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "chatflow",
	Short: "Chatflow builds and checks chatbot conversation flows",
	Long: `Chatflow edits chatbot flows made of text and image message nodes.
A node may have at most one outgoing edge, and a flow can only be saved
when it has no loops and a single entry node.`,
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
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level override: debug, info, warn or error")
}

// loadConfig reads --config and applies the --log-level override.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.LogLevel = level
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, json bool) *slog.Logger {
	if json {
		return logging.NewJSON(cfg.Level())
	}
	return logging.New(cfg.Level())
}
