package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/internal/config"
	"github.com/aretw0/chatflow/pkg/adapters/flowfile"
	"github.com/aretw0/chatflow/pkg/adapters/memory"
	"github.com/aretw0/chatflow/pkg/observability"
	"github.com/aretw0/chatflow/pkg/session"
	"github.com/aretw0/chatflow/pkg/suggest"
)

// defaultSessionID names the session seeded from --flow.
const defaultSessionID = "default"

// newSessionManager wires editors with the configured history, policy and
// suggestion provider. metrics may be nil.
func newSessionManager(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *session.Manager {
	provider := suggest.NewBreaker(suggest.NewMock(cfg.Suggest.Delay), cfg.BreakerSettings(), logger)

	opts := []chatflow.Option{
		chatflow.WithLogger(logger),
		chatflow.WithHistoryLimit(cfg.HistoryLimit),
		chatflow.WithBurstWindow(cfg.BurstWindow),
		chatflow.WithPolicy(cfg.Policy()),
		chatflow.WithSuggester(provider),
		chatflow.WithHooks(observability.AuditHooks(logger)),
	}
	if metrics != nil {
		opts = append(opts, chatflow.WithHooks(metrics.Hooks()))
	}

	return session.NewManager(memory.NewStore(),
		session.WithEditorOptions(opts...),
		session.WithLogger(logger),
	)
}

// seedSession opens the default session from a flow file, when one is
// given, and returns the file source for following it.
func seedSession(ctx context.Context, mgr *session.Manager, path string, logger *slog.Logger) (*flowfile.Source, error) {
	if path == "" {
		return nil, nil
	}
	src := flowfile.NewSource(path, flowfile.WithLogger(logger))
	if _, _, err := mgr.OpenFrom(ctx, defaultSessionID, src); err != nil {
		return nil, fmt.Errorf("failed to seed session from %s: %w", path, err)
	}
	return src, nil
}
