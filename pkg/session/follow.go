package session

import (
	"context"
	"fmt"

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/pkg/ports"
)

// OpenFrom opens a session seeded from src.
func (m *Manager) OpenFrom(ctx context.Context, sessionID string, src ports.FlowSource) (string, *chatflow.Editor, error) {
	g, err := src.Load(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load flow: %w", err)
	}
	return m.Open(ctx, sessionID, &g)
}

// Follow keeps an open session in step with src. Every change signaled by
// the source is loaded and applied with Editor.Replace, so it stays
// undoable. A source that cannot be watched is a no-op. Follow blocks
// until ctx is done or the watch channel closes.
func (m *Manager) Follow(ctx context.Context, sessionID string, src ports.FlowSource) error {
	watchable, ok := src.(ports.Watchable)
	if !ok {
		return nil
	}
	changes, err := watchable.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to watch flow: %w", err)
	}

	for range changes {
		ed, err := m.Get(ctx, sessionID)
		if err != nil {
			return err
		}
		g, err := src.Load(ctx)
		if err != nil {
			// Keep the last good flow; the next save of the document retries.
			m.logger.Warn("Reload failed", "session_id", sessionID, "error", err)
			continue
		}
		ed.Replace(g)
		m.logger.Info("Session reloaded", "session_id", sessionID, "nodes", len(g.Nodes))
	}
	return nil
}
