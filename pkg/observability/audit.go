package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/chatflow/pkg/domain"
)

// AuditHooks logs editor events. Rejected connections and failed saves are
// logged at info level, everything else at debug.
func AuditHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnConnect: func(e *domain.ConnectEvent) {
			level := slog.LevelDebug
			if !e.Accepted {
				level = slog.LevelInfo
			}
			logger.Log(context.Background(), level, "Connect attempt",
				"source", e.Connection.Source,
				"target", e.Connection.Target,
				"accepted", e.Accepted,
			)
		},
		OnRecord: func(e *domain.HistoryEvent) {
			logger.Debug("History recorded", "reason", e.Reason, "past", e.PastLen, "nodes", e.NodesCount)
		},
		OnUndo: func(e *domain.HistoryEvent) {
			logger.Debug("Undo", "past", e.PastLen, "future", e.FutureLen)
		},
		OnRedo: func(e *domain.HistoryEvent) {
			logger.Debug("Redo", "past", e.PastLen, "future", e.FutureLen)
		},
		OnSave: func(e *domain.SaveEvent) {
			level := slog.LevelDebug
			if e.Verdict != domain.VerdictOK {
				level = slog.LevelInfo
			}
			logger.Log(context.Background(), level, "Save validated",
				"verdict", e.Verdict,
				"offenders", e.Offenders,
				"nodes", e.NodesCount,
				"edges", e.EdgesCount,
			)
		},
		OnSuggest: func(e *domain.SuggestEvent) {
			logger.Debug("Suggestion returned", "node_id", e.NodeID, "duration", e.Duration, "is_error", e.IsError)
		},
	}
}
