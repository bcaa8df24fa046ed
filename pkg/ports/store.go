package ports

import (
	"context"

	"github.com/aretw0/chatflow"
)

// SessionStore holds the editors of open editing sessions. An editor keeps
// its undo history, so stores hand out the live instance rather than a copy.
type SessionStore interface {
	// Put stores the editor under the session ID, replacing any previous one.
	Put(ctx context.Context, sessionID string, ed *chatflow.Editor) error

	// Get retrieves the editor for a session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Get(ctx context.Context, sessionID string) (*chatflow.Editor, error)

	// Delete removes the session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all open sessions.
	List(ctx context.Context) ([]string, error)
}
