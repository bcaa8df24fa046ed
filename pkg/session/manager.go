package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/internal/logging"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/ports"
	"github.com/google/uuid"
)

// ErrSessionExists is returned by Open when the requested ID is taken.
var ErrSessionExists = errors.New("session already exists")

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates the lifecycle of editing sessions. Editors serialize
// their own edits; the Manager serializes create and delete per session ID.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	editorOpts []chatflow.Option
	logger     *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithEditorOptions sets the options every new editor is created with.
func WithEditorOptions(opts ...chatflow.Option) Option {
	return func(m *Manager) {
		m.editorOpts = append(m.editorOpts, opts...)
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Session Manager backed by store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		locks:  make(map[string]*lockEntry),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Open creates a session. An empty sessionID gets a random UUID. When seed
// is non-nil the editor starts from it.
func (m *Manager) Open(ctx context.Context, sessionID string, seed *domain.Graph) (string, *chatflow.Editor, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	var ed *chatflow.Editor
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		_, err := m.store.Get(ctx, sessionID)
		if err == nil {
			return fmt.Errorf("%w: %s", ErrSessionExists, sessionID)
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", err)
		}

		opts := m.editorOpts
		if seed != nil {
			opts = append(opts[:len(opts):len(opts)], chatflow.WithGraph(*seed))
		}
		ed = chatflow.New(opts...)

		if err := m.store.Put(ctx, sessionID, ed); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", nil, err
	}
	m.logger.Info("Session opened", "session_id", sessionID)
	return sessionID, ed, nil
}

// Get returns the editor of an open session.
func (m *Manager) Get(ctx context.Context, sessionID string) (*chatflow.Editor, error) {
	return m.store.Get(ctx, sessionID)
}

// Delete closes the session.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if _, err := m.store.Get(ctx, sessionID); err != nil {
			return err
		}
		if err := m.store.Delete(ctx, sessionID); err != nil {
			return err
		}
		m.logger.Info("Session closed", "session_id", sessionID)
		return nil
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
