package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/pkg/domain"
)

// Store implements ports.SessionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*chatflow.Editor
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*chatflow.Editor),
	}
}

// Put stores the editor.
func (s *Store) Put(ctx context.Context, sessionID string, ed *chatflow.Editor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[sessionID] = ed
	return nil
}

// Get retrieves the editor from memory.
func (s *Store) Get(ctx context.Context, sessionID string) (*chatflow.Editor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ed, ok := s.data[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return ed, nil
}

// Delete removes the editor.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns open sessions in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id := range s.data {
		sessions = append(sessions, id)
	}
	sort.Strings(sessions)
	return sessions, nil
}
