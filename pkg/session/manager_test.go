package session_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/chatflow"
	"github.com/aretw0/chatflow/pkg/adapters/memory"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s *SlowStore) Get(ctx context.Context, sessionID string) (*chatflow.Editor, error) {
	time.Sleep(10 * time.Millisecond) // Simulate IO
	return s.Store.Get(ctx, sessionID)
}

func TestManager_OpenIsAtomic(t *testing.T) {
	manager := session.NewManager(&SlowStore{Store: memory.NewStore()})
	ctx := context.Background()
	id := "atomic-init"

	var wg sync.WaitGroup
	var opened atomic.Int32
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := manager.Open(ctx, id, nil)
			if err == nil {
				opened.Add(1)
				return
			}
			assert.ErrorIs(t, err, session.ErrSessionExists)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), opened.Load())
	_, err := manager.Get(ctx, id)
	assert.NoError(t, err)
}

func TestManager_OpenGeneratesID(t *testing.T) {
	manager := session.NewManager(memory.NewStore())

	id, ed, err := manager.Open(context.Background(), "", nil)
	require.NoError(t, err)
	require.NotNil(t, ed)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)
}

func TestManager_OpenWithSeed(t *testing.T) {
	manager := session.NewManager(memory.NewStore(), session.WithEditorOptions(chatflow.WithHistoryLimit(5)))
	seed := domain.Graph{Nodes: []domain.Node{domain.NewNode("a", domain.NodeTypeText, domain.Position{})}}

	_, ed, err := manager.Open(context.Background(), "seeded", &seed)
	require.NoError(t, err)
	assert.Len(t, ed.Graph().Nodes, 1)
	assert.False(t, ed.CanUndo(), "the seed is not an undoable step")
}

func TestManager_Delete(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	_, _, err := manager.Open(ctx, "s1", nil)
	require.NoError(t, err)

	require.NoError(t, manager.Delete(ctx, "s1"))
	_, err = manager.Get(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, manager.Delete(ctx, "s1"), domain.ErrSessionNotFound)

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestManager_CancelledContext(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := manager.Open(ctx, "s1", nil)
	assert.ErrorIs(t, err, context.Canceled)
}
