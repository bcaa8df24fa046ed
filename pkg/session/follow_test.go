package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/chatflow/pkg/adapters/memory"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_OpenFromAndFollow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := session.NewManager(memory.NewStore())
	src := memory.NewFromNodes([]domain.Node{domain.NewNode("a", domain.NodeTypeText, domain.Position{})})

	id, ed, err := manager.OpenFrom(ctx, "followed", src)
	require.NoError(t, err)
	assert.Equal(t, "followed", id)
	require.Len(t, ed.Graph().Nodes, 1)

	done := make(chan error, 1)
	go func() { done <- manager.Follow(ctx, id, src) }()

	// Watch registers asynchronously; keep publishing until it lands.
	next := domain.Graph{Nodes: []domain.Node{
		domain.NewNode("a", domain.NodeTypeText, domain.Position{}),
		domain.NewNode("b", domain.NodeTypeImage, domain.Position{}),
	}}
	require.Eventually(t, func() bool {
		src.Set(next)
		return len(ed.Graph().Nodes) == 2
	}, 2*time.Second, 20*time.Millisecond)

	assert.True(t, ed.CanUndo(), "reload should be undoable")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Follow did not return after cancel")
	}
}

func TestManager_FollowUnknownSession(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	manager := session.NewManager(memory.NewStore())
	src := memory.NewSource(domain.Graph{})

	done := make(chan error, 1)
	go func() { done <- manager.Follow(ctx, "missing", src) }()

	require.Eventually(t, func() bool {
		src.Set(domain.Graph{})
		select {
		case err := <-done:
			assert.ErrorIs(t, err, domain.ErrSessionNotFound)
			return true
		default:
			return false
		}
	}, 2*time.Second, 20*time.Millisecond)
}
