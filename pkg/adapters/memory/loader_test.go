package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/chatflow/pkg/adapters/memory"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSource_LoadIsDetached(t *testing.T) {
	src := memory.NewFromNodes([]domain.Node{domain.NewNode("a", domain.NodeTypeText, domain.Position{})})

	g, err := src.Load(context.Background())
	require.NoError(t, err)
	g.Nodes[0].Data.Label = "changed"

	again, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTextLabel, again.Nodes[0].Data.Label)
}

func TestSource_Watch(t *testing.T) {
	src := memory.NewSource(domain.NewGraph())
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := src.Watch(ctx)
	require.NoError(t, err)

	src.Set(domain.Graph{Nodes: []domain.Node{domain.NewNode("a", domain.NodeTypeImage, domain.Position{})}})

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a change signal")
	}

	g, _ := src.Load(context.Background())
	assert.Len(t, g.Nodes, 1)

	cancel()
	select {
	case _, ok := <-ch:
		assert.False(t, ok, "channel closes when the context is done")
	case <-time.After(time.Second):
		t.Fatal("expected channel to close")
	}
}
