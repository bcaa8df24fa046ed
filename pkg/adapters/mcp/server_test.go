package mcp

import (
	"context"
	"testing"

	"github.com/aretw0/chatflow/pkg/adapters/memory"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loopFlow = `
nodes:
  - {id: a, type: textNode, data: {label: hello}}
  - {id: b, type: textNode}
edges:
  - {source: a, target: b}
  - {source: b, target: a}
`

const chainFlow = `{"nodes":[{"id":"a","type":"textNode"},{"id":"b","type":"imageNode"},{"id":"c","type":"textNode"}],"edges":[{"source":"a","target":"b"}]}`

func TestHandleValidate(t *testing.T) {
	s := NewServer()
	ctx := context.Background()

	resp, err := s.handleValidate(ctx, mcp.CallToolRequest{}, map[string]interface{}{"flow": loopFlow})
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictCycleDetected, resp.Verdict)
	assert.Equal(t, "Cannot save flow: Infinite loop detected.", resp.Message)

	// c has no incoming edge, neither has a.
	resp, err = s.handleValidate(ctx, mcp.CallToolRequest{}, map[string]interface{}{"flow": chainFlow})
	require.NoError(t, err)
	assert.Equal(t, domain.VerdictMultipleDanglingStarts, resp.Verdict)

	_, err = s.handleValidate(ctx, mcp.CallToolRequest{}, map[string]interface{}{})
	assert.Error(t, err)
}

func TestHandleFindCycle(t *testing.T) {
	s := NewServer()
	ctx := context.Background()

	resp, err := s.handleFindCycle(ctx, mcp.CallToolRequest{}, map[string]interface{}{"flow": loopFlow})
	require.NoError(t, err)
	assert.True(t, resp.HasCycle)
	assert.Equal(t, []string{"a", "b", "a"}, resp.Cycle)

	resp, err = s.handleFindCycle(ctx, mcp.CallToolRequest{}, map[string]interface{}{"flow": chainFlow})
	require.NoError(t, err)
	assert.False(t, resp.HasCycle)
	assert.Empty(t, resp.Cycle)
}

func TestHandleCanConnect(t *testing.T) {
	s := NewServer()
	ctx := context.Background()

	tests := []struct {
		name    string
		source  string
		target  string
		allowed bool
	}{
		{"Free Source", "b", "c", true},
		{"Source Already Connected", "a", "c", false},
		{"Unknown Source", "x", "c", false},
		{"Unknown Target", "c", "x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := s.handleCanConnect(ctx, mcp.CallToolRequest{}, map[string]interface{}{
				"flow":   chainFlow,
				"source": tt.source,
				"target": tt.target,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.allowed, resp.Allowed)
			if !tt.allowed {
				assert.NotEmpty(t, resp.Reason)
			}
		})
	}
}

func TestHandleValidateSession(t *testing.T) {
	mgr := session.NewManager(memory.NewStore())
	s := NewServer(WithSessions(mgr))
	ctx := context.Background()

	seed := domain.Graph{Nodes: []domain.Node{domain.NewNode("only", domain.NodeTypeText, domain.Position{})}}
	id, _, err := mgr.Open(ctx, "s1", &seed)
	require.NoError(t, err)

	resp, err := s.handleValidateSession(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session_id": id})
	require.NoError(t, err)
	assert.True(t, resp.OK())

	_, err = s.handleValidateSession(ctx, mcp.CallToolRequest{}, map[string]interface{}{"session_id": "missing"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
