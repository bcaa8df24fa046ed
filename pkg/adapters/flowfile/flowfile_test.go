package flowfile_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/chatflow/pkg/adapters/flowfile"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
nodes:
  - id: dndnode_0
    type: textNode
    data:
      label: Hi there
    position: {x: 10, y: 20}
  - id: dndnode_1
    type: imageNode
    data:
      imageUrl: https://x.io/a.png
    position: {x: 250.5, y: 20}
    width: 250
    selected: true
edges:
  - source: dndnode_0
    target: dndnode_1
`

func TestDecode_YAML(t *testing.T) {
	g, err := flowfile.Decode([]byte(sampleYAML))
	require.NoError(t, err)

	require.Len(t, g.Nodes, 2)
	assert.Equal(t, domain.NodeTypeText, g.Nodes[0].Type)
	assert.Equal(t, "Hi there", g.Nodes[0].Data.Label)
	assert.Equal(t, domain.Position{X: 10, Y: 20}, g.Nodes[0].Position)
	assert.Equal(t, "https://x.io/a.png", g.Nodes[1].Data.ImageURL)
	assert.Equal(t, 250.5, g.Nodes[1].Position.X)

	require.Len(t, g.Edges, 1)
	assert.Equal(t, "reactflow__edge-dndnode_0-dndnode_1", g.Edges[0].ID)
}

func TestDecode_JSON(t *testing.T) {
	doc := `{"nodes":[{"id":"a","type":"textNode","data":{"label":"x"},"position":{"x":1,"y":2}}],"edges":[{"id":"e1","source":"a","target":"a"}]}`
	g, err := flowfile.Decode([]byte(doc))
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 1)
	assert.Equal(t, "e1", g.Edges[0].ID)
}

func TestDecode_Empty(t *testing.T) {
	g, err := flowfile.Decode(nil)
	require.NoError(t, err)
	assert.NotNil(t, g.Nodes)
	assert.Empty(t, g.Nodes)
}

func TestDecode_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "nodes: [unclosed"},
		{"missing id", "nodes: [{type: textNode}]"},
		{"unknown type", "nodes: [{id: a, type: videoNode}]"},
		{"edge without target", "nodes: [{id: a, type: textNode}]\nedges: [{source: a}]"},
		{"duplicate node", "nodes: [{id: a, type: textNode}, {id: a, type: imageNode}]"},
		{"wrong shape", "nodes: {id: a}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := flowfile.Decode([]byte(tt.doc))
			assert.ErrorIs(t, err, flowfile.ErrInvalidDocument)
		})
	}
}

func TestDecode_DerivedEdgeIDsAreUnique(t *testing.T) {
	g, err := flowfile.Decode([]byte(`
nodes:
  - {id: a, type: textNode}
  - {id: a-b, type: textNode}
  - {id: b-c, type: textNode}
  - {id: c, type: textNode}
edges:
  - {source: a, target: b-c}
  - {source: a-b, target: c}
`))
	require.NoError(t, err)
	require.Len(t, g.Edges, 2)
	assert.NotEqual(t, g.Edges[0].ID, g.Edges[1].ID)
	assert.Empty(t, flowfile.Lint(g))
}

func TestEncodeRoundTrip(t *testing.T) {
	g, err := flowfile.Decode([]byte(sampleYAML))
	require.NoError(t, err)

	for _, format := range []flowfile.Format{flowfile.FormatYAML, flowfile.FormatJSON} {
		data, err := flowfile.Encode(g, format)
		require.NoError(t, err)
		back, err := flowfile.Decode(data)
		require.NoError(t, err)
		assert.Equal(t, g, back, string(format))
	}

	_, err = flowfile.Encode(g, "toml")
	assert.Error(t, err)
}

func TestLint(t *testing.T) {
	g := domain.Graph{
		Nodes: []domain.Node{
			domain.NewNode("a", domain.NodeTypeText, domain.Position{}),
			domain.NewNode("b", domain.NodeTypeText, domain.Position{}),
		},
		Edges: []domain.Edge{
			{ID: "e1", Source: "a", Target: "b"},
			{ID: "e1", Source: "a", Target: "ghost"},
		},
	}
	assert.ElementsMatch(t, []string{
		`duplicate edge id "e1"`,
		`edge "e1": unknown target "ghost"`,
		`node "a" has more than one outgoing edge`,
	}, flowfile.Lint(g))

	assert.Empty(t, flowfile.Lint(domain.Graph{Nodes: g.Nodes, Edges: g.Edges[:1]}))
}

func TestSource_LoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flow.json")
	src := flowfile.NewSource(path)

	_, err := src.Load(context.Background())
	assert.Error(t, err)

	g := domain.Graph{Nodes: []domain.Node{domain.NewNode("a", domain.NodeTypeText, domain.Position{})}}
	require.NoError(t, src.Save(g))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"type": "textNode"`)

	loaded, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, g.Nodes, loaded.Nodes)
}

func TestSource_Watch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0644))

	src := flowfile.NewSource(path, flowfile.WithDebounce(20*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := src.Watch(ctx)
	require.NoError(t, err)

	// Unrelated files in the directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0644))
	select {
	case <-ch:
		t.Fatal("unexpected signal for another file")
	case <-time.After(150 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(path, []byte("nodes: []\n"), 0644))
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a change signal")
	}

	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("expected channel to close")
		}
	}
}
