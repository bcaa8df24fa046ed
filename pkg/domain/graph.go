package domain

// Graph is the full editable state of a flow: its nodes and edges.
// A detached Graph (see Clone) doubles as a history snapshot.
type Graph struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// NewGraph creates an empty graph with non-nil slices so it encodes as
// empty JSON arrays.
func NewGraph() Graph {
	return Graph{
		Nodes: []Node{},
		Edges: []Edge{},
	}
}

// Clone returns a fully detached copy. Nodes and edges hold only value
// fields, so copying the slices is a deep copy.
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	copy(out.Nodes, g.Nodes)
	copy(out.Edges, g.Edges)
	return out
}

// Node looks up a node by id.
func (g Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// HasNode reports whether a node with the id exists.
func (g Graph) HasNode(id string) bool {
	_, ok := g.Node(id)
	return ok
}
