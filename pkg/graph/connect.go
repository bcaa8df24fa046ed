package graph

import "github.com/aretw0/chatflow/pkg/domain"

// CanConnect reports whether the proposed connection may be added to edges.
// It returns false iff an edge with the same source already exists, which
// keeps every node at an out-degree of at most one.
func CanConnect(conn domain.Connection, edges []domain.Edge) bool {
	for _, e := range edges {
		if e.Source == conn.Source {
			return false
		}
	}
	return true
}

// OutDegrees counts the outgoing edges of every source id.
func OutDegrees(edges []domain.Edge) map[string]int {
	out := make(map[string]int)
	for _, e := range edges {
		out[e.Source]++
	}
	return out
}

// Policy is the connection rule applied both while a connection is being
// dragged and when it is committed. Using one predicate for both call
// sites keeps them identical.
type Policy struct {
	// RejectSelfLoops refuses source == target at creation time. When false,
	// self-loops are only rejected at save time by the cycle check.
	RejectSelfLoops bool
}

// DefaultPolicy allows self-loops at creation.
var DefaultPolicy = Policy{}

// Allows reports whether conn may be added to edges under the policy.
func (p Policy) Allows(conn domain.Connection, edges []domain.Edge) bool {
	if conn.Source == "" || conn.Target == "" {
		return false
	}
	if p.RejectSelfLoops && conn.IsSelfLoop() {
		return false
	}
	return CanConnect(conn, edges)
}

// Connect appends the edge for conn when the policy allows it. The new edge
// is last in the result and its id is unique among edges. The input slice
// is never modified; on rejection it is returned unchanged.
func (p Policy) Connect(conn domain.Connection, edges []domain.Edge) ([]domain.Edge, bool) {
	if !p.Allows(conn, edges) {
		return edges, false
	}
	edge := conn.Edge()
	edge.ID = domain.UniqueEdgeID(edge.ID, edges)

	out := make([]domain.Edge, len(edges), len(edges)+1)
	copy(out, edges)
	return append(out, edge), true
}
