package graph

import "github.com/aretw0/chatflow/pkg/domain"

// Adjacency maps each node id to the ordered ids reachable through one
// outgoing edge.
type Adjacency map[string][]string

// BuildAdjacency constructs the adjacency view of a flow in O(|nodes|+|edges|).
// Every node gets an entry, even without outgoing edges. Edges whose source
// or target is not a known node are omitted.
func BuildAdjacency(nodes []domain.Node, edges []domain.Edge) Adjacency {
	adj := make(Adjacency, len(nodes))
	for _, n := range nodes {
		if _, exists := adj[n.ID]; !exists {
			adj[n.ID] = []string{}
		}
	}

	for _, e := range edges {
		if _, ok := adj[e.Source]; !ok {
			continue
		}
		if _, ok := adj[e.Target]; !ok {
			continue
		}
		adj[e.Source] = append(adj[e.Source], e.Target)
	}

	return adj
}

// IncomingCounts returns how many edges point at each node. Nodes without
// incoming edges are present with a zero count.
func IncomingCounts(nodes []domain.Node, edges []domain.Edge) map[string]int {
	counts := make(map[string]int, len(nodes))
	for _, n := range nodes {
		counts[n.ID] = 0
	}
	for _, e := range edges {
		if _, ok := counts[e.Target]; ok {
			counts[e.Target]++
		}
	}
	return counts
}
