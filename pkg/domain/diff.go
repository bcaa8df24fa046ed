package domain

// GraphDiff represents the changes between two graphs.
// It is designed to be serialized to JSON for partial updates on the client.
type GraphDiff struct {
	// AddedNodes holds nodes present only in the new graph.
	AddedNodes []Node `json:"added_nodes,omitempty"`

	// ChangedNodes holds nodes whose data or position changed (new values).
	ChangedNodes []Node `json:"changed_nodes,omitempty"`

	// RemovedNodes holds the ids of nodes present only in the old graph.
	RemovedNodes []string `json:"removed_nodes,omitempty"`

	AddedEdges   []Edge   `json:"added_edges,omitempty"`
	RemovedEdges []string `json:"removed_edges,omitempty"`
}

// Diff calculates the difference between oldGraph and newGraph.
// If oldGraph is nil, it returns a diff representing the entire newGraph (initial load).
// It returns nil when nothing changed.
func Diff(oldGraph, newGraph *Graph) *GraphDiff {
	if newGraph == nil {
		return nil
	}
	if oldGraph == nil {
		oldGraph = &Graph{}
	}

	diff := &GraphDiff{}

	oldNodes := make(map[string]Node, len(oldGraph.Nodes))
	for _, n := range oldGraph.Nodes {
		oldNodes[n.ID] = n
	}
	newNodes := make(map[string]struct{}, len(newGraph.Nodes))
	for _, n := range newGraph.Nodes {
		newNodes[n.ID] = struct{}{}
		prev, exists := oldNodes[n.ID]
		switch {
		case !exists:
			diff.AddedNodes = append(diff.AddedNodes, n)
		case prev != n:
			diff.ChangedNodes = append(diff.ChangedNodes, n)
		}
	}
	for _, n := range oldGraph.Nodes {
		if _, exists := newNodes[n.ID]; !exists {
			diff.RemovedNodes = append(diff.RemovedNodes, n.ID)
		}
	}

	// Edges are immutable once created, so only additions and removals matter.
	oldEdges := make(map[string]struct{}, len(oldGraph.Edges))
	for _, e := range oldGraph.Edges {
		oldEdges[e.ID] = struct{}{}
	}
	newEdges := make(map[string]struct{}, len(newGraph.Edges))
	for _, e := range newGraph.Edges {
		newEdges[e.ID] = struct{}{}
		if _, exists := oldEdges[e.ID]; !exists {
			diff.AddedEdges = append(diff.AddedEdges, e)
		}
	}
	for _, e := range oldGraph.Edges {
		if _, exists := newEdges[e.ID]; !exists {
			diff.RemovedEdges = append(diff.RemovedEdges, e.ID)
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *GraphDiff) IsEmpty() bool {
	return len(d.AddedNodes) == 0 &&
		len(d.ChangedNodes) == 0 &&
		len(d.RemovedNodes) == 0 &&
		len(d.AddedEdges) == 0 &&
		len(d.RemovedEdges) == 0
}
