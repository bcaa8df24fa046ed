package graph

import "github.com/aretw0/chatflow/pkg/domain"

// ParentText walks the first incoming edge of nodeID to its source and
// returns that source's label. It reports false when there is no incoming
// edge, the source is missing, the source is not a text node, or its label
// is empty.
func ParentText(nodeID string, nodes []domain.Node, edges []domain.Edge) (string, bool) {
	var sourceID string
	found := false
	for _, e := range edges {
		if e.Target == nodeID {
			sourceID = e.Source
			found = true
			break
		}
	}
	if !found {
		return "", false
	}

	for _, n := range nodes {
		if n.ID != sourceID {
			continue
		}
		label, ok := n.Text()
		if !ok || label == "" {
			return "", false
		}
		return label, true
	}
	return "", false
}
