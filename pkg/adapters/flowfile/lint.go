package flowfile

import (
	"fmt"

	"github.com/aretw0/chatflow/pkg/domain"
)

// Lint reports document problems that the editor would never produce but
// that validation tolerates: edges to unknown nodes, duplicate edge ids and
// nodes with more than one outgoing edge.
func Lint(g domain.Graph) []string {
	var warnings []string

	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = true
	}

	edgeIDs := make(map[string]bool, len(g.Edges))
	out := make(map[string]int)
	for _, e := range g.Edges {
		if edgeIDs[e.ID] {
			warnings = append(warnings, fmt.Sprintf("duplicate edge id %q", e.ID))
		}
		edgeIDs[e.ID] = true

		if !ids[e.Source] {
			warnings = append(warnings, fmt.Sprintf("edge %q: unknown source %q", e.ID, e.Source))
		}
		if !ids[e.Target] {
			warnings = append(warnings, fmt.Sprintf("edge %q: unknown target %q", e.ID, e.Target))
		}
		out[e.Source]++
		if out[e.Source] == 2 {
			warnings = append(warnings, fmt.Sprintf("node %q has more than one outgoing edge", e.Source))
		}
	}
	return warnings
}
