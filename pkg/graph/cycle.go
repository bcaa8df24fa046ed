package graph

import "github.com/aretw0/chatflow/pkg/domain"

// frame is one entry of the explicit DFS stack: the node being expanded
// and the index of its next neighbor to look at.
type frame struct {
	id   string
	next int
}

// HasCycle reports whether the directed graph induced by nodes and edges
// contains a cycle. It runs in O(|nodes|+|edges|).
func HasCycle(nodes []domain.Node, edges []domain.Edge) bool {
	return FindCycle(nodes, edges) != nil
}

// FindCycle returns the node ids of the first cycle found, with the closing
// node repeated at the end (a self-loop on "a" yields ["a", "a"]). It
// returns nil for acyclic graphs.
//
// The search is a depth-first traversal over the adjacency view using an
// explicit stack, so long chains cannot exhaust the goroutine stack. Each
// node carries two marks: visited (traversal ever started) and onStack
// (on the active path). Reaching a neighbor that is on the stack is a
// back-edge and closes a cycle. Reaching a neighbor that is only visited
// is a reconverging path and is skipped. Every node seeds a traversal, so
// disconnected components are all checked.
func FindCycle(nodes []domain.Node, edges []domain.Edge) []string {
	adj := BuildAdjacency(nodes, edges)
	visited := make(map[string]bool, len(adj))
	onStack := make(map[string]bool, len(adj))

	for _, n := range nodes {
		if visited[n.ID] {
			continue
		}

		visited[n.ID] = true
		onStack[n.ID] = true
		stack := []frame{{id: n.ID}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			neighbors := adj[top.id]

			if top.next == len(neighbors) {
				onStack[top.id] = false
				stack = stack[:len(stack)-1]
				continue
			}

			next := neighbors[top.next]
			top.next++

			switch {
			case onStack[next]:
				return cyclePath(stack, next)
			case visited[next]:
				// Fully explored from another path; not a back-edge.
			default:
				visited[next] = true
				onStack[next] = true
				stack = append(stack, frame{id: next})
			}
		}
	}

	return nil
}

// cyclePath extracts the active path from the first occurrence of closing
// to the top of the stack and closes it.
func cyclePath(stack []frame, closing string) []string {
	start := 0
	for i, f := range stack {
		if f.id == closing {
			start = i
			break
		}
	}
	path := make([]string, 0, len(stack)-start+1)
	for _, f := range stack[start:] {
		path = append(path, f.id)
	}
	return append(path, closing)
}
