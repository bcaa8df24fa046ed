package domain

import "strconv"

// Edge is a directed link "Source -> Target" between two nodes.
type Edge struct {
	ID     string `json:"id" yaml:"id"`
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// Connection is a proposed edge that has not been committed yet.
type Connection struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// EdgeID derives the identifier of the edge created for a connection.
func EdgeID(source, target string) string {
	return "reactflow__edge-" + source + "-" + target
}

// UniqueEdgeID returns base when no edge in edges uses it yet, otherwise
// base with the first free "~n" suffix. Derived ids are not injective when
// node ids contain '-', so "a" -> "b-c" and "a-b" -> "c" share a base.
func UniqueEdgeID(base string, edges []Edge) string {
	taken := make(map[string]struct{}, len(edges))
	for _, e := range edges {
		taken[e.ID] = struct{}{}
	}
	if _, dup := taken[base]; !dup {
		return base
	}
	for n := 2; ; n++ {
		id := base + "~" + strconv.Itoa(n)
		if _, dup := taken[id]; !dup {
			return id
		}
	}
}

// Edge materializes the connection into an edge with a derived id.
func (c Connection) Edge() Edge {
	return Edge{
		ID:     EdgeID(c.Source, c.Target),
		Source: c.Source,
		Target: c.Target,
	}
}

// IsSelfLoop reports whether the connection points back at its own source.
func (c Connection) IsSelfLoop() bool {
	return c.Source == c.Target
}
