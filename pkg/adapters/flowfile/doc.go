/*
Package flowfile reads and writes flow documents.

A flow document is a YAML or JSON file with the canvas shape of a flow:

	nodes:
	  - id: dndnode_0
	    type: textNode
	    data: {label: "Hi there"}
	    position: {x: 0, y: 0}
	edges:
	  - source: dndnode_0
	    target: dndnode_1

Edge ids are optional and derived from the endpoints when missing. Edges
that reference unknown nodes are kept; the graph algorithms ignore them and
Lint reports them.
*/
package flowfile
