/*
Package graph implements the structural algorithms a flow is checked with.

It builds the adjacency view of a flow, enforces the one-outgoing-edge
rule when connections are proposed, and detects directed cycles. Every
function is pure: it reads the nodes and edges it is given and never
mutates them.

Edges that reference a node id missing from the node list are tolerated
and treated as absent, since interactive editing can transiently produce
such states.
*/
package graph
