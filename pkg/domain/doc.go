/*
Package domain contains the core domain models of a chatflow.

It defines the entities a flow is built from: typed messaging Nodes,
directed Edges between them and the Graph that holds both. The package is
kept pure and free of external concerns like I/O or persistence, following
Hexagonal Architecture principles.

# Key Entities

  - Node: A messaging step, either a text message or an image.
  - Edge: A directed link "source -> target" between two nodes.
  - Graph: The nodes and edges of a flow; a detached Graph is a history snapshot.
  - Verdict: The typed outcome of save validation.
  - IDGenerator: The capability used to mint node identifiers.
*/
package domain
