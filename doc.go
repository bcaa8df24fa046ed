/*
Package chatflow is the editing core of a visual chatbot flow builder.

A flow is a directed graph of messaging steps (text messages and images)
linked by edges. The Editor owns one flow and applies every edit through
three guards: an out-degree gate that keeps each node at one outgoing edge
at most, a save validator that refuses cyclic flows and flows with more
than one entry point, and a bounded undo/redo history.

# Concept

The algorithms live in small pure packages (graph, validation, history)
that operate on the plain domain types. The Editor composes them and adds
what an interactive builder needs on top: node ids, burst-coalesced text
edits, image link normalization and reply suggestions from a pluggable
provider. Adapters expose the same core over HTTP, MCP and flow documents.

# Key Features

  - Connection Gate: The same predicate answers "may I connect?" while
    dragging and decides the commit, so the two can never disagree.
  - Save Validation: Cycle detection runs iteratively, so very long flows
    cannot exhaust the stack.
  - History: Snapshots are detached copies; later edits cannot corrupt them.
  - Observability: Hooks report connects, history moves, saves and suggestions.

# Usage

	package main

	import (
		"fmt"

		"github.com/aretw0/chatflow"
		"github.com/aretw0/chatflow/pkg/domain"
	)

	func main() {
		ed := chatflow.New()

		hello, _ := ed.AddNode(domain.NodeTypeText, domain.Position{})
		bye, _ := ed.AddNode(domain.NodeTypeText, domain.Position{X: 250})
		ed.Connect(domain.Connection{Source: hello.ID, Target: bye.ID})

		if _, err := ed.Save(); err != nil {
			fmt.Println(err)
			ed.Undo()
		}
	}
*/
package chatflow
