package domain

import "errors"

// ErrCycleDetected is the structural violation reported when the flow
// contains a directed cycle at save time.
var ErrCycleDetected = errors.New("infinite loop detected")

// ErrMultipleDanglingStarts is the structural violation reported when more
// than one node has no incoming edge.
var ErrMultipleDanglingStarts = errors.New("more than one node has no incoming edge")

// ErrNodeNotFound is returned when a node ID does not exist in the graph.
var ErrNodeNotFound = errors.New("node not found")

// ErrInvalidNodeType is returned when a node type is neither text nor image.
var ErrInvalidNodeType = errors.New("invalid node type")

// ErrNotTextNode is returned when a text-only operation targets an image node.
var ErrNotTextNode = errors.New("node is not a text node")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrNotImageNode is returned when an image-only operation targets a text node.
var ErrNotImageNode = errors.New("node is not an image node")
