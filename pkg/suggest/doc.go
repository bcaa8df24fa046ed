// Package suggest provides the text-suggestion capability used to draft a
// reply for a text node from the text of its parent node.
//
// The Mock provider stands in for a text-generation service: it answers
// from a few keyword rules after a simulated network delay. Any Provider
// can be wrapped in a Breaker so that a failing backend is short-circuited
// instead of stalling every request.
package suggest
