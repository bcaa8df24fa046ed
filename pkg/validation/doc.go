// Package validation decides whether a flow may be saved.
//
// The Engine runs an ordered list of structural rules against a graph and
// stops at the first failure, so the order of the rules fixes which reason
// is reported when several rules fail. The default order checks for cycles
// before checking for dangling starts, since a cyclic graph is the more
// severe defect.
//
// Basic usage:
//
//	verdict := validation.ValidateForSave(g.Nodes, g.Edges)
//	if !verdict.OK() {
//	    fmt.Println(verdict.Message())
//	}
//
// Callers that need the offending nodes use an Engine directly:
//
//	report := validation.Default().Evaluate(g)
//	if err := report.Err(); err != nil {
//	    // errors.Is(err, domain.ErrCycleDetected) ...
//	}
//
// Validation never mutates the graph and knows nothing about how its
// result is displayed.
package validation
