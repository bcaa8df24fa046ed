package validation

import (
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/graph"
)

// Finding is what a rule reports. A VerdictOK finding passes.
type Finding struct {
	Verdict   domain.Verdict
	Offenders []string
}

// Pass is the finding of a satisfied rule.
var Pass = Finding{Verdict: domain.VerdictOK}

// Rule defines a single structural check.
type Rule interface {
	// Name returns the identifier used in reports and logs.
	Name() string
	// Check inspects the graph without mutating it.
	Check(g domain.Graph) Finding
}

// RuleFunc adapts a function into a Rule.
type RuleFunc struct {
	name  string
	check func(domain.Graph) Finding
}

func (r *RuleFunc) Name() string { return r.name }

func (r *RuleFunc) Check(g domain.Graph) Finding { return r.check(g) }

// Custom creates a rule from a function.
func Custom(name string, check func(domain.Graph) Finding) Rule {
	return &RuleFunc{name: name, check: check}
}

// Acyclic fails with VerdictCycleDetected when the graph has a directed
// cycle. Offenders list the cycle path.
func Acyclic() Rule {
	return Custom("acyclic", func(g domain.Graph) Finding {
		path := graph.FindCycle(g.Nodes, g.Edges)
		if path == nil {
			return Pass
		}
		return Finding{Verdict: domain.VerdictCycleDetected, Offenders: path}
	})
}

// SingleEntry fails with VerdictMultipleDanglingStarts when the graph has
// more than one node and more than one of them has no incoming edge.
// Offenders list the dangling starts in node order.
func SingleEntry() Rule {
	return Custom("single_entry", func(g domain.Graph) Finding {
		targeted := make(map[string]struct{}, len(g.Edges))
		for _, e := range g.Edges {
			targeted[e.Target] = struct{}{}
		}

		var dangling []string
		for _, n := range g.Nodes {
			if _, ok := targeted[n.ID]; !ok {
				dangling = append(dangling, n.ID)
			}
		}

		if len(g.Nodes) > 1 && len(dangling) > 1 {
			return Finding{Verdict: domain.VerdictMultipleDanglingStarts, Offenders: dangling}
		}
		return Pass
	})
}
