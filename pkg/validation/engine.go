package validation

import (
	"github.com/aretw0/chatflow/pkg/domain"
)

// Report is the result of evaluating a graph for save.
type Report struct {
	Verdict   domain.Verdict `json:"verdict"`
	Rule      string         `json:"rule,omitempty"`
	Offenders []string       `json:"offenders,omitempty"`
	Message   string         `json:"message"`
}

// OK reports whether the save is allowed.
func (r Report) OK() bool {
	return r.Verdict.OK()
}

// Err returns the structural violation, or nil when the save is allowed.
func (r Report) Err() error {
	if r.OK() {
		return nil
	}
	return &ViolationError{Rule: r.Rule, Verdict: r.Verdict, Offenders: r.Offenders}
}

// Engine evaluates rules in order and stops at the first failure.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine with the given rules, in evaluation order.
func NewEngine(rules ...Rule) *Engine {
	return &Engine{rules: rules}
}

// Default returns the save rules: Acyclic, then SingleEntry.
func Default() *Engine {
	return NewEngine(Acyclic(), SingleEntry())
}

// Rules returns the rule names in evaluation order.
func (e *Engine) Rules() []string {
	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name()
	}
	return names
}

// Evaluate runs the rules against g.
func (e *Engine) Evaluate(g domain.Graph) Report {
	for _, rule := range e.rules {
		f := rule.Check(g)
		if f.Verdict.OK() {
			continue
		}
		return Report{
			Verdict:   f.Verdict,
			Rule:      rule.Name(),
			Offenders: f.Offenders,
			Message:   f.Verdict.Message(),
		}
	}
	return Report{Verdict: domain.VerdictOK, Message: domain.VerdictOK.Message()}
}

// ValidateForSave returns the save verdict for nodes and edges using the
// default rules.
func ValidateForSave(nodes []domain.Node, edges []domain.Edge) domain.Verdict {
	return Default().Evaluate(domain.Graph{Nodes: nodes, Edges: edges}).Verdict
}
