package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flow(ids []string, pairs ...string) domain.Graph {
	g := domain.NewGraph()
	for _, id := range ids {
		g.Nodes = append(g.Nodes, domain.NewNode(id, domain.NodeTypeText, domain.Position{}))
	}
	for _, p := range pairs {
		parts := strings.SplitN(p, ">", 2)
		g.Edges = append(g.Edges, domain.Connection{Source: parts[0], Target: parts[1]}.Edge())
	}
	return g
}

func TestValidateForSave(t *testing.T) {
	tests := []struct {
		name string
		g    domain.Graph
		want domain.Verdict
	}{
		{"empty canvas", flow(nil), domain.VerdictOK},
		{"Scenario A: cycle", flow([]string{"1", "2", "3"}, "1>2", "2>3", "3>1"), domain.VerdictCycleDetected},
		{"Scenario B: two dangling starts", flow([]string{"1", "2", "3"}, "1>2", "3>2"), domain.VerdictMultipleDanglingStarts},
		{"Scenario C: single node", flow([]string{"1"}), domain.VerdictOK},
		{"linear chain", flow([]string{"1", "2", "3"}, "1>2", "2>3"), domain.VerdictOK},
		{"two isolated nodes", flow([]string{"1", "2"}), domain.VerdictMultipleDanglingStarts},
		{"self loop on single node", flow([]string{"1"}, "1>1"), domain.VerdictCycleDetected},
		// 1 and 4 are dangling and 2->3->2 loops: the cycle is reported.
		{"cycle reported before dangling starts", flow([]string{"1", "2", "3", "4"}, "2>3", "3>2"), domain.VerdictCycleDetected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateForSave(tt.g.Nodes, tt.g.Edges))
		})
	}
}

func TestEngine_Report(t *testing.T) {
	t.Run("cycle offenders are the cycle path", func(t *testing.T) {
		report := Default().Evaluate(flow([]string{"1", "2", "3"}, "1>2", "2>3", "3>1"))
		assert.Equal(t, "acyclic", report.Rule)
		assert.Equal(t, []string{"1", "2", "3", "1"}, report.Offenders)
		assert.Equal(t, "Cannot save flow: Infinite loop detected.", report.Message)

		err := report.Err()
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrCycleDetected))

		var violation *ViolationError
		require.True(t, errors.As(err, &violation))
		assert.Equal(t, domain.VerdictCycleDetected, violation.Verdict)
	})

	t.Run("dangling offenders keep node order", func(t *testing.T) {
		report := Default().Evaluate(flow([]string{"1", "2", "3"}, "1>2", "3>2"))
		assert.Equal(t, "single_entry", report.Rule)
		assert.Equal(t, []string{"1", "3"}, report.Offenders)
		assert.ErrorIs(t, report.Err(), domain.ErrMultipleDanglingStarts)
		assert.Contains(t, report.Err().Error(), "(1, 3)")
	})

	t.Run("ok report has no error", func(t *testing.T) {
		report := Default().Evaluate(flow([]string{"1"}))
		assert.True(t, report.OK())
		assert.NoError(t, report.Err())
		assert.Equal(t, "Flow saved successfully", report.Message)
	})

	t.Run("validation does not mutate the graph", func(t *testing.T) {
		g := flow([]string{"1", "2", "3"}, "1>2", "3>2")
		before := g.Clone()
		_ = Default().Evaluate(g)
		assert.Equal(t, before, g)
	})
}

func TestEngine_CustomRules(t *testing.T) {
	calls := 0
	never := Custom("never_reached", func(domain.Graph) Finding {
		calls++
		return Pass
	})
	failing := Custom("has_image", func(g domain.Graph) Finding {
		for _, n := range g.Nodes {
			if n.Type == domain.NodeTypeImage {
				return Pass
			}
		}
		return Finding{Verdict: "missing_image"}
	})

	engine := NewEngine(failing, never)
	assert.Equal(t, []string{"has_image", "never_reached"}, engine.Rules())

	report := engine.Evaluate(flow([]string{"1"}))
	assert.Equal(t, domain.Verdict("missing_image"), report.Verdict)
	assert.Equal(t, 0, calls, "evaluation stops at the first failure")
	assert.EqualError(t, report.Err(), `rule "has_image": missing_image`)
}
