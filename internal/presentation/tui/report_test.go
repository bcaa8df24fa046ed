package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/validation"
)

func TestReportMarkdown(t *testing.T) {
	a := domain.NewNode("a", domain.NodeTypeText, domain.Position{})
	b := domain.NewNode("b", domain.NodeTypeText, domain.Position{})

	t.Run("Valid", func(t *testing.T) {
		g := domain.Graph{Nodes: []domain.Node{a}}
		out := ReportMarkdown("flow.yaml", g, validation.Default().Evaluate(g))
		if !strings.Contains(out, "Flow saved successfully") || !strings.Contains(out, "1 nodes, 0 edges") {
			t.Errorf("unexpected report:\n%s", out)
		}
	})

	t.Run("Cycle", func(t *testing.T) {
		g := domain.Graph{
			Nodes: []domain.Node{a, b},
			Edges: []domain.Edge{
				domain.Connection{Source: "a", Target: "b"}.Edge(),
				domain.Connection{Source: "b", Target: "a"}.Edge(),
			},
		}
		out := ReportMarkdown("flow.yaml", g, validation.Default().Evaluate(g))
		if !strings.Contains(out, "Infinite loop detected") || !strings.Contains(out, "`a → b → a`") {
			t.Errorf("unexpected report:\n%s", out)
		}
	})

	t.Run("Dangling Starts", func(t *testing.T) {
		g := domain.Graph{Nodes: []domain.Node{a, b}}
		out := ReportMarkdown("flow.yaml", g, validation.Default().Evaluate(g))
		if !strings.Contains(out, "`single_entry`") || !strings.Contains(out, "  - `b`") {
			t.Errorf("unexpected report:\n%s", out)
		}
	})
}

func TestPlainRenderer(t *testing.T) {
	out, err := PlainRenderer()("# hi")
	if err != nil || out != "# hi" {
		t.Errorf("PlainRenderer() = %q, %v", out, err)
	}
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "v1.2.3")
	if !strings.Contains(buf.String(), "v1.2.3") {
		t.Errorf("banner should include the version, got %q", buf.String())
	}
}
