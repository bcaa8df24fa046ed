package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/chatflow/internal/presentation/graph"
	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/validation"
)

func text(id, label string) domain.Node {
	n := domain.NewNode(id, domain.NodeTypeText, domain.Position{})
	n.Data.Label = label
	return n
}

func link(src, tgt string) domain.Edge {
	return domain.Connection{Source: src, Target: tgt}.Edge()
}

func TestGenerateMermaid(t *testing.T) {
	img := domain.NewNode("img", domain.NodeTypeImage, domain.Position{})
	img.Data.ImageURL = "https://x.io/a.png"

	tests := []struct {
		name     string
		graph    domain.Graph
		contains []string
		excludes []string
	}{
		{
			name:  "Entry Node Shape",
			graph: domain.Graph{Nodes: []domain.Node{text("a", "Hi"), text("b", "Bye")}, Edges: []domain.Edge{link("a", "b")}},
			contains: []string{
				`a(("a <br/> Hi"))`,
				`b["b <br/> Bye"]`,
				"a --> b",
			},
		},
		{
			name:     "Image Node Shape",
			graph:    domain.Graph{Nodes: []domain.Node{text("a", "Hi"), img}, Edges: []domain.Edge{link("a", "img")}},
			contains: []string{`img[/"img <br/> 🖼️ https://x.io/a.png"/]`},
		},
		{
			name: "ID Sanitization",
			graph: domain.Graph{Nodes: []domain.Node{
				text("path/to.node", ""),
				text("hyphen-ated", ""),
			}},
			contains: []string{
				`path_to_node(("path/to.node"))`,
				`hyphen_ated(("hyphen-ated"))`,
			},
		},
		{
			name:     "Label Escaping And Truncation",
			graph:    domain.Graph{Nodes: []domain.Node{text("a", `say "hello" to everyone who visits the page`)}},
			contains: []string{`a(("a <br/> say 'hello' to everyone who vi…"))`},
		},
		{
			name:     "Dangling Edge Skipped",
			graph:    domain.Graph{Nodes: []domain.Node{text("a", "")}, Edges: []domain.Edge{link("a", "ghost")}},
			excludes: []string{"ghost"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.graph, nil)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("GenerateMermaid() = \n%v\nUnexpected substring: %v", got, bad)
				}
			}
		})
	}
}

func TestGenerateMermaid_CycleOverlay(t *testing.T) {
	g := domain.Graph{
		Nodes: []domain.Node{text("a", ""), text("b", ""), text("c", ""), text("d", "")},
		Edges: []domain.Edge{link("d", "a"), link("a", "b"), link("b", "c"), link("c", "a")},
	}
	report := validation.Default().Evaluate(g)
	overlay := graph.OverlayFromReport(report)
	if overlay == nil || len(overlay.Cycle) == 0 {
		t.Fatalf("expected a cycle overlay, got %+v", overlay)
	}

	got := graph.GenerateMermaid(g, overlay)
	for _, want := range []string{
		"class a cycle;",
		"class b cycle;",
		"class c cycle;",
		"linkStyle 1 stroke:#c62828",
		"linkStyle 2 stroke:#c62828",
		"linkStyle 3 stroke:#c62828",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("GenerateMermaid() = \n%v\nWant substring: %v", got, want)
		}
	}
	if strings.Contains(got, "class d cycle;") || strings.Contains(got, "linkStyle 0 ") {
		t.Errorf("node d and its edge are not on the cycle:\n%v", got)
	}
}

func TestOverlayFromReport(t *testing.T) {
	if graph.OverlayFromReport(validation.Report{Verdict: domain.VerdictOK}) != nil {
		t.Error("a passing report has no overlay")
	}

	g := domain.Graph{Nodes: []domain.Node{text("a", ""), text("b", "")}}
	overlay := graph.OverlayFromReport(validation.Default().Evaluate(g))
	if overlay == nil || len(overlay.Offenders) != 2 {
		t.Fatalf("expected both dangling starts as offenders, got %+v", overlay)
	}

	got := graph.GenerateMermaid(g, overlay)
	if !strings.Contains(got, "class a offender;") || !strings.Contains(got, "class b offender;") {
		t.Errorf("offenders not styled:\n%v", got)
	}
}
