package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/chatflow/pkg/domain"
	flowgraph "github.com/aretw0/chatflow/pkg/graph"
	"github.com/aretw0/chatflow/pkg/validation"
)

// GraphOverlay contains validation state to visualize on the graph.
type GraphOverlay struct {
	// Cycle is a closed path (first id repeated last) to highlight.
	Cycle []string
	// Offenders are nodes named by a failed save rule.
	Offenders []string
}

// OverlayFromReport builds the overlay for a save report. Cycle offenders
// become the highlighted path; other rules mark their offending nodes.
func OverlayFromReport(r validation.Report) *GraphOverlay {
	switch {
	case r.OK():
		return nil
	case r.Verdict == domain.VerdictCycleDetected:
		return &GraphOverlay{Cycle: r.Offenders}
	default:
		return &GraphOverlay{Offenders: r.Offenders}
	}
}

const maxLabel = 30

// GenerateMermaid produces a Mermaid flowchart syntax string from a flow.
// It applies semantic styling:
// - Entry (no incoming edge): ((Circle))
// - Image: [/Parallelogram/]
// - Text: [Rectangle]
// Edges whose endpoints are missing are skipped.
func GenerateMermaid(g domain.Graph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	incoming := flowgraph.IncomingCounts(g.Nodes, g.Edges)
	for _, node := range g.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case incoming[node.ID] == 0:
			opener, closer = "((", "))"
		case node.Type == domain.NodeTypeImage:
			opener, closer = "[/", "/]"
		}

		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, nodeLabel(node), closer)
	}

	var cycleLinks []int
	onCycle := cycleEdges(overlay)
	link := 0
	for _, e := range g.Edges {
		if !g.HasNode(e.Source) || !g.HasNode(e.Target) {
			continue
		}
		fmt.Fprintf(&sb, "    %s --> %s\n", sanitizeMermaidID(e.Source), sanitizeMermaidID(e.Target))
		if onCycle[[2]string{e.Source, e.Target}] {
			cycleLinks = append(cycleLinks, link)
		}
		link++
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef cycle fill:#ffcdd2,stroke:#c62828,stroke-width:3px,color:#000;\n")
		sb.WriteString("    classDef offender fill:#fff3e0,stroke:#ef6c00,stroke-width:2px,color:#000;\n")

		styled := make(map[string]bool)
		for _, id := range overlay.Cycle {
			safeID := sanitizeMermaidID(id)
			if !styled[safeID] && safeID != "" {
				styled[safeID] = true
				fmt.Fprintf(&sb, "    class %s cycle;\n", safeID)
			}
		}
		for _, id := range overlay.Offenders {
			safeID := sanitizeMermaidID(id)
			if !styled[safeID] && safeID != "" {
				styled[safeID] = true
				fmt.Fprintf(&sb, "    class %s offender;\n", safeID)
			}
		}
		for _, i := range cycleLinks {
			fmt.Fprintf(&sb, "    linkStyle %d stroke:#c62828,stroke-width:3px;\n", i)
		}
	}

	return sb.String()
}

func cycleEdges(overlay *GraphOverlay) map[[2]string]bool {
	out := make(map[[2]string]bool)
	if overlay == nil {
		return out
	}
	for i := 0; i+1 < len(overlay.Cycle); i++ {
		out[[2]string{overlay.Cycle[i], overlay.Cycle[i+1]}] = true
	}
	return out
}

func nodeLabel(n domain.Node) string {
	body := n.Data.Label
	if n.Type == domain.NodeTypeImage {
		body = "🖼️ " + n.Data.ImageURL
	}
	body = strings.ReplaceAll(body, "\"", "'")
	body = strings.ReplaceAll(body, "\n", " ")
	if r := []rune(body); len(r) > maxLabel {
		body = string(r[:maxLabel]) + "…"
	}
	if strings.TrimSpace(body) == "" {
		return n.ID
	}
	return fmt.Sprintf("%s <br/> %s", n.ID, body)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
