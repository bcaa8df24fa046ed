package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/chatflow/pkg/domain"
	"github.com/aretw0/chatflow/pkg/validation"
)

// ReportMarkdown describes a save report for a flow as markdown.
func ReportMarkdown(title string, g domain.Graph, r validation.Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "%d nodes, %d edges\n\n", len(g.Nodes), len(g.Edges))

	if r.OK() {
		fmt.Fprintf(&sb, "**✅ %s**\n", r.Message)
		return sb.String()
	}

	fmt.Fprintf(&sb, "**❌ %s**\n\n", r.Message)
	fmt.Fprintf(&sb, "- Rule: `%s`\n", r.Rule)
	fmt.Fprintf(&sb, "- Verdict: `%s`\n", r.Verdict)

	switch r.Verdict {
	case domain.VerdictCycleDetected:
		fmt.Fprintf(&sb, "- Loop: `%s`\n", strings.Join(r.Offenders, " → "))
	default:
		if len(r.Offenders) > 0 {
			sb.WriteString("- Nodes:\n")
			for _, id := range r.Offenders {
				fmt.Fprintf(&sb, "  - `%s`\n", id)
			}
		}
	}
	return sb.String()
}
