package main

import (
	"fmt"

	"github.com/aretw0/chatflow/internal/presentation/graph"
	"github.com/aretw0/chatflow/pkg/adapters/flowfile"
	"github.com/aretw0/chatflow/pkg/validation"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <flow-file>",
	Short: "Export the flow graph visualization",
	Long: `Loads a flow file and outputs a Mermaid diagram (graph TD). Nodes on a loop
and extra entry nodes are highlighted unless --plain is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := flowfile.NewSource(args[0]).Load(cmd.Context())
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if plain, _ := cmd.Flags().GetBool("plain"); !plain {
			overlay = graph.OverlayFromReport(validation.Default().Evaluate(g))
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(g, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("plain", false, "Do not highlight validation problems")
}
