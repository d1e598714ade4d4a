package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/tapestry/internal/presentation/graph"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <doc>",
	Short: "Export the workflow graph visualization",
	Long:  `Outputs a Mermaid diagram (graph LR) of the document. --highlight marks the nodes referencing a variable.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		highlight, _ := cmd.Flags().GetString("highlight")

		ed, err := openDocument(args[0])
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if highlight != "" {
			overlay = &graph.GraphOverlay{}
			for _, u := range ed.FindUsages(highlight) {
				overlay.Highlighted = append(overlay.Highlighted, u.NodeID)
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(ed.Document(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("highlight", "", "Variable whose referencing nodes are highlighted")
}
