package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/tapestry/pkg/codec"
	"github.com/aretw0/tapestry/pkg/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate <doc>",
	Short: "Check a document for consistency",
	Long:  `Reports missing sections, duplicate or empty ids, self-loops, dangling edges and ill-typed variables.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read document: %w", err)
		}
		doc, err := codec.Decode(data, codec.FormatFromPath(args[0]))
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		if err := schema.ValidateDocument(doc); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Document is valid! ✅ (%d nodes, %d edges, %d variables)\n",
			len(doc.Nodes), len(doc.Edges), len(doc.Variables))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
