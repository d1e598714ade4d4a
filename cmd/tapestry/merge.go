package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/tapestry/pkg/codec"
	"github.com/aretw0/tapestry/pkg/domain"
)

var mergeCmd = &cobra.Command{
	Use:   "merge <base> <fragment>",
	Short: "Merge a document fragment into a base document",
	Long: `Splices every node, edge and variable of <fragment> into <base> with fresh ids.
Variables already defined in <base> are kept. With --at the fragment's top-left corner
lands on the given canvas point.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")
		atFlag, _ := cmd.Flags().GetString("at")

		at, err := parsePoint(atFlag)
		if err != nil {
			return err
		}

		ed, err := openDocument(args[0])
		if err != nil {
			return err
		}

		data, err := os.ReadFile(args[1])
		if err != nil {
			return fmt.Errorf("failed to read fragment: %w", err)
		}
		fragment, err := codec.Decode(data, codec.FormatFromPath(args[1]))
		if err != nil {
			return fmt.Errorf("%s: %w", args[1], err)
		}

		rep, err := ed.MergeDocument(fragment, at)
		if err != nil {
			return err
		}
		logger.Info("merged",
			"nodes", len(rep.Nodes),
			"edges", len(rep.Edges),
			"dropped_variables", rep.DroppedVariables,
			"dropped_edges", rep.DroppedEdges,
		)
		return writeDocument(cmd, ed, out, format)
	},
}

func init() {
	rootCmd.AddCommand(mergeCmd)
	mergeCmd.Flags().StringP("output", "o", "", "Write the result to a file instead of stdout")
	mergeCmd.Flags().StringP("format", "f", "", "Output format: json or yaml (default: from --output, else json)")
	mergeCmd.Flags().String("at", "", "Drop point as x,y")
}

// parsePoint reads "x,y". An empty string yields nil.
func parsePoint(s string) (*domain.Position, error) {
	if s == "" {
		return nil, nil
	}
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return nil, fmt.Errorf("invalid point %q: expected x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return &domain.Position{X: x, Y: y}, nil
}
