package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var renameVarCmd = &cobra.Command{
	Use:   "rename-var <doc> <old> <new>",
	Short: "Rename a variable and rewrite every reference to it",
	Long: `Renames the variable and rewrites each {old} and {old[index]} placeholder in node
properties, at any depth, keeping index expressions verbatim.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")
		format, _ := cmd.Flags().GetString("format")
		inPlace, _ := cmd.Flags().GetBool("write")
		if inPlace {
			out = args[0]
		}

		ed, err := openDocument(args[0])
		if err != nil {
			return err
		}
		fields, err := ed.RenameVariable(args[1], args[2])
		if err != nil {
			return err
		}
		logger.Info("variable renamed", "from", args[1], "to", args[2], "fields", fields)
		return writeDocument(cmd, ed, out, format)
	},
}

var usagesCmd = &cobra.Command{
	Use:   "usages <doc> <name>",
	Short: "List the node fields referencing a variable",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ed, err := openDocument(args[0])
		if err != nil {
			return err
		}
		usages := ed.FindUsages(args[1])
		if len(usages) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No usages of {%s}\n", args[1])
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NODE\tFIELD\tVALUE")
		for _, u := range usages {
			fmt.Fprintf(w, "%s\t%s\t%s\n", u.NodeID, u.Field, u.RawValue)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(renameVarCmd)
	rootCmd.AddCommand(usagesCmd)
	renameVarCmd.Flags().StringP("output", "o", "", "Write the result to a file instead of stdout")
	renameVarCmd.Flags().StringP("format", "f", "", "Output format: json or yaml")
	renameVarCmd.Flags().BoolP("write", "w", false, "Rewrite <doc> in place")
}
