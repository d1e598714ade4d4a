package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/tapestry/internal/presentation/tui"
)

var showCmd = &cobra.Command{
	Use:   "show <doc>",
	Short: "Print a readable summary of a document",
	Long:  `Renders nodes, edges and variables as markdown, styled when stdout is a terminal.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		plain, _ := cmd.Flags().GetBool("plain")

		ed, err := openDocument(args[0])
		if err != nil {
			return err
		}

		styled, width := false, 0
		if f, ok := cmd.OutOrStdout().(*os.File); ok && !plain {
			fd := int(f.Fd())
			if term.IsTerminal(fd) {
				styled = true
				if w, _, err := term.GetSize(fd); err == nil {
					width = w
				}
			}
		}

		render := tui.NewRenderer(styled, width)
		out, err := render(tui.Summary(ed.Document()))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().Bool("plain", false, "Print raw markdown even on a terminal")
}
