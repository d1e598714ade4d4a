package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/tapestry"
	"github.com/aretw0/tapestry/internal/config"
	"github.com/aretw0/tapestry/internal/logging"
	"github.com/aretw0/tapestry/pkg/codec"
)

var (
	cfg    = config.Default()
	logger = logging.NewNop()
)

var rootCmd = &cobra.Command{
	Use:           "tapestry",
	Short:         "Tapestry edits visual workflow documents",
	Long:          `Tapestry merges, validates, inspects and serves workflow documents: graphs of module nodes, edges and variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			loaded.LogLevel, _ = cmd.Flags().GetString("log-level")
		}
		level, err := logging.ParseLevel(loaded.LogLevel)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = logging.NewWithWriter(cmd.ErrOrStderr(), level)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "tapestry.yaml", "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error")
}

// newEditor builds an editor from the loaded configuration.
func newEditor(opts ...tapestry.Option) *tapestry.Editor {
	base := []tapestry.Option{
		tapestry.WithConfig(cfg),
		tapestry.WithLogger(logger),
	}
	return tapestry.New(append(base, opts...)...)
}

// openDocument reads a document file into a fresh editor.
func openDocument(path string) (*tapestry.Editor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	doc, err := codec.Decode(data, codec.FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ed := newEditor()
	if err := ed.LoadDocument(doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("document opened", slog.String("path", path), slog.Int("nodes", len(doc.Nodes)))
	return ed, nil
}

// writeDocument exports ed to path, or to the command's stdout when path is empty.
// The format follows the path extension unless format is set.
func writeDocument(cmd *cobra.Command, ed *tapestry.Editor, path, format string) error {
	f := codec.JSON
	switch {
	case format != "":
		parsed, err := codec.ParseFormat(format)
		if err != nil {
			return err
		}
		f = parsed
	case path != "":
		f = codec.FormatFromPath(path)
	}

	data, err := ed.Export(f)
	if err != nil {
		return err
	}
	if path == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}
