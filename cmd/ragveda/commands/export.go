// ABOUTME: CLI command to export the indexed chunks
// ABOUTME: Writes YAML, Markdown, or JSON (with vectors) to stdout or a file
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/harper/ragveda/internal/storage/sqlite"
)

var (
	exportType   string
	exportOutput string
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export indexed chunks",
		Long: `Export the indexed chunks for inspection or backup.

Supported types:
  yaml      chunk ids, positions, and text
  markdown  a readable document with one section per chunk
  json      everything, including embedding vectors

The index is built first if needed.

Examples:
  ragveda export
  ragveda export --type markdown --output chunks.md
  ragveda export --type json --output index.json`,
		Args: cobra.NoArgs,
		RunE: runExport,
	}

	cmd.Flags().StringVarP(&exportType, "type", "t", "yaml", "Export type: yaml, markdown, json")
	cmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")

	return cmd
}

func exportWriter(kind string) (func(*sqlite.Collection, context.Context, io.Writer) error, error) {
	switch kind {
	case "yaml", "yml":
		return (*sqlite.Collection).WriteYAML, nil
	case "markdown", "md":
		return (*sqlite.Collection).WriteMarkdown, nil
	case "json":
		return (*sqlite.Collection).WriteJSON, nil
	default:
		return nil, fmt.Errorf("unsupported export type %q (use yaml, markdown, or json)", kind)
	}
}

func runExport(cmd *cobra.Command, args []string) error {
	write, err := exportWriter(exportType)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.engine.Initialize(ctx); err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	if exportOutput == "" {
		return write(a.collection, ctx, cmd.OutOrStdout())
	}

	if err := a.collection.ExportToFile(ctx, exportOutput, write); err != nil {
		return err
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Exported collection %s to %s\n", a.collection.Name(), exportOutput)
	}
	return nil
}
