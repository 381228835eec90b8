// ABOUTME: CLI command to build or verify the vector index
// ABOUTME: Shows a progress bar while embedding and prints collection stats
package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	indexRebuild bool
)

// NewIndexCmd creates the index command
func NewIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build or verify the corpus index",
		Long: `Build the vector index for the corpus, or verify an existing one.

Ingestion is skipped when the collection already matches the corpus,
chunking parameters, and embedding model. Most useful with a persistent
RAGVEDA_INDEX_PATH so that serve and ask start instantly.

Examples:
  RAGVEDA_INDEX_PATH=./index.db ragveda index
  ragveda index --rebuild --format json`,
		Args: cobra.NoArgs,
		RunE: runIndex,
	}

	cmd.Flags().BoolVar(&indexRebuild, "rebuild", false, "Discard the existing collection and re-index")

	return cmd
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if quiet {
			return
		}
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(os.Stderr),
				progressbar.OptionSetDescription("indexing"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set(done)
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, progress)
	if err != nil {
		return err
	}
	defer a.Close()

	if indexRebuild {
		if err := a.collection.Reset(ctx); err != nil {
			return fmt.Errorf("resetting collection: %w", err)
		}
	}

	err = a.engine.Initialize(ctx)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("building index: %w", err)
	}

	stats, err := a.engine.Stats(ctx)
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(out, "%s\n", jsonData)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Collection\t%s\n", stats.CollectionName)
	fmt.Fprintf(w, "Documents\t%d\n", stats.Count)
	fmt.Fprintf(w, "Data file\t%s\n", stats.DataFile)
	fmt.Fprintf(w, "Index\t%s\n", a.db.Path())
	fmt.Fprintf(w, "Embedder\t%s\n", a.embedder.ModelInfo())
	return w.Flush()
}
