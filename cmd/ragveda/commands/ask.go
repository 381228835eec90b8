// ABOUTME: CLI command to ask a single question in-process
// ABOUTME: Builds or reuses the index, then prints the answer and its sources
package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	askLimit int
)

// NewAskCmd creates the ask command
func NewAskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question about the corpus",
		Long: `Ask a single question without starting the server.

The index is built first if it is empty or the corpus has changed. With
an in-memory index (the default) this happens on every run; set
RAGVEDA_INDEX_PATH to reuse a persistent index.

Examples:
  ragveda ask "What is the nature of the self?"
  ragveda ask --limit 5 "What does Krishna say about duty?"
  ragveda ask --format json "What is yoga?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: runAsk,
	}

	cmd.Flags().IntVar(&askLimit, "limit", 0, "Number of passages to retrieve (default from config)")

	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	var limit *int
	if cmd.Flags().Changed("limit") {
		if err := validatePositiveInt(askLimit, "limit"); err != nil {
			return err
		}
		limit = &askLimit
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
		return fmt.Errorf("initializing engine: %w", err)
	}

	question := strings.Join(args, " ")
	answer, err := a.engine.Ask(ctx, question, limit)
	if err != nil {
		return fmt.Errorf("asking question: %w", err)
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		jsonData, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(out, "%s\n", jsonData)
		return nil
	}

	fmt.Fprintf(out, "%s\n", answer.Answer)
	if len(answer.Sources) > 0 && !quiet {
		fmt.Fprintf(out, "\nSources:\n")
		for i, src := range answer.Sources {
			fmt.Fprintf(out, "  %d. %s\n", i+1, singleLine(src))
		}
	}
	return nil
}
