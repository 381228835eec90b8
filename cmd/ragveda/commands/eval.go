// ABOUTME: CLI command to run RAGAS-style retrieval benchmarks against the corpus
// ABOUTME: Scores faithfulness and context recall per scenario and exports JSON results
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harper/ragveda/benchmarks/ragas"
)

var (
	evalScenarios string
	evalTest      string
	evalOutput    string
)

// NewEvalCmd creates the eval command
func NewEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Run retrieval benchmarks",
		Long: `Ask a set of benchmark questions and score the answers.

Each scenario lists phrases expected in the answer, phrases that must not
appear, and phrases or chunk ids expected among the retrieved passages.
Results report answer score, context recall, and the rank of the first
relevant passage. Without --scenarios the built-in questions are used.

Examples:
  ragveda eval
  ragveda eval --scenarios bench.yaml --output results.json
  ragveda eval --test duty`,
		Args: cobra.NoArgs,
		RunE: runEval,
	}

	cmd.Flags().StringVar(&evalScenarios, "scenarios", "", "YAML file of scenarios (default built-in)")
	cmd.Flags().StringVar(&evalTest, "test", "", "Run only the scenario with this id")
	cmd.Flags().StringVarP(&evalOutput, "output", "o", "", "Write JSON results to this file")

	return cmd
}

func runEval(cmd *cobra.Command, args []string) error {
	scenarios := ragas.DefaultScenarios()
	if evalScenarios != "" {
		loaded, err := ragas.LoadScenarios(evalScenarios)
		if err != nil {
			return err
		}
		scenarios = loaded
	}
	if evalTest != "" {
		scenario, ok := ragas.FindScenario(scenarios, evalTest)
		if !ok {
			return fmt.Errorf("unknown scenario %q", evalTest)
		}
		scenarios = []ragas.TestScenario{scenario}
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

	runner := ragas.NewBenchmarkRunner(a.engine, verbose)
	results, err := runner.RunAllTests(ctx, scenarios)
	if err != nil {
		return fmt.Errorf("benchmark interrupted: %w", err)
	}
	summary := ragas.Summarize(results)

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		if err := ragas.WriteSummary(out, summary); err != nil {
			return err
		}
	} else {
		for _, result := range results {
			fmt.Fprintf(out, "%s: %s\n", result.TestID, result.TestName)
			if result.ErrorMessage != "" {
				fmt.Fprintf(out, "  Error: %s\n", result.ErrorMessage)
			} else {
				fmt.Fprintf(out, "  Answer: %.2f\n", result.AnswerScore)
				fmt.Fprintf(out, "  Context Recall: %.2f\n", result.ContextRecall)
				fmt.Fprintf(out, "  First Hit Rank: %d\n", result.FirstHitRank)
			}
			fmt.Fprintf(out, "  Status: %s\n", result.Status)
		}
		fmt.Fprintf(out, "\nTotal: %d  Passed: %d  Failed: %d  MRR: %.2f\n",
			summary.TotalTests, summary.Passed, summary.Failed, summary.MeanReciprocalRank)
	}

	if evalOutput != "" {
		if err := ragas.ExportResults(results, evalOutput); err != nil {
			return err
		}
		if !quiet {
			fmt.Fprintf(os.Stderr, "Results exported to: %s\n", evalOutput)
		}
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d benchmarks failed", summary.Failed, summary.TotalTests)
	}
	return nil
}
