// ABOUTME: Test runner for RAGAS benchmarks - asks each scenario question and scores it
// ABOUTME: Runs against any question-answering engine and exports JSON summaries

package ragas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/harper/ragveda/internal/models"
)

// Asker answers a question with an optional context limit
type Asker interface {
	Ask(ctx context.Context, question string, contextLimit *int) (*models.Answer, error)
}

// BenchmarkRunner executes RAGAS benchmark tests
type BenchmarkRunner struct {
	engine  Asker
	verbose bool
}

// Summary is the exported benchmark report
type Summary struct {
	Timestamp          string       `json:"timestamp"`
	TotalTests         int          `json:"total_tests"`
	Passed             int          `json:"passed"`
	Failed             int          `json:"failed"`
	MeanReciprocalRank float64      `json:"mean_reciprocal_rank"`
	Results            []TestResult `json:"results"`
}

// NewBenchmarkRunner creates a new benchmark runner
func NewBenchmarkRunner(engine Asker, verbose bool) *BenchmarkRunner {
	return &BenchmarkRunner{
		engine:  engine,
		verbose: verbose,
	}
}

// RunTest executes a single benchmark test. Engine errors are recorded
// as a failed result rather than returned.
func (r *BenchmarkRunner) RunTest(ctx context.Context, scenario TestScenario) TestResult {
	if r.verbose {
		log.Printf("Running %s: %s", scenario.ID, scenario.Question)
	}

	start := time.Now()
	answer, err := r.engine.Ask(ctx, scenario.Question, scenario.ContextLimit)
	if err != nil {
		return TestResult{
			TestID:       scenario.ID,
			TestName:     scenario.Name,
			Status:       "FAIL",
			ErrorMessage: err.Error(),
		}
	}

	result := EvaluateTest(scenario, answer)
	result.Details["duration_ms"] = time.Since(start).Milliseconds()

	if r.verbose {
		log.Printf("  %s answer=%.2f recall=%.2f rank=%d", result.Status, result.AnswerScore, result.ContextRecall, result.FirstHitRank)
	}
	return result
}

// RunAllTests executes every scenario in order
func (r *BenchmarkRunner) RunAllTests(ctx context.Context, scenarios []TestScenario) ([]TestResult, error) {
	results := make([]TestResult, 0, len(scenarios))
	for _, scenario := range scenarios {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, r.RunTest(ctx, scenario))
	}
	return results, nil
}

// Summarize counts passes and failures and averages the reciprocal rank
func Summarize(results []TestResult) Summary {
	summary := Summary{
		Timestamp:  time.Now().Format(time.RFC3339),
		TotalTests: len(results),
		Results:    results,
	}
	var rrSum float64
	for _, result := range results {
		if result.Status == "PASS" {
			summary.Passed++
		} else {
			summary.Failed++
		}
		rrSum += result.ReciprocalRank
	}
	if len(results) > 0 {
		summary.MeanReciprocalRank = rrSum / float64(len(results))
	}
	return summary
}

// WriteSummary writes the summary as indented JSON
func WriteSummary(w io.Writer, summary Summary) error {
	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", jsonData)
	return err
}

// ExportResults writes the summary of results to outputPath
func ExportResults(results []TestResult, outputPath string) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create results file: %w", err)
	}
	defer f.Close()

	if err := WriteSummary(f, Summarize(results)); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}
	return nil
}
