// ABOUTME: Evaluation scenario data structures for RAGAS-style benchmarks
// ABOUTME: Defines questions, ground truth, and results; scenarios load from YAML or built-ins

package ragas

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/harper/ragveda/internal/core"
	"github.com/harper/ragveda/internal/models"
)

// TestScenario represents one benchmark question against the corpus
type TestScenario struct {
	ID           string      `yaml:"id"`
	Name         string      `yaml:"name"`
	Description  string      `yaml:"description,omitempty"`
	Question     string      `yaml:"question"`
	ContextLimit *int        `yaml:"context_limit,omitempty"`
	GroundTruth  GroundTruth `yaml:"ground_truth"`
}

// GroundTruth defines expected outcomes for one question
type GroundTruth struct {
	AnswerMustContain    []string `yaml:"answer_must_contain"`
	AnswerMustNotContain []string `yaml:"answer_must_not_contain"`

	// Phrases expected somewhere in the full retrieved passages
	ExpectedPassages []string `yaml:"expected_passages"`
	// Chunk ids (chunk_N) expected among the retrieved passages
	ExpectedChunks []string `yaml:"expected_chunks"`
}

// TestResult represents the outcome of a benchmark test
type TestResult struct {
	TestID         string                 `json:"test_id"`
	TestName       string                 `json:"test_name"`
	AnswerScore    float64                `json:"answer_score"`
	ContextRecall  float64                `json:"context_recall"`
	FirstHitRank   int                    `json:"first_hit_rank"` // 0 when nothing relevant was retrieved
	ReciprocalRank float64                `json:"reciprocal_rank"`
	Status         string                 `json:"status"` // "PASS" or "FAIL"
	Details        map[string]interface{} `json:"details,omitempty"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
}

type scenarioFile struct {
	Scenarios []TestScenario `yaml:"scenarios"`
}

// LoadScenarios reads scenarios from a YAML file with a top-level
// "scenarios" list
func LoadScenarios(path string) ([]TestScenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenarios: %w", err)
	}

	var f scenarioFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse scenarios: %w", err)
	}
	if len(f.Scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios in %s", path)
	}

	seen := make(map[string]bool, len(f.Scenarios))
	for i, s := range f.Scenarios {
		if s.ID == "" || s.Question == "" {
			return nil, fmt.Errorf("scenario %d: id and question are required", i)
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("duplicate scenario id %q", s.ID)
		}
		seen[s.ID] = true
		for _, id := range s.GroundTruth.ExpectedChunks {
			if _, err := models.ParseChunkID(id); err != nil {
				return nil, fmt.Errorf("scenario %s: %w", s.ID, err)
			}
		}
	}
	return f.Scenarios, nil
}

// DefaultScenarios returns the built-in Bhagavad Gita questions
func DefaultScenarios() []TestScenario {
	return []TestScenario{
		{
			ID:          "duty",
			Name:        "Action Without Attachment",
			Description: "The answer should address duty and retrieval should surface the fruits of action",
			Question:    "What does Krishna say about performing one's duty?",
			GroundTruth: GroundTruth{
				AnswerMustContain:    []string{"duty"},
				AnswerMustNotContain: []string{core.NoResultsAnswer},
				ExpectedPassages:     []string{"duty"},
			},
		},
		{
			ID:          "self",
			Name:        "The Eternal Self",
			Description: "Retrieval should surface the passages on the imperishable self",
			Question:    "Is the soul eternal, and can it be destroyed?",
			GroundTruth: GroundTruth{
				AnswerMustNotContain: []string{core.NoResultsAnswer},
				ExpectedPassages:     []string{"eternal"},
			},
		},
		{
			ID:          "yoga",
			Name:        "Definition of Yoga",
			Description: "Retrieval should surface the definition of yoga as equanimity",
			Question:    "What is yoga?",
			GroundTruth: GroundTruth{
				AnswerMustContain:    []string{"yoga"},
				AnswerMustNotContain: []string{core.NoResultsAnswer},
				ExpectedPassages:     []string{"yoga"},
			},
		},
	}
}

// FindScenario returns the scenario with the given id
func FindScenario(scenarios []TestScenario, id string) (TestScenario, bool) {
	for _, s := range scenarios {
		if s.ID == id {
			return s, true
		}
	}
	return TestScenario{}, false
}
