// ABOUTME: Retrieval and answer scoring for corpus benchmarks
// ABOUTME: Scores answer phrases, passage recall, and the rank of the first relevant passage

package ragas

import (
	"fmt"
	"strings"

	"github.com/harper/ragveda/internal/models"
)

// PassThreshold is the minimum answer score and context recall for a PASS
const PassThreshold = 0.9

// normalize lowercases s and collapses whitespace so that phrases match
// across the line breaks inside a chunk
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// matches reports whether passage satisfies one expected item: a chunk id
// equal to item, or a phrase contained in the full passage text
func matches(passage models.SearchResult, item string) bool {
	if passage.ID == item {
		return true
	}
	return strings.Contains(normalize(passage.Document), normalize(item))
}

// AnswerScore is the fraction of required phrases present in the answer.
// Any forbidden phrase scores 0. With nothing required the score is 1.
func AnswerScore(answer string, mustContain, mustNotContain []string) (float64, string) {
	text := normalize(answer)

	for _, phrase := range mustNotContain {
		if strings.Contains(text, normalize(phrase)) {
			return 0, fmt.Sprintf("answer contains forbidden phrase %q", phrase)
		}
	}
	if len(mustContain) == 0 {
		return 1, "no required phrases"
	}

	var missing []string
	for _, phrase := range mustContain {
		if !strings.Contains(text, normalize(phrase)) {
			missing = append(missing, phrase)
		}
	}
	score := float64(len(mustContain)-len(missing)) / float64(len(mustContain))
	if len(missing) == 0 {
		return score, "all required phrases present"
	}
	return score, fmt.Sprintf("answer missing %v", missing)
}

// ContextRecall is the fraction of expected items (phrases or chunk ids)
// found in any retrieved passage. With nothing expected the recall is 1.
func ContextRecall(passages []models.SearchResult, expected []string) (float64, string) {
	if len(expected) == 0 {
		return 1, "no expected passages"
	}

	var missing []string
	for _, item := range expected {
		found := false
		for _, p := range passages {
			if matches(p, item) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, item)
		}
	}
	recall := float64(len(expected)-len(missing)) / float64(len(expected))
	if len(missing) == 0 {
		return recall, fmt.Sprintf("all %d expected items retrieved", len(expected))
	}
	return recall, fmt.Sprintf("not retrieved: %v", missing)
}

// FirstHitRank returns the 1-based rank of the first passage matching any
// expected item, or 0 when none does
func FirstHitRank(passages []models.SearchResult, expected []string) int {
	for i, p := range passages {
		for _, item := range expected {
			if matches(p, item) {
				return i + 1
			}
		}
	}
	return 0
}

// EvaluateTest scores one answered scenario
func EvaluateTest(scenario TestScenario, answer *models.Answer) TestResult {
	gt := scenario.GroundTruth
	expected := append(append([]string{}, gt.ExpectedPassages...), gt.ExpectedChunks...)

	answerScore, answerDetail := AnswerScore(answer.Answer, gt.AnswerMustContain, gt.AnswerMustNotContain)
	recall, recallDetail := ContextRecall(answer.Passages, expected)

	result := TestResult{
		TestID:        scenario.ID,
		TestName:      scenario.Name,
		AnswerScore:   answerScore,
		ContextRecall: recall,
		Status:        "FAIL",
		Details: map[string]interface{}{
			"answer_detail":  answerDetail,
			"recall_detail":  recallDetail,
			"answer_preview": preview(answer.Answer, 200),
			"passages":       len(answer.Passages),
		},
	}
	if len(expected) > 0 {
		result.FirstHitRank = FirstHitRank(answer.Passages, expected)
		if result.FirstHitRank > 0 {
			result.ReciprocalRank = 1 / float64(result.FirstHitRank)
		}
	}
	if answerScore >= PassThreshold && recall >= PassThreshold {
		result.Status = "PASS"
	}
	return result
}

// preview returns at most n characters of s
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
