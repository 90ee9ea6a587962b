// Package analytics computes derived metrics over already loaded tables.
// Nothing here performs I/O and every function is deterministic.
package analytics

import (
	"math"

	"github.com/julianstephens/studylog/internal/models"
)

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ratioPercent returns num/den*100, or 0 when den is not positive.
func ratioPercent(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return Round2(num / den * 100)
}

// PercentageScore is total over max as a percentage; 0 when max is 0.
func PercentageScore(total, max float64) float64 {
	return ratioPercent(total, max)
}

// AccuracyQ is correct over attempted as a percentage; 0 when nothing was attempted.
func AccuracyQ(correct, attempted int) float64 {
	return ratioPercent(float64(correct), float64(attempted))
}

// ScoredMockTest is a mock test result with its derived columns.
type ScoredMockTest struct {
	models.MockTestResult
	PercentageScore float64 `json:"percentage_score"`
	AccuracyQ       float64 `json:"accuracy_q"`
	Unattempted     int     `json:"unattempted"`
}

// DeriveMockTest computes the derived columns for one result.
func DeriveMockTest(m models.MockTestResult) ScoredMockTest {
	return ScoredMockTest{
		MockTestResult:  m,
		PercentageScore: PercentageScore(m.TotalScore, m.MaxScorePossible),
		AccuracyQ:       AccuracyQ(m.Correct, m.Attempted),
		Unattempted:     m.TotalQuestions - m.Attempted,
	}
}

// ScoreMockTests derives every row, preserving order.
func ScoreMockTests(results []models.MockTestResult) []ScoredMockTest {
	out := make([]ScoredMockTest, len(results))
	for i, m := range results {
		out[i] = DeriveMockTest(m)
	}
	return out
}
