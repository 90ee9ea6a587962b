// Package predict estimates mock test percentage scores from past sittings.
package predict

import (
	"errors"
	"fmt"

	"github.com/julianstephens/studylog/internal/analytics"
	"github.com/julianstephens/studylog/internal/constants"
	"github.com/julianstephens/studylog/internal/models"
)

var ErrInsufficientHistory = errors.New("insufficient history for prediction")

// Sample is one observed sitting: the two features and the percentage score.
type Sample struct {
	TimeTakenMin float64
	Difficulty   int
	Percentage   float64
}

// Scenario is a hypothetical sitting to score.
type Scenario struct {
	Label        string
	TimeTakenMin float64
	Difficulty   int
}

// Predictor maps scenarios to expected percentage scores, one per scenario.
type Predictor interface {
	Predict(history []Sample, scenarios []Scenario) ([]float64, error)
}

// HistoryFromMockTests converts scored results into samples, dropping rows
// with an unknown difficulty or a negative time.
func HistoryFromMockTests(scored []analytics.ScoredMockTest) []Sample {
	out := make([]Sample, 0, len(scored))
	for _, s := range scored {
		level := s.Difficulty.Level()
		if level == 0 || s.TimeTakenMin < 0 {
			continue
		}
		out = append(out, Sample{
			TimeTakenMin: float64(s.TimeTakenMin),
			Difficulty:   level,
			Percentage:   s.PercentageScore,
		})
	}
	return out
}

// DefaultScenarios varies the latest sitting three ways: ten percent faster
// on a harder paper, unchanged, and ten percent slower on an easier paper.
// Difficulty is clamped to the known levels.
func DefaultScenarios(latest models.MockTestResult) []Scenario {
	t := float64(latest.TimeTakenMin)
	level := latest.Difficulty.Level()
	if level == 0 {
		level = models.DifficultyMedium.Level()
	}
	return []Scenario{
		{Label: "faster, harder", TimeTakenMin: t * 0.9, Difficulty: models.DifficultyFromLevel(level + 1).Level()},
		{Label: "same conditions", TimeTakenMin: t, Difficulty: level},
		{Label: "slower, easier", TimeTakenMin: t * 1.1, Difficulty: models.DifficultyFromLevel(level - 1).Level()},
	}
}

func checkHistory(history []Sample) error {
	if len(history) < constants.MinPredictionHistory {
		return fmt.Errorf("%w: have %d scored tests, need %d",
			ErrInsufficientHistory, len(history), constants.MinPredictionHistory)
	}
	return nil
}
