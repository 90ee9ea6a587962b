package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/studylog/internal/constants"
	"github.com/julianstephens/studylog/internal/errors"
	"github.com/julianstephens/studylog/internal/models"
)

func validLog() models.PracticeLog {
	return models.PracticeLog{
		Date:         "2026-03-10",
		Subject:      "Physics",
		Chapter:      "Rotational Motion",
		ProblemSet:   "DPP-04",
		Score:        80,
		Accuracy:     75,
		TimeTakenMin: 45,
	}
}

func validTask() models.PlannerTask {
	return models.PlannerTask{
		Subject:  "Maths",
		Topic:    "Definite Integrals",
		DueDate:  "2026-03-12",
		Priority: models.PriorityHigh,
		Status:   models.StatusPending,
	}
}

func validMock() models.MockTestResult {
	return models.MockTestResult{
		AssessmentDate:   "2026-03-08",
		ExamType:         models.ExamIAT,
		TestName:         "IAT Full Mock 3",
		Domain:           constants.KnowledgeDomains[0],
		TotalScore:       180,
		MaxScorePossible: 240,
		Difficulty:       models.DifficultyHard,
	}
}

func problems(t *testing.T, err error) []string {
	t.Helper()
	ve, ok := errors.AsValidation(err)
	require.True(t, ok, "expected ValidationError, got %v", err)
	return ve.Problems
}

func TestPracticeLog(t *testing.T) {
	assert.NoError(t, PracticeLog(validLog()))

	l := validLog()
	l.Chapter = "   "
	l.ProblemSet = ""
	l.Score = 101
	l.Accuracy = -1
	l.TimeTakenMin = 0

	got := problems(t, PracticeLog(l))
	assert.Equal(t, []string{
		"chapter must not be blank",
		"problem set must not be blank",
		"score must be at most 100",
		"accuracy must be at least 0",
		"time taken must be greater than 0",
	}, got)
}

func TestPracticeLogDateFormat(t *testing.T) {
	l := validLog()
	l.Date = "10/03/2026"
	assert.Equal(t, []string{"date must be a date in YYYY-MM-DD format"}, problems(t, PracticeLog(l)))
}

func TestPlannerTask(t *testing.T) {
	today := "2026-03-10"

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, PlannerTask(validTask(), today, true))
	})

	t.Run("due today allowed", func(t *testing.T) {
		task := validTask()
		task.DueDate = today
		assert.NoError(t, PlannerTask(task, today, true))
	})

	t.Run("past due rejected on create", func(t *testing.T) {
		task := validTask()
		task.DueDate = "2026-03-09"
		got := problems(t, PlannerTask(task, today, true))
		assert.Len(t, got, 1)
		assert.Contains(t, got[0], "must not be before today")
	})

	t.Run("past due allowed on update", func(t *testing.T) {
		task := validTask()
		task.DueDate = "2026-03-01"
		assert.NoError(t, PlannerTask(task, today, false))
	})

	t.Run("blank fields and bad enums reported together", func(t *testing.T) {
		task := validTask()
		task.Subject = ""
		task.Topic = " "
		task.Priority = "Urgent"
		task.Status = "Done"
		got := problems(t, PlannerTask(task, today, true))
		assert.Len(t, got, 4)
		assert.Contains(t, got, `priority "Urgent" is not a valid choice`)
	})
}

func TestMockTestResult(t *testing.T) {
	assert.NoError(t, MockTestResult(validMock()))

	m := validMock()
	m.TestName = ""
	m.TotalScore = 250
	got := problems(t, MockTestResult(m))
	assert.Equal(t, []string{
		"test name must not be blank",
		"total score must not exceed max score",
	}, got)

	m = validMock()
	m.Domain = "Astrology"
	m.ExamType = "SAT"
	m.Difficulty = "Trivial"
	got = problems(t, MockTestResult(m))
	assert.Len(t, got, 3)

	m = validMock()
	m.TotalScore = 240
	assert.NoError(t, MockTestResult(m), "total equal to max is allowed")
}
