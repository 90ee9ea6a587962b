package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/studylog/internal/models"
)

func TestFilename(t *testing.T) {
	assert.Equal(t, "mock_tests_2026-03-10.csv", Filename("mock_tests", "2026-03-10"))
}

func TestWritePracticeLogs(t *testing.T) {
	var buf bytes.Buffer
	err := WritePracticeLogs(&buf, []models.PracticeLog{{
		ID: 3, Date: "2026-03-09", Subject: "Physics", Chapter: "Optics",
		ProblemSet: "DPP-2", Score: 70, Accuracy: 80, TimeTakenMin: 30, Notes: "lens, mirrors",
	}})
	require.NoError(t, err)
	assert.Equal(t,
		"ID,Date,Subject,Chapter,DPP_Number,Score,Accuracy,Time_Taken,Notes\n"+
			"3,2026-03-09,Physics,Optics,DPP-2,70,80,30,\"lens, mirrors\"\n",
		buf.String())
}

func TestWritePlannerTasksEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlannerTasks(&buf, nil))
	assert.Equal(t, "ID,Subject,Topic,DueDate,Priority,Status,Notes,CreatedDate\n", buf.String())
}

func TestMockTestsRoundTrip(t *testing.T) {
	in := []models.MockTestResult{{
		ID: "abc", UserID: 1, AssessmentDate: "2026-03-01", ExamType: models.ExamJEEMains,
		TestName: "AITS 4", Domain: "Mechanics", TotalQuestions: 75, Attempted: 60, Correct: 48,
		Wrong: 12, PhysicsScore: models.Float(72.5), TotalScore: 180, MaxScorePossible: 300,
		Percentile: 91.2, Rank: 1200, TargetScore: 200, Difficulty: models.DifficultyHard,
		TimeTakenMin: 175, NeuralSignature: "rmj", Timestamp: "2026-03-01T10:00:00Z",
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteMockTests(&buf, in))

	out, err := ReadMockTests(&buf)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestReadMockTestsDefaultsAndNewRows(t *testing.T) {
	sheet := "ID,Assessment_Date,Test_Name,Domain,Total_Score,Exam_Type,Attempted,percentage_score\n" +
		",2026-03-02,Weekly 1,Optics,55,,40.0,55\n" +
		",2026-03-03,Weekly 2,Optics,120,JEE Advanced,,\n"
	out, err := ReadMockTests(strings.NewReader(sheet))
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Empty(t, out[0].ID)
	assert.Equal(t, models.ExamOther, out[0].ExamType)
	assert.Equal(t, 100.0, out[0].MaxScorePossible)
	assert.Equal(t, models.DifficultyMedium, out[0].Difficulty)
	assert.Equal(t, 40, out[0].Attempted)
	assert.Nil(t, out[0].PhysicsScore)

	assert.Equal(t, 360.0, out[1].MaxScorePossible)
}

func TestReadMockTestsErrors(t *testing.T) {
	_, err := ReadMockTests(strings.NewReader("id,test_name\n"))
	assert.ErrorContains(t, err, `missing column "assessment_date"`)

	_, err = ReadMockTests(strings.NewReader(
		"id,assessment_date,test_name,domain,total_score,rank\nx,2026-03-01,T,Optics,10,1.5\n"))
	assert.ErrorContains(t, err, "line 2: rank")

	_, err = ReadMockTests(strings.NewReader(
		"id,assessment_date,test_name,domain,total_score\nx,2026-03-01,T,Optics,ten\n"))
	assert.ErrorContains(t, err, "total_score")
}

func TestReadMockTestsEmpty(t *testing.T) {
	out, err := ReadMockTests(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, out)
}
