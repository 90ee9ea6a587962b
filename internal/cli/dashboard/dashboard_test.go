package dashboard

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/studylog/internal/cli"
	"github.com/julianstephens/studylog/internal/cli/mocktests"
	"github.com/julianstephens/studylog/internal/config"
	"github.com/julianstephens/studylog/internal/models"
	"github.com/julianstephens/studylog/internal/storage"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default(dir)
	sc, err := storage.Open(filepath.Join(dir, "studylog.db"),
		storage.WithClock(func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local) }))
	require.NoError(t, err)
	require.NoError(t, sc.EnsureSchema())
	t.Cleanup(func() { sc.Close() })

	ctx := cli.NewContext(cfg, dir, sc)
	var out bytes.Buffer
	ctx.Out = &out
	ctx.Confirm = cli.AlwaysConfirm
	return ctx, &out
}

func TestDashboardEmpty(t *testing.T) {
	ctx, out := setupTestContext(t)

	require.NoError(t, (&DashboardCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Study dashboard · 2026-03-10")
	assert.Contains(t, out.String(), "No practice logs yet")
	assert.Contains(t, out.String(), "Nothing due")
	assert.Contains(t, out.String(), "No mock tests yet")
	assert.NotContains(t, out.String(), "Overdue\n")
}

func TestDashboardWithData(t *testing.T) {
	ctx, out := setupTestContext(t)

	_, err := ctx.Practice.Insert(models.PracticeLog{
		Date: "2026-03-09", Subject: "Maths", Chapter: "Limits", ProblemSet: "DPP-4",
		Score: 80, Accuracy: 90, TimeTakenMin: 40,
	})
	require.NoError(t, err)

	task := models.PlannerTask{Subject: "Physics", Topic: "Optics revision", DueDate: "2026-03-12",
		Priority: models.PriorityHigh, Status: models.StatusPending}
	_, err = ctx.Planner.Insert(task)
	require.NoError(t, err)
	lateID, err := ctx.Planner.Insert(models.PlannerTask{Subject: "Chemistry", Topic: "Mole concept", DueDate: "2026-03-11",
		Priority: models.PriorityLow, Status: models.StatusPending})
	require.NoError(t, err)
	late, err := ctx.Planner.Get(lateID)
	require.NoError(t, err)
	late.DueDate = "2026-03-01"
	require.NoError(t, ctx.Planner.Update(lateID, late))

	require.NoError(t, (&mocktests.MockAddCmd{
		TestName: "AITS 1", Exam: "JEE Mains", Domain: "optics",
		Questions: 75, Attempted: 60, Correct: 45, Wrong: 15,
		Total: 180, Difficulty: "Medium", Time: 170,
	}).Run(ctx))
	out.Reset()

	require.NoError(t, (&DashboardCmd{}).Run(ctx))
	s := out.String()
	assert.Contains(t, s, "Sets logged:   1")
	assert.Contains(t, s, "Maths")
	assert.Contains(t, s, "Tasks:       2")
	assert.Contains(t, s, "Overdue:     1")
	assert.Contains(t, s, "2026-03-01 !")
	assert.Contains(t, s, "Optics revision")
	assert.Contains(t, s, "Tests taken:   1")
	assert.Contains(t, s, "60.00%")
}
