package dashboard

import (
	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/studylog/internal/analytics"
	"github.com/julianstephens/studylog/internal/cli"
	"github.com/julianstephens/studylog/internal/cli/mocktests"
	"github.com/julianstephens/studylog/internal/cli/planner"
	"github.com/julianstephens/studylog/internal/cli/practice"
	"github.com/julianstephens/studylog/internal/models"
)

// DashboardCmd prints practice, planner and mock test summaries together.
type DashboardCmd struct{}

func (c *DashboardCmd) Run(ctx *cli.Context) error {
	var (
		logs  []models.PracticeLog
		tasks []models.PlannerTask
		mocks []models.MockTestResult
	)
	var g errgroup.Group
	g.Go(func() (err error) {
		logs, err = ctx.Practice.LoadAll(models.PracticeFilter{})
		return err
	})
	g.Go(func() (err error) {
		tasks, err = ctx.Planner.LoadAll(models.TaskFilter{})
		return err
	})
	g.Go(func() (err error) {
		mocks, err = ctx.Mocks.LoadAll(models.MockFilter{UserID: ctx.Mocks.Owner().UserID})
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	ctx.Printf("%s\n", cli.TitleStyle.Render("Study dashboard · "+ctx.Today()))

	if len(logs) > 0 {
		practice.PrintStats(ctx, logs)
	} else {
		ctx.Title("Practice")
		ctx.Println(cli.MutedStyle.Render("  No practice logs yet"))
	}

	planner.PrintSummary(ctx, tasks)
	today := ctx.Today()
	if overdue := analytics.Overdue(tasks, today); len(overdue) > 0 {
		ctx.Title("Overdue")
		planner.PrintTasks(ctx, overdue, "")
	}
	ctx.Title("Upcoming")
	planner.PrintTasks(ctx, analytics.Upcoming(tasks, today, ctx.Config.UpcomingDays), "  Nothing due")

	if len(mocks) > 0 {
		mocktests.PrintStats(ctx, analytics.ScoreMockTests(mocks))
	} else {
		ctx.Title("Mock tests")
		ctx.Println(cli.MutedStyle.Render("  No mock tests yet"))
	}
	return nil
}
