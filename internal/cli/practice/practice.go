package practice

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/studylog/internal/analytics"
	"github.com/julianstephens/studylog/internal/cli"
	"github.com/julianstephens/studylog/internal/models"
)

type PracticeAddCmd struct {
	Chapter  string `arg:"" help:"Chapter the problem set belongs to."`
	Subject  string `short:"s" help:"Subject." enum:"Physics,Chemistry,Maths,Biology,Others" default:"Physics"`
	Set      string `short:"n" help:"Problem set number, e.g. DPP-07." required:""`
	Date     string `short:"d" help:"Date attempted (YYYY-MM-DD). Defaults to today."`
	Score    int    `help:"Score out of 100." required:""`
	Accuracy int    `short:"a" help:"Accuracy percentage." required:""`
	Time     int    `short:"t" help:"Time taken in minutes." required:""`
	Notes    string `help:"Free-form notes."`
}

func (c *PracticeAddCmd) Run(ctx *cli.Context) error {
	date := c.Date
	if date == "" {
		date = ctx.Today()
	}
	l := models.PracticeLog{
		Date:         date,
		Subject:      c.Subject,
		Chapter:      c.Chapter,
		ProblemSet:   c.Set,
		Score:        c.Score,
		Accuracy:     c.Accuracy,
		TimeTakenMin: c.Time,
		Notes:        c.Notes,
	}
	id, err := ctx.Practice.Insert(l)
	if err != nil {
		return ctx.Rejected(err)
	}
	ctx.Success("Logged %s %s (ID: %d)", c.Chapter, c.Set, id)
	return nil
}

type PracticeEditCmd struct {
	ID       int64   `arg:"" help:"Practice log ID."`
	Subject  *string `short:"s" help:"Subject."`
	Chapter  *string `help:"Chapter."`
	Set      *string `short:"n" help:"Problem set number."`
	Date     *string `short:"d" help:"Date attempted (YYYY-MM-DD)."`
	Score    *int    `help:"Score out of 100."`
	Accuracy *int    `short:"a" help:"Accuracy percentage."`
	Time     *int    `short:"t" help:"Time taken in minutes."`
	Notes    *string `help:"Free-form notes."`
}

func (c *PracticeEditCmd) Run(ctx *cli.Context) error {
	l, err := ctx.Practice.Get(c.ID)
	if err != nil {
		return err
	}
	set(&l.Subject, c.Subject)
	set(&l.Chapter, c.Chapter)
	set(&l.ProblemSet, c.Set)
	set(&l.Date, c.Date)
	set(&l.Score, c.Score)
	set(&l.Accuracy, c.Accuracy)
	set(&l.TimeTakenMin, c.Time)
	set(&l.Notes, c.Notes)

	if err := ctx.Practice.Update(c.ID, l); err != nil {
		return ctx.Rejected(err)
	}
	ctx.Success("Updated practice log %d", c.ID)
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

type PracticeDeleteCmd struct {
	ID  int64 `arg:"" help:"Practice log ID."`
	Yes bool  `short:"y" help:"Skip the confirmation prompt."`
}

func (c *PracticeDeleteCmd) Run(ctx *cli.Context) error {
	l, err := ctx.Practice.Get(c.ID)
	if err != nil {
		return fmt.Errorf("failed to find practice log with ID %d: %w", c.ID, err)
	}
	ok, err := ctx.Confirmed(c.Yes, "Delete practice log?", fmt.Sprintf("%s %s on %s", l.Chapter, l.ProblemSet, l.Date))
	if err != nil || !ok {
		return err
	}
	if err := ctx.Practice.Delete(c.ID); err != nil {
		return fmt.Errorf("failed to delete practice log: %w", err)
	}
	ctx.Success("Deleted practice log %d", c.ID)
	return nil
}

type PracticeListCmd struct {
	Subject string `short:"s" help:"Only this subject."`
	From    string `help:"Earliest date (YYYY-MM-DD)."`
	To      string `help:"Latest date (YYYY-MM-DD)."`
	Search  string `short:"q" help:"Case-insensitive text search over chapter, set and notes."`
	Limit   int    `short:"l" help:"Show at most this many rows (0 for all)." default:"0"`
}

func (c *PracticeListCmd) Run(ctx *cli.Context) error {
	logs, err := ctx.Practice.LoadAll(models.PracticeFilter{Subject: c.Subject})
	if err != nil {
		return err
	}
	logs = analytics.FilterPracticeLogs(logs, analytics.PracticeQuery{From: c.From, To: c.To, Search: c.Search})
	if len(logs) == 0 {
		ctx.Println("No practice logs found")
		return nil
	}
	if c.Limit > 0 && len(logs) > c.Limit {
		logs = logs[:c.Limit]
	}

	rows := make([][]string, len(logs))
	for i, l := range logs {
		rows[i] = []string{
			strconv.FormatInt(l.ID, 10), l.Date, l.Subject, l.Chapter, l.ProblemSet,
			strconv.Itoa(l.Score), strconv.Itoa(l.Accuracy) + "%", strconv.Itoa(l.TimeTakenMin) + "m", l.Notes,
		}
	}
	ctx.Println(cli.Table([]string{"ID", "Date", "Subject", "Chapter", "Set", "Score", "Accuracy", "Time", "Notes"}, rows))
	return nil
}

type PracticeStatsCmd struct {
	Subject string `short:"s" help:"Only this subject."`
}

func (c *PracticeStatsCmd) Run(ctx *cli.Context) error {
	logs, err := ctx.Practice.LoadAll(models.PracticeFilter{Subject: c.Subject})
	if err != nil {
		return err
	}
	if len(logs) == 0 {
		ctx.Println("No practice logs yet")
		return nil
	}
	PrintStats(ctx, logs)
	return nil
}

// PrintStats renders the practice summary, the per-subject breakdown and the
// day-by-day trend.
func PrintStats(ctx *cli.Context, logs []models.PracticeLog) {
	s := analytics.SummarizePractice(logs)
	ctx.Title("Practice")
	ctx.Printf("  Sets logged:   %d\n", s.Count)
	ctx.Printf("  Avg score:     %s\n", cli.Num(s.AvgScore))
	ctx.Printf("  Avg accuracy:  %s\n", cli.Percent(s.AvgAccuracy))
	ctx.Printf("  Avg time:      %s min (%d min total)\n", cli.Num(s.AvgTimeMin), s.TotalTimeMin)

	groups := analytics.PracticeBySubject(logs)
	rows := make([][]string, len(groups))
	for i, g := range groups {
		rows[i] = []string{g.Key, strconv.Itoa(g.Count), cli.Num(g.Mean), cli.Percent(g.SecondaryMean), cli.Bar(g.SecondaryMean, 100, 20)}
	}
	ctx.Println(cli.Table([]string{"Subject", "Sets", "Avg score", "Avg accuracy", ""}, rows))

	trend := analytics.PracticeTrend(logs)
	if len(trend) == 0 {
		return
	}
	rows = make([][]string, len(trend))
	for i, g := range trend {
		rows[i] = []string{g.Key, strconv.Itoa(g.Count), cli.Num(g.Mean), cli.Percent(g.SecondaryMean), cli.Bar(g.SecondaryMean, 100, 20)}
	}
	ctx.Println("  Trend")
	ctx.Println(cli.Table([]string{"Date", "Sets", "Avg score", "Avg accuracy", ""}, rows))
}
