package planner

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/studylog/internal/analytics"
	"github.com/julianstephens/studylog/internal/cli"
	"github.com/julianstephens/studylog/internal/models"
)

type TaskAddCmd struct {
	Topic    string `arg:"" help:"What to study."`
	Subject  string `short:"s" help:"Subject." enum:"Physics,Chemistry,Maths,Biology,Others" default:"Physics"`
	Due      string `short:"d" help:"Due date (YYYY-MM-DD). Defaults to today."`
	Priority string `short:"p" help:"Priority." enum:"High,Medium,Low" default:"Medium"`
	Notes    string `help:"Free-form notes."`
}

func (c *TaskAddCmd) Run(ctx *cli.Context) error {
	due := c.Due
	if due == "" {
		due = ctx.Today()
	}
	id, err := ctx.Planner.Insert(models.PlannerTask{
		Subject:  c.Subject,
		Topic:    c.Topic,
		DueDate:  due,
		Priority: models.Priority(c.Priority),
		Status:   models.StatusPending,
		Notes:    c.Notes,
	})
	if err != nil {
		return ctx.Rejected(err)
	}
	ctx.Success("Added task: %s due %s (ID: %d)", c.Topic, due, id)
	return nil
}

type TaskEditCmd struct {
	ID       int64   `arg:"" help:"Task ID."`
	Subject  *string `short:"s" help:"Subject."`
	Topic    *string `help:"Topic."`
	Due      *string `short:"d" help:"Due date (YYYY-MM-DD). Past dates are allowed when editing."`
	Priority *string `short:"p" help:"Priority (High, Medium, Low)."`
	Status   *string `help:"Status (Pending, In Progress, Completed, Deferred)."`
	Notes    *string `help:"Free-form notes."`
}

func (c *TaskEditCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Planner.Get(c.ID)
	if err != nil {
		return err
	}
	if c.Subject != nil {
		t.Subject = *c.Subject
	}
	if c.Topic != nil {
		t.Topic = *c.Topic
	}
	if c.Due != nil {
		t.DueDate = *c.Due
	}
	if c.Priority != nil {
		t.Priority = models.Priority(*c.Priority)
	}
	if c.Status != nil {
		t.Status = models.TaskStatus(*c.Status)
	}
	if c.Notes != nil {
		t.Notes = *c.Notes
	}
	if err := ctx.Planner.Update(c.ID, t); err != nil {
		return ctx.Rejected(err)
	}
	ctx.Success("Updated task %d", c.ID)
	return nil
}

type TaskStatusCmd struct {
	ID     int64  `arg:"" help:"Task ID."`
	Status string `arg:"" help:"New status." enum:"Pending,In Progress,Completed,Deferred"`
}

func (c *TaskStatusCmd) Run(ctx *cli.Context) error {
	if err := ctx.Planner.SetStatus(c.ID, models.TaskStatus(c.Status)); err != nil {
		return ctx.Rejected(err)
	}
	ctx.Success("Task %d is now %s", c.ID, c.Status)
	return nil
}

type TaskDeleteCmd struct {
	ID  int64 `arg:"" help:"Task ID."`
	Yes bool  `short:"y" help:"Skip the confirmation prompt."`
}

func (c *TaskDeleteCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Planner.Get(c.ID)
	if err != nil {
		return fmt.Errorf("failed to find task with ID %d: %w", c.ID, err)
	}
	ok, err := ctx.Confirmed(c.Yes, "Delete task?", fmt.Sprintf("%s (%s) due %s", t.Topic, t.Subject, t.DueDate))
	if err != nil || !ok {
		return err
	}
	if err := ctx.Planner.Delete(c.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	ctx.Success("Deleted task: %s (ID: %d)", t.Topic, c.ID)
	return nil
}

type TaskListCmd struct {
	Subject string `short:"s" help:"Only this subject."`
	Status  string `help:"Only this status."`
	From    string `help:"Earliest due date (YYYY-MM-DD)."`
	To      string `help:"Latest due date (YYYY-MM-DD)."`
	Search  string `short:"q" help:"Case-insensitive text search over topic and notes."`
}

func (c *TaskListCmd) Run(ctx *cli.Context) error {
	tasks, err := ctx.Planner.LoadAll(models.TaskFilter{Subject: c.Subject, Status: models.TaskStatus(c.Status)})
	if err != nil {
		return err
	}
	tasks = analytics.FilterTasks(tasks, analytics.TaskQuery{From: c.From, To: c.To, Search: c.Search})
	PrintTasks(ctx, tasks, "No tasks found")
	return nil
}

type TaskUpcomingCmd struct {
	Days int `short:"n" help:"Look-ahead window in days. Defaults to the configured upcoming_days." default:"-1"`
}

func (c *TaskUpcomingCmd) Run(ctx *cli.Context) error {
	days := c.Days
	if days < 0 {
		days = ctx.Config.UpcomingDays
	}
	tasks, err := ctx.Planner.LoadAll(models.TaskFilter{})
	if err != nil {
		return err
	}
	ctx.Title(fmt.Sprintf("Due in the next %d days", days))
	PrintTasks(ctx, analytics.Upcoming(tasks, ctx.Today(), days), "Nothing due")
	return nil
}

type TaskOverdueCmd struct{}

func (c *TaskOverdueCmd) Run(ctx *cli.Context) error {
	tasks, err := ctx.Planner.LoadAll(models.TaskFilter{})
	if err != nil {
		return err
	}
	ctx.Title("Overdue")
	PrintTasks(ctx, analytics.Overdue(tasks, ctx.Today()), "Nothing overdue")
	return nil
}

// PrintTasks renders tasks as a table, flagging overdue rows.
func PrintTasks(ctx *cli.Context, tasks []models.PlannerTask, empty string) {
	if len(tasks) == 0 {
		ctx.Println(empty)
		return
	}
	today := ctx.Today()
	rows := make([][]string, len(tasks))
	for i, t := range tasks {
		due := t.DueDate
		if analytics.IsOverdue(t, today) {
			due = cli.DangerStyle.Render(due + " !")
		}
		rows[i] = []string{strconv.FormatInt(t.ID, 10), due, string(t.Priority), string(t.Status), t.Subject, t.Topic, t.Notes}
	}
	ctx.Println(cli.Table([]string{"ID", "Due", "Priority", "Status", "Subject", "Topic", "Notes"}, rows))
}

// PrintSummary renders status counts and per-subject task counts.
func PrintSummary(ctx *cli.Context, tasks []models.PlannerTask) {
	s := analytics.SummarizePlanner(tasks, ctx.Today(), ctx.Config.UpcomingDays)
	ctx.Title("Planner")
	ctx.Printf("  Tasks:       %d (%s complete)\n", s.Total, cli.Percent(s.CompletionRate()))
	for _, st := range models.TaskStatuses {
		ctx.Printf("  %-12s %d\n", string(st)+":", s.ByStatus[st])
	}
	ctx.Printf("  Overdue:     %d\n", s.Overdue)
	ctx.Printf("  Upcoming:    %d (next %d days)\n", s.Upcoming, ctx.Config.UpcomingDays)

	groups := analytics.TasksBySubject(tasks)
	if len(groups) == 0 {
		return
	}
	rows := make([][]string, len(groups))
	for i, g := range groups {
		rows[i] = []string{g.Key, strconv.Itoa(g.Count), cli.Percent(g.Mean)}
	}
	ctx.Println(cli.Table([]string{"Subject", "Tasks", "Completed"}, rows))
}
