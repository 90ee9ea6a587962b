package system

import (
	"fmt"

	"github.com/julianstephens/studylog/internal/cli"
)

// ClearCmd deletes every row of one table.
type ClearCmd struct {
	Table string `arg:"" enum:"practice,tasks,mock" help:"What to clear (practice, tasks, mock)."`
	Yes   bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *ClearCmd) Run(ctx *cli.Context) error {
	var wipe func() error
	var what string
	switch c.Table {
	case "practice":
		wipe, what = ctx.Practice.Clear, "practice logs"
	case "tasks":
		wipe, what = ctx.Planner.Clear, "planner tasks"
	case "mock":
		wipe, what = ctx.Mocks.Clear, "mock test results"
	default:
		return fmt.Errorf("unknown table %q", c.Table)
	}

	ok, err := ctx.Confirmed(c.Yes, fmt.Sprintf("Delete all %s?", what), "A backup is taken first, but this cannot be undone from the CLI.")
	if err != nil || !ok {
		return err
	}

	ctx.PerformAutomaticBackup()
	if err := wipe(); err != nil {
		return err
	}
	ctx.Success("Cleared all %s", what)
	return nil
}
