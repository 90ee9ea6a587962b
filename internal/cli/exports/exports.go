package exports

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/julianstephens/studylog/internal/cli"
	"github.com/julianstephens/studylog/internal/export"
	"github.com/julianstephens/studylog/internal/models"
)

// Target is shared by every export command.
type Target struct {
	Dir    string `short:"o" help:"Directory to write the CSV file to." default:"." type:"path"`
	Stdout bool   `help:"Write to standard output instead of a file."`
}

func (t Target) write(ctx *cli.Context, prefix string, fn func(io.Writer) error) error {
	if t.Stdout {
		return fn(ctx.Out)
	}
	if err := os.MkdirAll(t.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(t.Dir, export.Filename(prefix, ctx.Today()))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	ctx.Success("Exported to %s", path)
	return nil
}

type ExportPracticeCmd struct {
	Target `embed:""`
}

func (c *ExportPracticeCmd) Run(ctx *cli.Context) error {
	logs, err := ctx.Practice.LoadAll(models.PracticeFilter{})
	if err != nil {
		return err
	}
	return c.write(ctx, "dpp_logs", func(w io.Writer) error { return export.WritePracticeLogs(w, logs) })
}

type ExportTasksCmd struct {
	Target `embed:""`
}

func (c *ExportTasksCmd) Run(ctx *cli.Context) error {
	tasks, err := ctx.Planner.LoadAll(models.TaskFilter{})
	if err != nil {
		return err
	}
	return c.write(ctx, "study_tasks", func(w io.Writer) error { return export.WritePlannerTasks(w, tasks) })
}

type ExportMockCmd struct {
	Target `embed:""`
}

func (c *ExportMockCmd) Run(ctx *cli.Context) error {
	results, err := ctx.Mocks.LoadAll(models.MockFilter{UserID: ctx.Mocks.Owner().UserID})
	if err != nil {
		return err
	}
	return c.write(ctx, "mock_tests", func(w io.Writer) error { return export.WriteMockTests(w, results) })
}
