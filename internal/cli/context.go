package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/studylog/internal/backup"
	"github.com/julianstephens/studylog/internal/config"
	"github.com/julianstephens/studylog/internal/logger"
	"github.com/julianstephens/studylog/internal/storage"
)

// Context is handed to every command's Run method.
type Context struct {
	Config    *config.Config
	ConfigDir string
	Store     *storage.Context

	Practice *storage.PracticeRepository
	Planner  *storage.PlannerRepository
	Mocks    *storage.MockTestRepository

	// Open reconnects to the configured database. Commands that replace the
	// database file use it through Reopen.
	Open func() (*storage.Context, error)

	Out io.Writer
	// Confirm asks a yes/no question before destructive actions.
	Confirm func(title, description string) (bool, error)
}

// NewContext builds the repositories on an open store.
func NewContext(cfg *config.Config, configDir string, sc *storage.Context) *Context {
	ctx := &Context{
		Config:    cfg,
		ConfigDir: configDir,
		Out:       os.Stdout,
		Confirm:   confirm,
	}
	ctx.Attach(sc)
	return ctx
}

// Attach swaps the store, e.g. after a restore replaced the database file.
func (c *Context) Attach(sc *storage.Context) {
	c.Store = sc
	c.Practice = storage.NewPracticeRepository(sc)
	c.Planner = storage.NewPlannerRepository(sc)
	c.Mocks = storage.NewMockTestRepository(sc, storage.Owner{
		UserID:          c.Config.UserID,
		NeuralSignature: c.Config.NeuralSignature,
	})
}

// Reopen attaches a fresh connection from Open and applies pending
// migrations. The old store must already be closed.
func (c *Context) Reopen() error {
	if c.Open == nil {
		return fmt.Errorf("no way to reopen the database")
	}
	sc, err := c.Open()
	if err != nil {
		return err
	}
	if err := sc.EnsureSchema(); err != nil {
		sc.Close()
		return err
	}
	c.Attach(sc)
	return nil
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// Today is the current date in the configured time zone.
func (c *Context) Today() string {
	return c.Store.Today()
}

// Backups returns a backup manager for the SQLite file, or nil on PostgreSQL.
func (c *Context) Backups() *backup.Manager {
	if c.Store.Backend() != storage.BackendSQLite {
		return nil
	}
	return backup.NewManager(c.Store.Path())
}

// PerformAutomaticBackup snapshots the database before destructive commands.
// Failures are logged and never interrupt the command.
func (c *Context) PerformAutomaticBackup() {
	mgr := c.Backups()
	if mgr == nil {
		return
	}
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

func confirm(title, description string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(huh.ThemeBase()).Run()
	if err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	return ok, nil
}

// AlwaysConfirm skips the prompt, for --yes flags and tests.
func AlwaysConfirm(string, string) (bool, error) { return true, nil }

// Confirmed asks before a destructive action unless skip is set, and prints
// a note when the user declines.
func (c *Context) Confirmed(skip bool, title, description string) (bool, error) {
	if skip {
		return true, nil
	}
	ok, err := c.Confirm(title, description)
	if err != nil {
		return false, err
	}
	if !ok {
		c.Println("Cancelled.")
	}
	return ok, nil
}
