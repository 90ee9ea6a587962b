package main

import (
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/studylog/internal/cli"
	"github.com/julianstephens/studylog/internal/cli/backups"
	"github.com/julianstephens/studylog/internal/cli/dashboard"
	"github.com/julianstephens/studylog/internal/cli/exports"
	"github.com/julianstephens/studylog/internal/cli/mocktests"
	"github.com/julianstephens/studylog/internal/cli/planner"
	"github.com/julianstephens/studylog/internal/cli/practice"
	"github.com/julianstephens/studylog/internal/cli/system"
	"github.com/julianstephens/studylog/internal/config"
	"github.com/julianstephens/studylog/internal/constants"
	"github.com/julianstephens/studylog/internal/errors"
	"github.com/julianstephens/studylog/internal/keyring"
	"github.com/julianstephens/studylog/internal/logger"
	"github.com/julianstephens/studylog/internal/storage"
	"github.com/julianstephens/studylog/internal/utils"
)

var CLI struct {
	Version   kong.VersionFlag
	ConfigDir string `help:"Directory holding config.yaml, logs and the default database." type:"path" default:"${config_dir}"`
	DB        string `help:"SQLite file, PostgreSQL URL without a password, or \"keyring\". Overrides the config file."`
	Debug     bool   `help:"Log debug output to stderr."`

	Dashboard dashboard.DashboardCmd `cmd:"" help:"Show practice, planner and mock test summaries." default:"1"`
	Init      system.InitCmd         `cmd:"" help:"Write a config file and initialize storage."`
	Doctor    system.DoctorCmd       `cmd:"" help:"Run health checks and diagnostics."`
	Clear     system.ClearCmd        `cmd:"" help:"Delete every row of one table."`
	Tui       system.TuiCmd          `cmd:"" help:"Browse practice, planner and mock tests interactively."`

	Practice struct {
		Add    practice.PracticeAddCmd    `cmd:"" help:"Log a practice set."`
		Edit   practice.PracticeEditCmd   `cmd:"" help:"Edit a practice log."`
		Delete practice.PracticeDeleteCmd `cmd:"" help:"Delete a practice log."`
		List   practice.PracticeListCmd   `cmd:"" help:"List practice logs." default:"1"`
		Stats  practice.PracticeStatsCmd  `cmd:"" help:"Summarize practice logs."`
	} `cmd:"" help:"Daily practice problem logs."`
	Task struct {
		Add      planner.TaskAddCmd      `cmd:"" help:"Add a study task."`
		Edit     planner.TaskEditCmd     `cmd:"" help:"Edit a study task."`
		Status   planner.TaskStatusCmd   `cmd:"" help:"Change a task's status."`
		Delete   planner.TaskDeleteCmd   `cmd:"" help:"Delete a study task."`
		List     planner.TaskListCmd     `cmd:"" help:"List study tasks." default:"1"`
		Upcoming planner.TaskUpcomingCmd `cmd:"" help:"Tasks due soon."`
		Overdue  planner.TaskOverdueCmd  `cmd:"" help:"Tasks past their due date."`
	} `cmd:"" help:"Study planner tasks."`
	Mock struct {
		Add     mocktests.MockAddCmd     `cmd:"" help:"Record a mock test result."`
		Set     mocktests.MockSetCmd     `cmd:"" help:"Change one field of a mock test result."`
		Delete  mocktests.MockDeleteCmd  `cmd:"" help:"Delete a mock test result."`
		List    mocktests.MockListCmd    `cmd:"" help:"List mock test results." default:"1"`
		Stats   mocktests.MockStatsCmd   `cmd:"" help:"Mock test performance breakdown."`
		Predict mocktests.MockPredictCmd `cmd:"" help:"Predict scores for the next test."`
		Import  mocktests.MockImportCmd  `cmd:"" help:"Apply an edited CSV sheet of mock test results."`
		Domains mocktests.MockDomainsCmd `cmd:"" help:"List the knowledge domain catalog."`
	} `cmd:"" help:"Mock test results."`
	Export struct {
		Practice exports.ExportPracticeCmd `cmd:"" help:"Export practice logs as CSV."`
		Tasks    exports.ExportTasksCmd    `cmd:"" help:"Export study tasks as CSV."`
		Mock     exports.ExportMockCmd     `cmd:"" help:"Export mock test results as CSV."`
	} `cmd:"" help:"Export data as CSV."`
	Backup struct {
		Create  backups.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    backups.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore backups.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage SQLite database backups."`
	Keyring struct {
		Set    system.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Delete system.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status system.KeyringStatusCmd `cmd:"" help:"Check the OS keyring." default:"1"`
	} `cmd:"" help:"Manage database credentials in the OS keyring."`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Study tracker for practice sets, planner tasks and mock tests"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":    "v0.1.0",
			"config_dir": constants.DefaultConfigDir,
		},
	)
	os.Exit(errors.Report(run(kctx)))
}

func run(kctx *kong.Context) error {
	cfg, err := config.Load(CLI.ConfigDir)
	if err != nil {
		return err
	}
	if CLI.DB != "" {
		if cfg.DB, err = utils.ExpandPath(CLI.DB); err != nil {
			return err
		}
	}
	cfg.Debug = cfg.Debug || CLI.Debug

	if err := logger.Init(logger.Config{Debug: cfg.Debug, ConfigDir: CLI.ConfigDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	open, err := opener(cfg)
	if err != nil {
		return err
	}
	sc, err := open()
	if err != nil {
		return err
	}
	if err := sc.EnsureSchema(); err != nil {
		sc.Close()
		return err
	}

	ctx := cli.NewContext(cfg, CLI.ConfigDir, sc)
	ctx.Open = open
	// Restores swap the store, so close whichever one is attached at exit.
	defer func() { ctx.Store.Close() }()
	return kctx.Run(ctx)
}

// opener resolves the configured database once and returns a function that
// connects to it, so commands can reconnect after replacing the file.
func opener(cfg *config.Config) (func() (*storage.Context, error), error) {
	dsn, err := keyring.Default.ResolveDSN(cfg.DB)
	if err != nil {
		return nil, err
	}
	loc, err := utils.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	opts := []storage.Option{
		storage.WithCacheTTL(cfg.CacheTTL),
		storage.WithClock(func() time.Time { return time.Now().In(loc) }),
	}
	if cfg.DB == keyring.Sentinel {
		opts = append(opts, storage.WithEmbeddedCredentials())
	}
	return func() (*storage.Context, error) {
		return storage.Open(dsn, opts...)
	}, nil
}
