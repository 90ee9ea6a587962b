package system

import (
	"fmt"
	"time"

	"github.com/julianstephens/studylog/internal/cli"
	"github.com/julianstephens/studylog/internal/constants"
	"github.com/julianstephens/studylog/internal/models"
	"github.com/julianstephens/studylog/internal/utils"
	"github.com/julianstephens/studylog/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name string
	run  func(*cli.Context) error
	// warnOnly checks never fail the command.
	warnOnly bool
	needsDB  bool
}

var checks = []check{
	{name: "Database reachable", run: checkDBReachable},
	{name: "Schema version", run: checkSchemaVersion, needsDB: true},
	{name: "Tables present", run: checkTables, needsDB: true},
	{name: "Backups present", run: checkBackupsPresent, warnOnly: true},
	{name: "Data validation", run: checkValidation, needsDB: true},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "Single instance", run: checkSingleInstance, warnOnly: true},
}

var otherInstancesFunc = utils.OtherInstances

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	failed := 0
	dbReachable := true
	for i, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n   %v\n", c.name, err)
		default:
			ctx.Printf("❌ %s: FAIL\n   Error: %v\n", c.name, err)
			failed++
			if i == 0 {
				dbReachable = false
			}
		}
	}

	ctx.Println()
	if failed > 0 {
		return fmt.Errorf("%d diagnostic check(s) failed", failed)
	}
	ctx.Println("All checks passed.")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	return ctx.Store.Ping()
}

func checkSchemaVersion(ctx *cli.Context) error {
	status, err := ctx.Store.SchemaStatus()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if !status.UpToDate() {
		return fmt.Errorf("schema is at version %d, latest is %d (%d pending)", status.Current, status.Latest, len(status.Pending))
	}
	return nil
}

func checkTables(ctx *cli.Context) error {
	for _, table := range []string{constants.TablePracticeLogs, constants.TablePlannerTasks, constants.TableMockTests} {
		ok, err := ctx.Store.TableExists(table)
		if err != nil {
			return fmt.Errorf("failed to look up table %s: %w", table, err)
		}
		if !ok {
			return fmt.Errorf("table %s is missing", table)
		}
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	mgr := ctx.Backups()
	if mgr == nil {
		return fmt.Errorf("file backups are not managed for PostgreSQL; use pg_dump")
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s", mgr.Dir())
	}
	if age := time.Since(backups[0].Timestamp); age > 7*24*time.Hour {
		return fmt.Errorf("most recent backup is %d days old", int(age.Hours()/24))
	}
	return nil
}

// checkValidation re-validates every stored row. Past due dates are fine for
// tasks that already exist.
func checkValidation(ctx *cli.Context) error {
	logs, err := ctx.Practice.LoadAll(models.PracticeFilter{})
	if err != nil {
		return err
	}
	for _, l := range logs {
		if err := validation.PracticeLog(l); err != nil {
			return fmt.Errorf("practice log %d: %w", l.ID, err)
		}
	}

	tasks, err := ctx.Planner.LoadAll(models.TaskFilter{})
	if err != nil {
		return err
	}
	today := ctx.Today()
	for _, t := range tasks {
		if err := validation.PlannerTask(t, today, false); err != nil {
			return fmt.Errorf("task %d: %w", t.ID, err)
		}
	}

	mocks, err := ctx.Mocks.LoadAll(models.MockFilter{})
	if err != nil {
		return err
	}
	for _, m := range mocks {
		if err := validation.MockTestResult(m); err != nil {
			return fmt.Errorf("mock test %s: %w", m.ID, err)
		}
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	if _, err := utils.LoadLocation(ctx.Config.Timezone); err != nil {
		return err
	}
	now := time.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	return nil
}

func checkSingleInstance(ctx *cli.Context) error {
	pids, err := otherInstancesFunc()
	if err != nil {
		return fmt.Errorf("failed to list processes: %w", err)
	}
	if len(pids) > 0 {
		return fmt.Errorf("%d other studylog process(es) running (PID %d)", len(pids), pids[0])
	}
	return nil
}
