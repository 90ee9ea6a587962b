package backups

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/studylog/internal/backup"
	"github.com/julianstephens/studylog/internal/cli"
	"github.com/julianstephens/studylog/internal/logger"
	"github.com/julianstephens/studylog/internal/utils"
)

var errNotSQLite = errors.New("backups are only available for the SQLite store; use pg_dump for PostgreSQL")

var otherInstancesFunc = utils.OtherInstances

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr := ctx.Backups()
	if mgr == nil {
		return errNotSQLite
	}
	path, err := mgr.CreateBackup()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	ctx.Success("Backup created: %s", filepath.Base(path))
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr := ctx.Backups()
	if mgr == nil {
		return errNotSQLite
	}
	backups, err := mgr.ListBackups()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		ctx.Println("No backups found.")
		ctx.Printf("Backups are stored in: %s\n", mgr.Dir())
		return nil
	}

	rows := make([][]string, len(backups))
	for i, b := range backups {
		rows[i] = []string{b.Timestamp.Format("2006-01-02 15:04:05"), b.Name(), fmt.Sprintf("%.1f KB", float64(b.Size)/1024)}
	}
	ctx.Printf("Available backups (%d total, keeping most recent %d):\n", len(backups), backup.MaxBackups)
	ctx.Println(cli.Table([]string{"Created", "File", "Size"}, rows))
	ctx.Printf("Backup directory: %s\n", mgr.Dir())
	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" help:"Path or file name of the backup to restore."`
	Yes        bool   `short:"y" help:"Skip the confirmation prompt."`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr := ctx.Backups()
	if mgr == nil {
		return errNotSQLite
	}

	path := c.BackupFile
	if _, err := os.Stat(path); err != nil {
		path = mgr.Resolve(c.BackupFile)
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("backup file not found: tried %s and %s", c.BackupFile, mgr.Dir())
		}
	}

	// The file must not be replaced while another process holds it open.
	pids, err := otherInstancesFunc()
	if err != nil {
		logger.Warn("Could not check for other studylog processes", "error", err)
	} else if len(pids) > 0 {
		return fmt.Errorf("another studylog process is running (PID %d); close it before restoring", pids[0])
	}

	ok, err := ctx.Confirmed(c.Yes, "Replace the current database with this backup?",
		fmt.Sprintf("Restore from %s. The current database is backed up before restoring.", path))
	if err != nil || !ok {
		return err
	}

	if err := ctx.Store.Close(); err != nil {
		logger.Warn("Failed to close database connection", "error", err)
	}
	previous, restoreErr := mgr.RestoreBackup(path)
	if err := ctx.Reopen(); err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}
	if restoreErr != nil {
		return fmt.Errorf("restore failed: %w", restoreErr)
	}

	if previous != "" {
		ctx.Printf("Previous database saved as %s\n", filepath.Base(previous))
	}
	ctx.Success("Database restored from %s", filepath.Base(path))
	return nil
}
