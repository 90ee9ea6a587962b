package backups

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/studylog/internal/backup"
	"github.com/julianstephens/studylog/internal/cli"
	"github.com/julianstephens/studylog/internal/config"
	"github.com/julianstephens/studylog/internal/models"
	"github.com/julianstephens/studylog/internal/storage"
)

func setupTestContext(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default(dir)
	dbPath := filepath.Join(dir, "studylog.db")
	open := func() (*storage.Context, error) {
		return storage.Open(dbPath,
			storage.WithClock(func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local) }))
	}
	sc, err := open()
	require.NoError(t, err)
	require.NoError(t, sc.EnsureSchema())

	ctx := cli.NewContext(cfg, dir, sc)
	ctx.Open = open
	t.Cleanup(func() { ctx.Store.Close() })
	var out bytes.Buffer
	ctx.Out = &out
	ctx.Confirm = cli.AlwaysConfirm

	old := otherInstancesFunc
	otherInstancesFunc = func() ([]int, error) { return nil, nil }
	t.Cleanup(func() { otherInstancesFunc = old })
	return ctx, &out
}

func addLog(t *testing.T, ctx *cli.Context, set string) {
	t.Helper()
	_, err := ctx.Practice.Insert(models.PracticeLog{
		Date: "2026-03-10", Subject: "Physics", Chapter: "Optics", ProblemSet: set,
		Score: 60, Accuracy: 70, TimeTakenMin: 30,
	})
	require.NoError(t, err)
}

func TestBackupListEmpty(t *testing.T) {
	ctx, out := setupTestContext(t)

	require.NoError(t, (&BackupListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "No backups found.")
	assert.Contains(t, out.String(), filepath.Join(ctx.ConfigDir, backup.DirName))
}

func TestBackupCreateAndList(t *testing.T) {
	ctx, out := setupTestContext(t)
	addLog(t, ctx, "DPP-1")

	require.NoError(t, (&BackupCreateCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Backup created: "+backup.FilePrefix)

	out.Reset()
	require.NoError(t, (&BackupListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Available backups (1 total")
	assert.Contains(t, out.String(), backup.FileSuffix)
}

func TestBackupRestoreByName(t *testing.T) {
	ctx, out := setupTestContext(t)
	addLog(t, ctx, "DPP-1")

	path, err := ctx.Backups().CreateBackup()
	require.NoError(t, err)
	addLog(t, ctx, "DPP-2")

	require.NoError(t, (&BackupRestoreCmd{BackupFile: filepath.Base(path)}).Run(ctx))
	assert.Contains(t, out.String(), "Database restored from "+filepath.Base(path))
	assert.Contains(t, out.String(), "Previous database saved as")

	logs, err := ctx.Practice.LoadAll(models.PracticeFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "DPP-1", logs[0].ProblemSet)
}

func TestBackupRestoreMissingFile(t *testing.T) {
	ctx, _ := setupTestContext(t)

	err := (&BackupRestoreCmd{BackupFile: "nope.db"}).Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backup file not found")
}

func TestBackupRestoreCancelled(t *testing.T) {
	ctx, out := setupTestContext(t)
	addLog(t, ctx, "DPP-1")
	path, err := ctx.Backups().CreateBackup()
	require.NoError(t, err)
	addLog(t, ctx, "DPP-2")

	ctx.Confirm = func(string, string) (bool, error) { return false, nil }
	require.NoError(t, (&BackupRestoreCmd{BackupFile: path}).Run(ctx))
	assert.Contains(t, out.String(), "Cancelled.")

	logs, err := ctx.Practice.LoadAll(models.PracticeFilter{})
	require.NoError(t, err)
	assert.Len(t, logs, 2)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestBackupRestoreRefusedWhileAnotherInstanceRuns(t *testing.T) {
	ctx, _ := setupTestContext(t)
	addLog(t, ctx, "DPP-1")
	path, err := ctx.Backups().CreateBackup()
	require.NoError(t, err)
	addLog(t, ctx, "DPP-2")

	otherInstancesFunc = func() ([]int, error) { return []int{4242}, nil }

	err = (&BackupRestoreCmd{BackupFile: path, Yes: true}).Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PID 4242")

	logs, err := ctx.Practice.LoadAll(models.PracticeFilter{})
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}
