package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/studylog/internal/errors"
	"github.com/julianstephens/studylog/internal/models"
)

var fixedNow = time.Date(2026, 3, 10, 9, 30, 0, 0, time.Local)

func newTestContext(t *testing.T, opts ...Option) *Context {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	sc, err := Open(filepath.Join(t.TempDir(), "studylog.db"), opts...)
	require.NoError(t, err)
	require.NoError(t, sc.EnsureSchema())
	t.Cleanup(func() { sc.Close() })
	return sc
}

func TestOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "studylog.db")
	sc, err := Open(path)
	require.NoError(t, err)
	defer sc.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
	assert.Equal(t, BackendSQLite, sc.Backend())
	assert.Equal(t, path, sc.Path())
	assert.NoError(t, sc.Ping())
}

func TestOpenUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	sc, err := Open(filepath.Join(blocker, "studylog.db"))
	assert.Nil(t, sc)
	assert.ErrorIs(t, err, errors.ErrStorageUnavailable)
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	sc := newTestContext(t)
	require.NoError(t, sc.EnsureSchema())
	require.NoError(t, sc.EnsureSchema())

	for _, table := range []string{"dpp_log", "study_tasks", "mock_test_results"} {
		ok, err := sc.TableExists(table)
		require.NoError(t, err)
		assert.True(t, ok, table)
	}

	st, err := sc.SchemaStatus()
	require.NoError(t, err)
	assert.True(t, st.UpToDate())
}

func TestLoadAllBeforeSchemaIsEmpty(t *testing.T) {
	sc, err := Open(filepath.Join(t.TempDir(), "fresh.db"))
	require.NoError(t, err)
	defer sc.Close()

	logs, err := NewPracticeRepository(sc).LoadAll(models.PracticeFilter{})
	require.NoError(t, err)
	assert.Empty(t, logs)
	assert.NotNil(t, logs)

	tasks, err := NewPlannerRepository(sc).LoadAll(models.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)

	mocks, err := NewMockTestRepository(sc, DefaultOwner()).LoadAll(models.MockFilter{})
	require.NoError(t, err)
	assert.Empty(t, mocks)
}

func TestToday(t *testing.T) {
	sc := newTestContext(t)
	assert.Equal(t, "2026-03-10", sc.Today())
}
