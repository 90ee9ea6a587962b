package storage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/studylog/internal/errors"
	"github.com/julianstephens/studylog/internal/models"
)

func samplePracticeLog() models.PracticeLog {
	return models.PracticeLog{
		Date:         "2026-03-09",
		Subject:      "Physics",
		Chapter:      "Electrostatics",
		ProblemSet:   "DPP-07",
		Score:        72,
		Accuracy:     80,
		TimeTakenMin: 40,
		Notes:        "Gauss law slips",
	}
}

func countPractice(t *testing.T, sc *Context) int {
	t.Helper()
	var n int
	require.NoError(t, sc.DB().QueryRow(`SELECT COUNT(*) FROM dpp_log`).Scan(&n))
	return n
}

func TestPracticeInsertDuplicate(t *testing.T) {
	sc := newTestContext(t)
	repo := NewPracticeRepository(sc)

	id, err := repo.Insert(samplePracticeLog())
	require.NoError(t, err)
	assert.Positive(t, id)

	dup := samplePracticeLog()
	dup.Score = 90
	_, err = repo.Insert(dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrDuplicateEntry)
	assert.True(t, errors.IsDuplicate(err))

	var storageErr *errors.StorageError
	assert.NotErrorAs(t, err, &storageErr)
	assert.Equal(t, 1, countPractice(t, sc))
}

func TestPracticeInsertValidation(t *testing.T) {
	sc := newTestContext(t)
	repo := NewPracticeRepository(sc)

	bad := samplePracticeLog()
	bad.Chapter = ""
	bad.Score = 150
	_, err := repo.Insert(bad)

	ve, ok := errors.AsValidation(err)
	require.True(t, ok)
	assert.Len(t, ve.Problems, 2)
	assert.Equal(t, 0, countPractice(t, sc))
}

func TestPracticeOrdering(t *testing.T) {
	sc := newTestContext(t)
	repo := NewPracticeRepository(sc)

	for i, d := range []string{"2026-03-01", "2026-03-05", "2026-03-05", "2026-02-20"} {
		l := samplePracticeLog()
		l.Date = d
		l.ProblemSet = fmt.Sprintf("DPP-%02d", i)
		_, err := repo.Insert(l)
		require.NoError(t, err)
	}

	logs, err := repo.LoadAll(models.PracticeFilter{})
	require.NoError(t, err)
	require.Len(t, logs, 4)

	assert.Equal(t, "2026-03-05", logs[0].Date)
	assert.Equal(t, "2026-03-05", logs[1].Date)
	assert.Greater(t, logs[0].ID, logs[1].ID)
	assert.Equal(t, "2026-03-01", logs[2].Date)
	assert.Equal(t, "2026-02-20", logs[3].Date)
}

func TestPracticeFilterBySubject(t *testing.T) {
	sc := newTestContext(t)
	repo := NewPracticeRepository(sc)

	_, err := repo.Insert(samplePracticeLog())
	require.NoError(t, err)
	chem := samplePracticeLog()
	chem.Subject = "Chemistry"
	_, err = repo.Insert(chem)
	require.NoError(t, err)

	logs, err := repo.LoadAll(models.PracticeFilter{Subject: "Chemistry"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Chemistry", logs[0].Subject)
}

func TestPracticeUpdate(t *testing.T) {
	sc := newTestContext(t)
	repo := NewPracticeRepository(sc)

	id, err := repo.Insert(samplePracticeLog())
	require.NoError(t, err)

	other := samplePracticeLog()
	other.ProblemSet = "DPP-08"
	otherID, err := repo.Insert(other)
	require.NoError(t, err)

	t.Run("update own row keeps identity", func(t *testing.T) {
		l := samplePracticeLog()
		l.Score = 95
		require.NoError(t, repo.Update(id, l))

		got, err := repo.Get(id)
		require.NoError(t, err)
		assert.Equal(t, 95, got.Score)
	})

	t.Run("collision with another row", func(t *testing.T) {
		err := repo.Update(otherID, samplePracticeLog())
		assert.ErrorIs(t, err, errors.ErrDuplicateEntry)
	})

	t.Run("missing id", func(t *testing.T) {
		err := repo.Update(9999, samplePracticeLog())
		assert.ErrorIs(t, err, errors.ErrNotFound)
	})
}

func TestPracticeDeleteIdempotent(t *testing.T) {
	sc := newTestContext(t)
	repo := NewPracticeRepository(sc)

	id, err := repo.Insert(samplePracticeLog())
	require.NoError(t, err)

	require.NoError(t, repo.Delete(9999))
	assert.Equal(t, 1, countPractice(t, sc))

	require.NoError(t, repo.Delete(id))
	require.NoError(t, repo.Delete(id))
	assert.Equal(t, 0, countPractice(t, sc))

	_, err = repo.Get(id)
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestPracticeCacheInvalidatedOnInsert(t *testing.T) {
	sc := newTestContext(t)
	repo := NewPracticeRepository(sc)

	logs, err := repo.LoadAll(models.PracticeFilter{})
	require.NoError(t, err)
	require.Empty(t, logs)

	// A write that bypasses the repository is not seen until invalidation,
	// which shows the read above was cached.
	_, err = sc.DB().Exec(`INSERT INTO dpp_log ("Date", "Subject", "Chapter", "DPP_Number", "Score", "Accuracy", "Time_Taken")
		VALUES ('2026-03-01', 'Maths', 'Limits', 'DPP-01', 50, 60, 30)`)
	require.NoError(t, err)
	logs, err = repo.LoadAll(models.PracticeFilter{})
	require.NoError(t, err)
	assert.Empty(t, logs)

	_, err = repo.Insert(samplePracticeLog())
	require.NoError(t, err)

	logs, err = repo.LoadAll(models.PracticeFilter{})
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestPracticeLoadAllReturnsCopy(t *testing.T) {
	sc := newTestContext(t)
	repo := NewPracticeRepository(sc)
	_, err := repo.Insert(samplePracticeLog())
	require.NoError(t, err)

	logs, err := repo.LoadAll(models.PracticeFilter{})
	require.NoError(t, err)
	logs[0].Chapter = "mutated"

	again, err := repo.LoadAll(models.PracticeFilter{})
	require.NoError(t, err)
	assert.Equal(t, "Electrostatics", again[0].Chapter)
}

func TestPracticeClear(t *testing.T) {
	sc := newTestContext(t)
	repo := NewPracticeRepository(sc)
	_, err := repo.Insert(samplePracticeLog())
	require.NoError(t, err)

	require.NoError(t, repo.Clear())
	logs, err := repo.LoadAll(models.PracticeFilter{})
	require.NoError(t, err)
	assert.Empty(t, logs)
}
