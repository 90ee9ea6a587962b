package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/studylog/internal/errors"
	"github.com/julianstephens/studylog/internal/models"
)

func sampleTask() models.PlannerTask {
	return models.PlannerTask{
		Subject:  "Chemistry",
		Topic:    "Coordination Compounds",
		DueDate:  "2026-03-14",
		Priority: models.PriorityMedium,
		Status:   models.StatusPending,
		Notes:    "NCERT first",
	}
}

func TestPlannerRoundTrip(t *testing.T) {
	sc := newTestContext(t)
	repo := NewPlannerRepository(sc)

	in := sampleTask()
	id, err := repo.Insert(in)
	require.NoError(t, err)

	tasks, err := repo.LoadAll(models.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	want := in
	want.ID = id
	want.CreatedDate = "2026-03-10"
	assert.Equal(t, want, tasks[0])
}

func TestPlannerInsertRejectsPastDueDate(t *testing.T) {
	sc := newTestContext(t)
	repo := NewPlannerRepository(sc)

	task := sampleTask()
	task.DueDate = "2026-03-09"
	_, err := repo.Insert(task)
	_, ok := errors.AsValidation(err)
	assert.True(t, ok)
}

func TestPlannerUpdateKeepsCreatedDateAndAllowsPastDue(t *testing.T) {
	sc := newTestContext(t)
	repo := NewPlannerRepository(sc)

	id, err := repo.Insert(sampleTask())
	require.NoError(t, err)

	edit := sampleTask()
	edit.DueDate = "2026-03-01"
	edit.Status = models.StatusInProgress
	edit.CreatedDate = "1999-01-01"
	require.NoError(t, repo.Update(id, edit))

	got, err := repo.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", got.DueDate)
	assert.Equal(t, models.StatusInProgress, got.Status)
	assert.Equal(t, "2026-03-10", got.CreatedDate)
}

func TestPlannerDuplicate(t *testing.T) {
	sc := newTestContext(t)
	repo := NewPlannerRepository(sc)

	_, err := repo.Insert(sampleTask())
	require.NoError(t, err)

	dup := sampleTask()
	dup.Priority = models.PriorityHigh
	_, err = repo.Insert(dup)
	assert.ErrorIs(t, err, errors.ErrDuplicateEntry)
}

func TestPlannerOrdering(t *testing.T) {
	sc := newTestContext(t)
	repo := NewPlannerRepository(sc)

	insert := func(topic, due string, p models.Priority) int64 {
		task := sampleTask()
		task.Topic = topic
		task.DueDate = due
		task.Priority = p
		id, err := repo.Insert(task)
		require.NoError(t, err)
		return id
	}
	insert("late", "2026-03-20", models.PriorityHigh)
	insert("low", "2026-03-12", models.PriorityLow)
	insert("high", "2026-03-12", models.PriorityHigh)
	insert("medium-a", "2026-03-12", models.PriorityMedium)
	insert("medium-b", "2026-03-12", models.PriorityMedium)

	tasks, err := repo.LoadAll(models.TaskFilter{})
	require.NoError(t, err)

	var topics []string
	for _, task := range tasks {
		topics = append(topics, task.Topic)
	}
	assert.Equal(t, []string{"high", "medium-b", "medium-a", "low", "late"}, topics)
}

func TestPlannerFilterAndStatus(t *testing.T) {
	sc := newTestContext(t)
	repo := NewPlannerRepository(sc)

	id, err := repo.Insert(sampleTask())
	require.NoError(t, err)
	other := sampleTask()
	other.Subject = "Maths"
	_, err = repo.Insert(other)
	require.NoError(t, err)

	require.NoError(t, repo.SetStatus(id, models.StatusCompleted))
	assert.ErrorIs(t, repo.SetStatus(424242, models.StatusCompleted), errors.ErrNotFound)
	_, ok := errors.AsValidation(repo.SetStatus(id, "Finished"))
	assert.True(t, ok)

	done, err := repo.LoadAll(models.TaskFilter{Status: models.StatusCompleted})
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, id, done[0].ID)

	maths, err := repo.LoadAll(models.TaskFilter{Subject: "Maths"})
	require.NoError(t, err)
	require.Len(t, maths, 1)
}

func TestPlannerDeleteAndClear(t *testing.T) {
	sc := newTestContext(t)
	repo := NewPlannerRepository(sc)

	id, err := repo.Insert(sampleTask())
	require.NoError(t, err)
	require.NoError(t, repo.Delete(id+100))

	tasks, err := repo.LoadAll(models.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, tasks, 1)

	require.NoError(t, repo.Clear())
	tasks, err = repo.LoadAll(models.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
