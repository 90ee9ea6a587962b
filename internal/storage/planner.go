package storage

import (
	"database/sql"
	"fmt"
	"slices"

	"github.com/julianstephens/studylog/internal/cache"
	"github.com/julianstephens/studylog/internal/constants"
	"github.com/julianstephens/studylog/internal/errors"
	"github.com/julianstephens/studylog/internal/models"
	"github.com/julianstephens/studylog/internal/validation"
)

const taskColumns = `"ID", "Subject", "Topic", "DueDate", "Priority", "Status", "Notes", "CreatedDate"`

// priorityOrder sorts High before Medium before Low; anything else last.
const priorityOrder = `CASE "Priority" WHEN 'High' THEN 1 WHEN 'Medium' THEN 2 WHEN 'Low' THEN 3 ELSE 4 END`

// PlannerRepository reads and writes study_tasks.
type PlannerRepository struct {
	sc *Context
}

func NewPlannerRepository(sc *Context) *PlannerRepository {
	return &PlannerRepository{sc: sc}
}

// LoadAll returns tasks by due date, then priority, then newest id.
func (r *PlannerRepository) LoadAll(f models.TaskFilter) ([]models.PlannerTask, error) {
	tasks, err := cache.Load(r.sc.cache, constants.TablePlannerTasks, f.Key(), func() ([]models.PlannerTask, error) {
		return r.load(f)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(tasks), nil
}

func (r *PlannerRepository) load(f models.TaskFilter) ([]models.PlannerTask, error) {
	if r.sc.missingTable(constants.TablePlannerTasks) {
		return []models.PlannerTask{}, nil
	}

	q := `SELECT ` + taskColumns + ` FROM study_tasks WHERE 1 = 1`
	var args []any
	if f.Subject != "" {
		q += ` AND "Subject" = ?`
		args = append(args, f.Subject)
	}
	if f.Status != "" {
		q += ` AND "Status" = ?`
		args = append(args, string(f.Status))
	}
	q += ` ORDER BY "DueDate" ASC, ` + priorityOrder + `, "ID" DESC`

	rows, err := r.sc.query(q, args...)
	if err != nil {
		return nil, &errors.StorageError{Op: "load planner tasks", Err: err}
	}
	defer rows.Close()

	tasks := []models.PlannerTask{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, &errors.StorageError{Op: "scan planner task", Err: err}
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &errors.StorageError{Op: "load planner tasks", Err: err}
	}
	return tasks, nil
}

func scanTask(s rowScanner) (models.PlannerTask, error) {
	var t models.PlannerTask
	var priority, status string
	var notes sql.NullString
	err := s.Scan(&t.ID, &t.Subject, &t.Topic, &t.DueDate, &priority, &status, &notes, &t.CreatedDate)
	t.Priority = models.Priority(priority)
	t.Status = models.TaskStatus(status)
	t.Notes = notes.String
	return t, err
}

// Get returns one task or errors.ErrNotFound.
func (r *PlannerRepository) Get(id int64) (models.PlannerTask, error) {
	t, err := scanTask(r.sc.queryRow(`SELECT `+taskColumns+` FROM study_tasks WHERE "ID" = ?`, id))
	if err == sql.ErrNoRows {
		return t, fmt.Errorf("planner task %d: %w", id, errors.ErrNotFound)
	}
	if err != nil {
		return t, &errors.StorageError{Op: "get planner task", Err: err}
	}
	return t, nil
}

func taskKey(t models.PlannerTask) string {
	return fmt.Sprintf("%s / %s due %s", t.Subject, t.Topic, t.DueDate)
}

// Insert stores a new task. The due date must not be in the past and
// CreatedDate is set to today, overriding whatever the caller passed.
func (r *PlannerRepository) Insert(t models.PlannerTask) (int64, error) {
	today := r.sc.Today()
	if err := validation.PlannerTask(t, today, true); err != nil {
		return 0, err
	}

	var id int64
	err := r.sc.insertReturningID(`
		INSERT INTO study_tasks ("Subject", "Topic", "DueDate", "Priority", "Status", "Notes", "CreatedDate")
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING "ID"`,
		&id,
		t.Subject, t.Topic, t.DueDate, string(t.Priority), string(t.Status), nullString(t.Notes), today,
	)
	if err != nil {
		return 0, classify("insert planner task", constants.TablePlannerTasks, taskKey(t), err)
	}

	r.sc.Invalidate(constants.TablePlannerTasks)
	return id, nil
}

// Update replaces the mutable fields of a task. CreatedDate is never touched
// and the due date is not compared with today.
func (r *PlannerRepository) Update(id int64, t models.PlannerTask) error {
	if err := validation.PlannerTask(t, r.sc.Today(), false); err != nil {
		return err
	}

	res, err := r.sc.exec(`
		UPDATE study_tasks
		SET "Subject" = ?, "Topic" = ?, "DueDate" = ?, "Priority" = ?, "Status" = ?, "Notes" = ?
		WHERE "ID" = ?`,
		t.Subject, t.Topic, t.DueDate, string(t.Priority), string(t.Status), nullString(t.Notes), id,
	)
	if err != nil {
		return classify("update planner task", constants.TablePlannerTasks, taskKey(t), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("planner task %d: %w", id, errors.ErrNotFound)
	}

	r.sc.Invalidate(constants.TablePlannerTasks)
	return nil
}

// SetStatus changes only the status of a task.
func (r *PlannerRepository) SetStatus(id int64, status models.TaskStatus) error {
	if !status.Valid() {
		return errors.NewValidationError(fmt.Sprintf("status %q is not a valid choice", status))
	}
	res, err := r.sc.exec(`UPDATE study_tasks SET "Status" = ? WHERE "ID" = ?`, string(status), id)
	if err != nil {
		return classify("update planner task status", constants.TablePlannerTasks, "", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("planner task %d: %w", id, errors.ErrNotFound)
	}
	r.sc.Invalidate(constants.TablePlannerTasks)
	return nil
}

// Delete removes the task. Deleting an unknown id succeeds.
func (r *PlannerRepository) Delete(id int64) error {
	if _, err := r.sc.exec(`DELETE FROM study_tasks WHERE "ID" = ?`, id); err != nil {
		return classify("delete planner task", constants.TablePlannerTasks, "", err)
	}
	r.sc.Invalidate(constants.TablePlannerTasks)
	return nil
}

// Clear removes every task.
func (r *PlannerRepository) Clear() error {
	if _, err := r.sc.exec(`DELETE FROM study_tasks`); err != nil {
		return classify("clear planner tasks", constants.TablePlannerTasks, "", err)
	}
	r.sc.Invalidate(constants.TablePlannerTasks)
	return nil
}
