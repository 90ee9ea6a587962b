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

const practiceColumns = `"ID", "Date", "Subject", "Chapter", "DPP_Number", "Score", "Accuracy", "Time_Taken", "Notes"`

// PracticeRepository reads and writes dpp_log.
type PracticeRepository struct {
	sc *Context
}

func NewPracticeRepository(sc *Context) *PracticeRepository {
	return &PracticeRepository{sc: sc}
}

// LoadAll returns practice logs newest first. A missing table yields an empty slice.
func (r *PracticeRepository) LoadAll(f models.PracticeFilter) ([]models.PracticeLog, error) {
	logs, err := cache.Load(r.sc.cache, constants.TablePracticeLogs, f.Key(), func() ([]models.PracticeLog, error) {
		return r.load(f)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(logs), nil
}

func (r *PracticeRepository) load(f models.PracticeFilter) ([]models.PracticeLog, error) {
	if r.sc.missingTable(constants.TablePracticeLogs) {
		return []models.PracticeLog{}, nil
	}

	q := `SELECT ` + practiceColumns + ` FROM dpp_log`
	var args []any
	if f.Subject != "" {
		q += ` WHERE "Subject" = ?`
		args = append(args, f.Subject)
	}
	q += ` ORDER BY "Date" DESC, "ID" DESC`

	rows, err := r.sc.query(q, args...)
	if err != nil {
		return nil, &errors.StorageError{Op: "load practice logs", Err: err}
	}
	defer rows.Close()

	logs := []models.PracticeLog{}
	for rows.Next() {
		l, err := scanPracticeLog(rows)
		if err != nil {
			return nil, &errors.StorageError{Op: "scan practice log", Err: err}
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, &errors.StorageError{Op: "load practice logs", Err: err}
	}
	return logs, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPracticeLog(s rowScanner) (models.PracticeLog, error) {
	var l models.PracticeLog
	var notes sql.NullString
	err := s.Scan(&l.ID, &l.Date, &l.Subject, &l.Chapter, &l.ProblemSet, &l.Score, &l.Accuracy, &l.TimeTakenMin, &notes)
	l.Notes = notes.String
	return l, err
}

// Get returns one practice log or errors.ErrNotFound.
func (r *PracticeRepository) Get(id int64) (models.PracticeLog, error) {
	row := r.sc.queryRow(`SELECT `+practiceColumns+` FROM dpp_log WHERE "ID" = ?`, id)
	l, err := scanPracticeLog(row)
	if err == sql.ErrNoRows {
		return l, fmt.Errorf("practice log %d: %w", id, errors.ErrNotFound)
	}
	if err != nil {
		return l, &errors.StorageError{Op: "get practice log", Err: err}
	}
	return l, nil
}

func practiceKey(l models.PracticeLog) string {
	return fmt.Sprintf("%s / %s / %s / %s", l.Date, l.Subject, l.Chapter, l.ProblemSet)
}

// Insert validates l and stores it, returning the assigned id.
func (r *PracticeRepository) Insert(l models.PracticeLog) (int64, error) {
	if err := validation.PracticeLog(l); err != nil {
		return 0, err
	}

	var id int64
	err := r.sc.insertReturningID(`
		INSERT INTO dpp_log ("Date", "Subject", "Chapter", "DPP_Number", "Score", "Accuracy", "Time_Taken", "Notes")
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING "ID"`,
		&id,
		l.Date, l.Subject, l.Chapter, l.ProblemSet, l.Score, l.Accuracy, l.TimeTakenMin, nullString(l.Notes),
	)
	if err != nil {
		return 0, classify("insert practice log", constants.TablePracticeLogs, practiceKey(l), err)
	}

	r.sc.Invalidate(constants.TablePracticeLogs)
	return id, nil
}

// Update replaces every field of the log with the given id.
func (r *PracticeRepository) Update(id int64, l models.PracticeLog) error {
	if err := validation.PracticeLog(l); err != nil {
		return err
	}

	res, err := r.sc.exec(`
		UPDATE dpp_log
		SET "Date" = ?, "Subject" = ?, "Chapter" = ?, "DPP_Number" = ?, "Score" = ?, "Accuracy" = ?, "Time_Taken" = ?, "Notes" = ?
		WHERE "ID" = ?`,
		l.Date, l.Subject, l.Chapter, l.ProblemSet, l.Score, l.Accuracy, l.TimeTakenMin, nullString(l.Notes), id,
	)
	if err != nil {
		return classify("update practice log", constants.TablePracticeLogs, practiceKey(l), err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("practice log %d: %w", id, errors.ErrNotFound)
	}

	r.sc.Invalidate(constants.TablePracticeLogs)
	return nil
}

// Delete removes the log. Deleting an unknown id succeeds.
func (r *PracticeRepository) Delete(id int64) error {
	if _, err := r.sc.exec(`DELETE FROM dpp_log WHERE "ID" = ?`, id); err != nil {
		return classify("delete practice log", constants.TablePracticeLogs, "", err)
	}
	r.sc.Invalidate(constants.TablePracticeLogs)
	return nil
}

// Clear removes every practice log.
func (r *PracticeRepository) Clear() error {
	if _, err := r.sc.exec(`DELETE FROM dpp_log`); err != nil {
		return classify("clear practice logs", constants.TablePracticeLogs, "", err)
	}
	r.sc.Invalidate(constants.TablePracticeLogs)
	return nil
}
