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

const mockColumns = `id, user_id, assessment_date, exam_type, test_name, domain,
	total_questions, attempted, correct, wrong,
	physics_score, chemistry_score, maths_score, biology_score,
	total_score, max_score_possible, percentile, "rank", target_score,
	difficulty, time_taken_minutes, feedback, neural_signature, timestamp`

// Owner identifies the single user of this install. Every inserted mock
// test result is stamped with it.
type Owner struct {
	UserID          int64
	NeuralSignature string
}

// DefaultOwner is the owner used when none is configured.
func DefaultOwner() Owner {
	return Owner{UserID: constants.DefaultUserID, NeuralSignature: constants.DefaultNeuralSignature}
}

// MockTestRepository reads and writes mock_test_results.
type MockTestRepository struct {
	sc    *Context
	owner Owner
}

func NewMockTestRepository(sc *Context, owner Owner) *MockTestRepository {
	return &MockTestRepository{sc: sc, owner: owner}
}

func (r *MockTestRepository) Owner() Owner { return r.owner }

// LoadAll returns results newest assessment first.
func (r *MockTestRepository) LoadAll(f models.MockFilter) ([]models.MockTestResult, error) {
	results, err := cache.Load(r.sc.cache, constants.TableMockTests, f.Key(), func() ([]models.MockTestResult, error) {
		return r.load(f)
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(results), nil
}

func (r *MockTestRepository) load(f models.MockFilter) ([]models.MockTestResult, error) {
	if r.sc.missingTable(constants.TableMockTests) {
		return []models.MockTestResult{}, nil
	}

	q := `SELECT ` + mockColumns + ` FROM mock_test_results`
	var args []any
	if f.UserID != 0 {
		q += ` WHERE user_id = ?`
		args = append(args, f.UserID)
	}
	q += ` ORDER BY assessment_date DESC, timestamp DESC`

	rows, err := r.sc.query(q, args...)
	if err != nil {
		return nil, &errors.StorageError{Op: "load mock tests", Err: err}
	}
	defer rows.Close()

	results := []models.MockTestResult{}
	for rows.Next() {
		m, err := scanMockTest(rows)
		if err != nil {
			return nil, &errors.StorageError{Op: "scan mock test", Err: err}
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, &errors.StorageError{Op: "load mock tests", Err: err}
	}
	return results, nil
}

func floatPtr(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func nullFloat(p *float64) sql.NullFloat64 {
	if p == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *p, Valid: true}
}

// scanMockTest coerces nullable columns once so nothing downstream sees NULL.
func scanMockTest(s rowScanner) (models.MockTestResult, error) {
	var (
		m                                      models.MockTestResult
		examType                               string
		total, attempted, correct, wrong, rank sql.NullInt64
		timeTaken                              sql.NullInt64
		physics, chemistry, maths, biology     sql.NullFloat64
		maxScore, percentile, target           sql.NullFloat64
		difficulty, feedback                   sql.NullString
	)
	err := s.Scan(
		&m.ID, &m.UserID, &m.AssessmentDate, &examType, &m.TestName, &m.Domain,
		&total, &attempted, &correct, &wrong,
		&physics, &chemistry, &maths, &biology,
		&m.TotalScore, &maxScore, &percentile, &rank, &target,
		&difficulty, &timeTaken, &feedback, &m.NeuralSignature, &m.Timestamp,
	)
	if err != nil {
		return m, err
	}

	m.ExamType = models.ExamType(examType)
	m.TotalQuestions = int(total.Int64)
	m.Attempted = int(attempted.Int64)
	m.Correct = int(correct.Int64)
	m.Wrong = int(wrong.Int64)
	m.PhysicsScore = floatPtr(physics)
	m.ChemistryScore = floatPtr(chemistry)
	m.MathsScore = floatPtr(maths)
	m.BiologyScore = floatPtr(biology)
	m.MaxScorePossible = maxScore.Float64
	if !maxScore.Valid {
		m.MaxScorePossible = models.ExamOther.MaxScore()
	}
	m.Percentile = percentile.Float64
	m.Rank = int(rank.Int64)
	m.TargetScore = target.Float64
	m.Difficulty = models.Difficulty(difficulty.String)
	if !difficulty.Valid {
		m.Difficulty = models.DifficultyMedium
	}
	m.TimeTakenMin = int(timeTaken.Int64)
	m.Feedback = feedback.String
	return m, nil
}

// Get returns one result or errors.ErrNotFound.
func (r *MockTestRepository) Get(id string) (models.MockTestResult, error) {
	m, err := scanMockTest(r.sc.queryRow(`SELECT `+mockColumns+` FROM mock_test_results WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return m, fmt.Errorf("mock test %s: %w", id, errors.ErrNotFound)
	}
	if err != nil {
		return m, &errors.StorageError{Op: "get mock test", Err: err}
	}
	return m, nil
}

// Prepare fills the fields a caller does not choose: owner tags, creation
// timestamp, the default max score for the exam type, and the id.
func (r *MockTestRepository) Prepare(m models.MockTestResult) models.MockTestResult {
	m.UserID = r.owner.UserID
	m.NeuralSignature = r.owner.NeuralSignature
	if m.Timestamp == "" {
		m.Timestamp = r.sc.timestamp()
	}
	if m.MaxScorePossible == 0 {
		m.MaxScorePossible = m.ExamType.MaxScore()
	}
	if m.ID == "" {
		m.ID = models.NewMockTestID(m.UserID, m.AssessmentDate, m.Domain, m.TotalScore)
	}
	return m
}

// Insert prepares, validates and stores m, returning its id.
func (r *MockTestRepository) Insert(m models.MockTestResult) (string, error) {
	m = r.Prepare(m)
	if err := validation.MockTestResult(m); err != nil {
		return "", err
	}

	_, err := r.sc.exec(`
		INSERT INTO mock_test_results (`+mockColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.AssessmentDate, string(m.ExamType), m.TestName, m.Domain,
		m.TotalQuestions, m.Attempted, m.Correct, m.Wrong,
		nullFloat(m.PhysicsScore), nullFloat(m.ChemistryScore), nullFloat(m.MathsScore), nullFloat(m.BiologyScore),
		m.TotalScore, m.MaxScorePossible, m.Percentile, m.Rank, m.TargetScore,
		string(m.Difficulty), m.TimeTakenMin, nullString(m.Feedback), m.NeuralSignature, m.Timestamp,
	)
	if err != nil {
		return "", classify("insert mock test", constants.TableMockTests, m.ID, err)
	}

	r.sc.Invalidate(constants.TableMockTests)
	return m.ID, nil
}

// Update replaces every mutable field. id, user_id, neural_signature and
// timestamp are kept from the stored row.
func (r *MockTestRepository) Update(id string, m models.MockTestResult) error {
	if err := validation.MockTestResult(m); err != nil {
		return err
	}

	res, err := r.sc.exec(`
		UPDATE mock_test_results SET
			assessment_date = ?, exam_type = ?, test_name = ?, domain = ?,
			total_questions = ?, attempted = ?, correct = ?, wrong = ?,
			physics_score = ?, chemistry_score = ?, maths_score = ?, biology_score = ?,
			total_score = ?, max_score_possible = ?, percentile = ?, "rank" = ?, target_score = ?,
			difficulty = ?, time_taken_minutes = ?, feedback = ?
		WHERE id = ?`,
		m.AssessmentDate, string(m.ExamType), m.TestName, m.Domain,
		m.TotalQuestions, m.Attempted, m.Correct, m.Wrong,
		nullFloat(m.PhysicsScore), nullFloat(m.ChemistryScore), nullFloat(m.MathsScore), nullFloat(m.BiologyScore),
		m.TotalScore, m.MaxScorePossible, m.Percentile, m.Rank, m.TargetScore,
		string(m.Difficulty), m.TimeTakenMin, nullString(m.Feedback),
		id,
	)
	if err != nil {
		return classify("update mock test", constants.TableMockTests, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("mock test %s: %w", id, errors.ErrNotFound)
	}

	r.sc.Invalidate(constants.TableMockTests)
	return nil
}

// UpdateField sets one column of one row. field must be in the allow-list
// (see UpdatableFields); anything else is rejected with
// errors.ErrFieldNotAllowed before the database is touched. The row is
// re-validated as a whole before the write.
func (r *MockTestRepository) UpdateField(id, field string, value any) error {
	f, ok := lookupField(field)
	if !ok {
		return fmt.Errorf("%w: %q", errors.ErrFieldNotAllowed, field)
	}
	coerced, err := f.coerce(value)
	if err != nil {
		return errors.NewValidationError(fmt.Sprintf("%s: %v", field, err))
	}

	current, err := r.Get(id)
	if err != nil {
		return err
	}
	f.set(&current, coerced)
	if err := validation.MockTestResult(current); err != nil {
		return err
	}

	res, err := r.sc.exec(`UPDATE mock_test_results SET `+f.quoted()+` = ? WHERE id = ?`, f.dbValue(coerced), id)
	if err != nil {
		return classify("update mock test field", constants.TableMockTests, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("mock test %s: %w", id, errors.ErrNotFound)
	}

	r.sc.Invalidate(constants.TableMockTests)
	return nil
}

// Delete removes the result. Deleting an unknown id succeeds.
func (r *MockTestRepository) Delete(id string) error {
	if _, err := r.sc.exec(`DELETE FROM mock_test_results WHERE id = ?`, id); err != nil {
		return classify("delete mock test", constants.TableMockTests, id, err)
	}
	r.sc.Invalidate(constants.TableMockTests)
	return nil
}

// Clear removes every result belonging to the owner.
func (r *MockTestRepository) Clear() error {
	if _, err := r.sc.exec(`DELETE FROM mock_test_results WHERE user_id = ?`, r.owner.UserID); err != nil {
		return classify("clear mock tests", constants.TableMockTests, "", err)
	}
	r.sc.Invalidate(constants.TableMockTests)
	return nil
}
